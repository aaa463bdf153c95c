// Command bspatch applies a BSDIFF40 patch to an old file to produce a new
// file. Argument parsing and process-termination policy are deliberately
// thin: all the actual work happens in pkg/bspatch.Apply.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/patchkit-go/bsdiff/pkg/bspatch"
)

func main() {
	oldExtents := flag.String("old-extents", "", "extent list for the old file, e.g. \"0:10,-1:4\"")
	newExtents := flag.String("new-extents", "", "extent list for the new file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
		os.Exit(2)
	}

	opts := bspatch.Options{
		OldPath:    flag.Arg(0),
		NewPath:    flag.Arg(1),
		PatchPath:  flag.Arg(2),
		OldExtents: *oldExtents,
		NewExtents: *newExtents,
	}

	if err := bspatch.Apply(opts); err != nil {
		fmt.Fprintln(os.Stderr, "bspatch:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-old-extents extents] [-new-extents extents] oldfile newfile patchfile\n", os.Args[0])
	flag.PrintDefaults()
}
