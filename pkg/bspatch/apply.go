package bspatch

import (
	"io"
	"os"

	"github.com/patchkit-go/bsdiff/pkg/errs"
	"github.com/patchkit-go/bsdiff/pkg/extent"
	"github.com/patchkit-go/bsdiff/pkg/sparsefile"
)

// Options configures a single Apply call: paths to the old, new and patch
// files, plus optional extent-list strings for the old and new sides. Both
// extent strings must be present or both absent: extents are an all-or-
// nothing pairing, since an old plain file can't be addressed against a new
// extent list or vice versa.
type Options struct {
	OldPath   string
	NewPath   string
	PatchPath string

	OldExtents string
	NewExtents string
}

// Apply is the single driver-facade entry point: it opens the patch
// container, opens the old source as a plain file or an extent stream,
// runs the interpreter to build the reconstructed image, and writes it to
// the new destination (plain or extent).
//
// The old source is always opened against OldPath, never NewPath, even in
// the extent-enabled case where it can be tempting to reuse a single
// "current file" handle for both.
func Apply(opts Options) error {
	useExtents := opts.OldExtents != "" || opts.NewExtents != ""
	if useExtents && (opts.OldExtents == "" || opts.NewExtents == "") {
		return errs.InvalidExtents("old and new extent strings must both be supplied or both omitted")
	}

	container, err := OpenContainer(opts.PatchPath)
	if err != nil {
		return err
	}
	defer container.Close()

	old, oldSize, closeOld, err := openOldSource(opts.OldPath, opts.OldExtents, useExtents)
	if err != nil {
		return err
	}
	defer closeOld()

	out, err := Interpret(old, oldSize, container)
	if err != nil {
		return err
	}

	return writeNewDestination(opts.NewPath, opts.NewExtents, useExtents, out)
}

func openOldSource(path, extentsStr string, useExtents bool) (io.ReadSeeker, int64, func() error, error) {
	if !useExtents {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, nil, errs.Io("open "+path, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, errs.Io("stat "+path, err)
		}
		return f, fi.Size(), f.Close, nil
	}

	list, err := extent.Parse(extentsStr)
	if err != nil {
		return nil, 0, nil, err
	}
	xf, err := extent.Open(path, extent.ReadOnly, list, nil)
	if err != nil {
		return nil, 0, nil, err
	}
	return xf, xf.LogicalLength(), xf.Close, nil
}

func writeNewDestination(path, extentsStr string, useExtents bool, out []byte) error {
	if !useExtents {
		return sparsefile.WriteFile(path, out)
	}

	list, err := extent.Parse(extentsStr)
	if err != nil {
		return err
	}
	xf, err := extent.Open(path, extent.WriteOnly, list, nil)
	if err != nil {
		return err
	}
	n, err := xf.Write(out)
	if err != nil {
		xf.Close()
		return err
	}
	if int64(n) != int64(len(out)) {
		xf.Close()
		return errs.Io("short write to new extent file", nil)
	}
	return xf.Close()
}
