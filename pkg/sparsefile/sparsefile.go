// Package sparsefile writes the interpreter's output buffer to a plain
// destination file, preallocating its disk extent before the single
// terminal write so the filesystem can lay it out contiguously rather than
// growing it a write at a time.
package sparsefile

import (
	"os"

	"github.com/patchkit-go/bsdiff/pkg/errs"
)

// WriteFile creates (or truncates) path, preallocates its size, and writes
// data in a single call. A failed write or writing fewer bytes than
// len(data) is reported as an error, and the partially written file is
// removed.
func WriteFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errs.Io("create "+path, err)
	}

	if len(data) > 0 {
		// Best-effort; a platform that can't preallocate just grows the
		// file on Write below.
		_ = preallocate(f, int64(len(data)))
	}

	n, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		os.Remove(path)
		return errs.Io("write "+path, werr)
	}
	if n != len(data) {
		os.Remove(path)
		return errs.Io("short write to "+path, nil)
	}
	if cerr != nil {
		return errs.Io("close "+path, cerr)
	}
	return nil
}
