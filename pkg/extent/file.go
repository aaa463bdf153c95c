package extent

import (
	"errors"
	"io"
	"os"

	"github.com/patchkit-go/bsdiff/pkg/errs"
)

var (
	errUnknownWhence = errors.New("unknown whence")
	errOutOfRange    = errors.New("seek position out of range")
)

// Mode is the logical open mode for a File, mirroring the fopen(3) "r",
// "w", "r+"/"w+" modes accepted by the original exfile_fopen.
type Mode int

const (
	ReadOnly Mode = iota
	WriteOnly
	ReadWrite
)

func (m Mode) openFlags() int {
	switch m {
	case ReadOnly:
		return os.O_RDONLY
	case WriteOnly:
		return os.O_WRONLY
	default:
		return os.O_RDWR
	}
}

// FreeFunc deallocates an extent list that a File took ownership of at open
// time. Pass nil when the caller retains ownership and the list outlives
// the stream.
type FreeFunc func(*List)

// File is a seekable byte-stream view over an extent list: a backing file
// handle, the extent list, the list's prefix table, a logical cursor
// represented redundantly as (absolute position, current extent index,
// position within current extent), and a cache of the backing handle's last
// known physical position used to elide redundant seeks.
//
// File is not safe for concurrent use: the physical-position cache and
// logical cursor are mutated by every Read, Write and Seek without locking.
type File struct {
	f    *os.File
	list *List
	free FreeFunc
	mode Mode

	curPos   int64 // absolute logical position
	curIdx   int   // current extent index, 0..list.Len()
	curInExt int64 // position within current extent

	physKnown bool
	physPos   int64
}

// Open opens path with mode for use with list. Does not create path if
// absent and does not truncate it if present. list must be non-empty. free,
// if non-nil, is invoked exactly once from Close to release list.
func Open(path string, mode Mode, list *List, free FreeFunc) (*File, error) {
	if list.Len() == 0 {
		return nil, errs.InvalidExtents("extent list must be non-empty")
	}
	f, err := os.OpenFile(path, mode.openFlags(), 0)
	if err != nil {
		return nil, errs.Io("open "+path, err)
	}
	return newFile(f, mode, list, free)
}

// OpenHandle associates an already-open file handle with list, as
// exfile_fdopen does for a raw descriptor. The handle's current position is
// queried and used to seed the physical-position cache.
func OpenHandle(f *os.File, mode Mode, list *List, free FreeFunc) (*File, error) {
	if list.Len() == 0 {
		return nil, errs.InvalidExtents("extent list must be non-empty")
	}
	return newFile(f, mode, list, free)
}

func newFile(f *os.File, mode Mode, list *List, free FreeFunc) (*File, error) {
	physPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return nil, errs.Io("determine initial file position", err)
	}
	return &File{
		f:         f,
		list:      list,
		free:      free,
		mode:      mode,
		physKnown: true,
		physPos:   physPos,
	}, nil
}

// LogicalLength returns the total addressable logical length of the
// underlying extent list.
func (xf *File) LogicalLength() int64 { return xf.list.LogicalLength() }

// Read implements io.Reader over the logical address space. Reads past the
// logical end return (0, nil); a short backing read returns its partial
// count without retrying.
func (xf *File) Read(p []byte) (int, error) {
	return xf.ioStep(p, true)
}

// Write implements io.Writer over the logical address space. Writes past
// the logical end return (0, nil); writes to a sparse extent are discarded
// (and counted as written).
func (xf *File) Write(p []byte) (int, error) {
	return xf.ioStep(p, false)
}

// ioStep is the unified read/write engine shared by Read and Write,
// grounded on original_source/exfile.cc's exfile_io.
func (xf *File) ioStep(buf []byte, isRead bool) (int, error) {
	if xf.curIdx == xf.list.Len() {
		return 0, nil
	}

	var total int
	for len(buf) > 0 {
		// Advance past any zero-length or exhausted extents.
		for xf.curInExt == xf.list.At(xf.curIdx).Length {
			xf.curIdx++
			xf.curInExt = 0
			if xf.curIdx == xf.list.Len() {
				return total, nil
			}
		}

		cur := xf.list.At(xf.curIdx)
		remInExt := cur.Length - xf.curInExt
		count := int64(len(buf))
		if count > remInExt {
			count = remInExt
		}

		var n int
		var err error
		if cur.IsSparse() {
			if isRead {
				for i := int64(0); i < count; i++ {
					buf[i] = 0
				}
			}
			n = int(count)
		} else {
			filePos := cur.Offset + xf.curInExt
			if !xf.physKnown || xf.physPos != filePos {
				if _, serr := xf.f.Seek(filePos, io.SeekStart); serr != nil {
					xf.physKnown = false
					if total == 0 {
						return 0, errs.Io("seek backing file", serr)
					}
					return total, nil
				}
				xf.physPos = filePos
				xf.physKnown = true
			}
			if isRead {
				n, err = xf.f.Read(buf[:count])
			} else {
				n, err = xf.f.Write(buf[:count])
			}
			xf.physPos += int64(n)
		}

		total += n
		xf.curInExt += int64(n)
		xf.curPos += int64(n)
		buf = buf[n:]

		if err != nil {
			if total == 0 {
				return 0, errs.Io("backing i/o", err)
			}
			return total, nil
		}
		if int64(n) < count {
			// Partial backing transfer: propagate without retrying.
			return total, nil
		}
	}
	return total, nil
}

// Seek repositions the logical cursor. Position exactly at LogicalLength()
// is valid end-of-stream. Locates the target extent with a galloping search
// from the current index followed by a bounded binary search (List.Find),
// giving O(log D) complexity in the distance D, in extents, from the
// current position.
func (xf *File) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = xf.curPos + offset
	case io.SeekEnd:
		newPos = xf.list.LogicalLength() + offset
	default:
		return 0, errs.Io("seek", errUnknownWhence)
	}

	total := xf.list.LogicalLength()
	if newPos < 0 || newPos > total {
		return 0, errs.Io("seek", errOutOfRange)
	}

	if newPos != xf.curPos {
		var newIdx int
		switch {
		case newPos == total:
			newIdx = xf.list.Len()
		case newPos == 0:
			newIdx = 0
		default:
			newIdx = xf.list.Find(newPos, xf.curIdx)
		}
		xf.curIdx = newIdx
		if newIdx < xf.list.Len() {
			xf.curInExt = newPos - xf.list.precOf(newIdx)
		} else {
			xf.curInExt = 0
		}
		xf.curPos = newPos
	}
	return newPos, nil
}

// Close closes the backing handle, releases the prefix table, and invokes
// the extent-array deallocator supplied at open time, if any.
func (xf *File) Close() error {
	err := xf.f.Close()
	if xf.free != nil {
		xf.free(xf.list)
	}
	if err != nil {
		return errs.Io("close backing file", err)
	}
	return nil
}

