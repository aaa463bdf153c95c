// Package errs defines the error kinds shared by the extent, posio and
// bspatch packages so that callers can distinguish failure causes with
// errors.Is instead of matching on message text.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap one of these with Wrap to attach context.
var (
	// ErrCorruptPatch covers bad magic, negative header lengths, a negative
	// X or Y in a control triple, output that runs past new_size, a short
	// read from a sub-stream, or a decoder status that is neither ok nor
	// end-of-stream.
	ErrCorruptPatch = errors.New("corrupt patch")

	// ErrInvalidExtents covers a malformed extent or position string, a
	// negative length, an out-of-range offset, or decimal overflow.
	ErrInvalidExtents = errors.New("invalid extents")

	// ErrIoError covers open/read/write/seek failures on a backing file and
	// decoder initialization failures.
	ErrIoError = errors.New("io error")

	// ErrAllocationFailure covers an output buffer, extent array, prefix
	// table, or stream object that could not be allocated.
	ErrAllocationFailure = errors.New("allocation failure")
)

// wrapped pairs a sentinel kind with a formatted message, preserving
// errors.Is/errors.As against both the kind and any underlying cause.
type wrapped struct {
	kind  error
	msg   string
	cause error
}

func (w *wrapped) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s: %s: %v", w.kind, w.msg, w.cause)
	}
	return fmt.Sprintf("%s: %s", w.kind, w.msg)
}

func (w *wrapped) Unwrap() error {
	if w.cause != nil {
		return w.cause
	}
	return w.kind
}

func (w *wrapped) Is(target error) bool {
	return target == w.kind
}

// Wrap builds an error of the given kind carrying msg and an optional cause.
func Wrap(kind error, msg string, cause error) error {
	return &wrapped{kind: kind, msg: msg, cause: cause}
}

// Corrupt builds an ErrCorruptPatch with a formatted message.
func Corrupt(format string, args ...any) error {
	return Wrap(ErrCorruptPatch, fmt.Sprintf(format, args...), nil)
}

// InvalidExtents builds an ErrInvalidExtents with a formatted message.
func InvalidExtents(format string, args ...any) error {
	return Wrap(ErrInvalidExtents, fmt.Sprintf(format, args...), nil)
}

// Io wraps cause as an ErrIoError with context.
func Io(msg string, cause error) error {
	return Wrap(ErrIoError, msg, cause)
}

// Alloc builds an ErrAllocationFailure with a formatted message.
func Alloc(format string, args ...any) error {
	return Wrap(ErrAllocationFailure, fmt.Sprintf(format, args...), nil)
}
