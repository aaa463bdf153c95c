//go:build linux

package sparsefile

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes of disk space for f using fallocate(2),
// falling back to Truncate when the underlying filesystem doesn't support
// it (mirrors the SEEK_DATA-unsupported fallback pattern used for sparse
// copies elsewhere in the corpus).
func preallocate(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err == nil {
		return nil
	}
	if err == unix.ENOSYS || err == unix.EOPNOTSUPP || err == unix.EINVAL {
		return f.Truncate(size)
	}
	return err
}
