//go:build !linux

package sparsefile

import "os"

// preallocate grows f to size via Truncate on platforms without fallocate(2).
func preallocate(f *os.File, size int64) error {
	return f.Truncate(size)
}
