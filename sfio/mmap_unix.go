//go:build unix

package sfio

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile attempts to map f read-only into memory, returning nil on any
// failure so callers fall back to ReadAt. A zero-length file cannot be
// mapped and is not an error.
func mmapFile(f *os.File, size int64) []byte {
	if size <= 0 {
		return nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil
	}
	return data
}

func unmapFile(data []byte) {
	_ = unix.Munmap(data)
}
