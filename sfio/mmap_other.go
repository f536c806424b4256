//go:build !unix

package sfio

import "os"

// mmapFile is unimplemented on non-unix platforms; FileStream falls back
// to ReadAt, which is always correct, only slower for repeated EnterFrame
// calls over a cold file.
func mmapFile(f *os.File, size int64) []byte { return nil }

func unmapFile(data []byte) {}
