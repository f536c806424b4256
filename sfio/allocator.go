// Package sfio implements the memory and stream abstractions that sit
// underneath every font driver, per SPEC_FULL.md section 4.A: a pluggable
// Allocator and a seekable, frame-counted Stream over either an in-memory
// byte slice or a file (memory-mapped where the platform allows it).
//
// The byte-cursor helpers mirror freetype/truetype/truetype.go's data type
// (u32/u16/u8/skip), generalized from a TrueType-specific helper into a
// format-agnostic stream primitive every driver can share.
package sfio

// Allocator abstracts buffer allocation so callers can substitute a
// pooling or accounting strategy, per spec.md's requirement that
// allocation be a pluggable concern rather than hard-wired to make().
type Allocator interface {
	Alloc(n int) []byte
	Free([]byte)
}

// StdAllocator allocates directly from the Go heap and discards on Free.
type StdAllocator struct{}

func (StdAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (StdAllocator) Free([]byte)        {}

// CountingAllocator wraps another Allocator and tracks live bytes, useful
// for tests.
type CountingAllocator struct {
	Allocator
	Live int64
}

// NewCountingAllocator wraps the given Allocator, or StdAllocator if nil.
func NewCountingAllocator(a Allocator) *CountingAllocator {
	if a == nil {
		a = StdAllocator{}
	}
	return &CountingAllocator{Allocator: a}
}

func (c *CountingAllocator) Alloc(n int) []byte {
	c.Live += int64(n)
	return c.Allocator.Alloc(n)
}

func (c *CountingAllocator) Free(b []byte) {
	c.Live -= int64(len(b))
	c.Allocator.Free(b)
}
