// Package raster implements scan conversion of a filled outline into a
// pixel bitmap, per SPEC_FULL.md sections 4.E and 4.F: a monochrome
// converter and an anti-aliased 256-level gray converter, both consuming
// the same outline.Outline and writing into the same Bitmap shape.
//
// The Span/Painter split is carried over from freetype/raster/paint.go's
// separation of "what pixels does this outline cover" from "how do those
// pixels get composited onto a destination image" — this package only
// answers the first question; image composition lives at the corefont API
// boundary so raster itself never imports image or image/draw, matching
// the teacher's own freetype/raster package (no image dependency) versus
// its image-aware freetype.go layer.
package raster

import "github.com/inkwell-labs/corefont/fixedmath"

// PixelMode names the layout of a Bitmap's buffer, per spec.md section
// 4.K's bitmap output format.
type PixelMode int

const (
	PixelMono PixelMode = iota
	PixelGray
)

// NumGrays returns the number of distinct coverage levels for m: 2 for
// Mono, 256 for Gray.
func (m PixelMode) NumGrays() int {
	if m == PixelMono {
		return 2
	}
	return 256
}

// Bitmap is the rasterizer's destination, per spec.md's
// "{rows, width, pitch (may be negative for top-down), buffer}" contract.
// Pitch may be negative to describe a bottom-up buffer; Rows*|Pitch| must
// not exceed len(Buffer).
type Bitmap struct {
	Width, Rows int
	Pitch       int
	Buffer      []byte
	Mode        PixelMode
}

// NewBitmap allocates a zeroed Bitmap of the given size and mode, with a
// positive (top-down) pitch sized for mode: one byte per pixel for Gray,
// one bit per pixel (MSB-first, row-padded to a byte) for Mono, matching
// spec.md's "Monochrome rows are packed MSB-first, zero-padded to byte
// boundary."
func NewBitmap(width, rows int, mode PixelMode) *Bitmap {
	var pitch int
	switch mode {
	case PixelMono:
		pitch = (width + 7) / 8
	default:
		pitch = width
	}
	return &Bitmap{
		Width:  width,
		Rows:   rows,
		Pitch:  pitch,
		Buffer: make([]byte, pitch*rows),
		Mode:   mode,
	}
}

func (b *Bitmap) rowOffset(y int) int {
	if b.Pitch < 0 {
		return (b.Rows - 1 - y) * -b.Pitch
	}
	return y * b.Pitch
}

// SetGray sets the coverage value (0-255) of pixel (x,y) in a Gray bitmap.
func (b *Bitmap) SetGray(x, y int, v uint8) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Rows {
		return
	}
	b.Buffer[b.rowOffset(y)+x] = v
}

// SetMonoSpan sets pixels [x0, x1) of row y to black in a Mono bitmap.
func (b *Bitmap) SetMonoSpan(x0, x1, y int) {
	if y < 0 || y >= b.Rows {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > b.Width {
		x1 = b.Width
	}
	off := b.rowOffset(y)
	for x := x0; x < x1; x++ {
		b.Buffer[off+x/8] |= 0x80 >> uint(x%8)
	}
}

// Span is a horizontal run of pixels with constant coverage. X1 is
// exclusive, matching freetype/raster/paint.go's Span contract.
type Span struct {
	Y, X0, X1 int
	Cover     uint8
}

// Painter consumes batches of Spans, the same separation of concerns as
// freetype/raster/paint.go's Painter interface: a rasterizer never needs
// to know what the spans are painted onto.
type Painter interface {
	Paint(ss []Span, done bool)
}

// PainterFunc adapts a plain function to Painter.
type PainterFunc func(ss []Span, done bool)

func (f PainterFunc) Paint(ss []Span, done bool) { f(ss, done) }

// pixel rounds a fixed-point pixel coordinate down to an int, the way
// F26Dot6.Floor does, kept local so this file has no outline import cycle
// surprises.
func pixel(v fixedmath.F26Dot6) int { return int(v.Floor()) }
