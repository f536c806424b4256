package raster

import (
	"testing"

	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/outline"
)

// unitSquare returns a size x size pixel square outline at the origin, wound
// counter-clockwise.
func unitSquare(size int) *outline.Outline {
	s := fixedmath.F26Dot6(size << 6)
	return &outline.Outline{
		Points: []fixedmath.Vector{
			{X: 0, Y: 0},
			{X: 0, Y: s},
			{X: s, Y: s},
			{X: s, Y: 0},
		},
		Tags:     []byte{outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve},
		Contours: []uint16{3},
	}
}

func TestGrayFillsInteriorFully(t *testing.T) {
	o := unitSquare(8)
	bmp := NewBitmap(8, 8, PixelGray)
	if err := Gray(o, bmp); err != nil {
		t.Fatalf("gray: %v", err)
	}
	// A pixel well inside the square should be fully covered.
	v := bmp.Buffer[bmp.rowOffset(4)+4]
	if v != 255 {
		t.Errorf("interior pixel coverage = %d, want 255", v)
	}
}

func TestGrayEmptyOutlineWritesNothing(t *testing.T) {
	o := &outline.Outline{}
	bmp := NewBitmap(4, 4, PixelGray)
	if err := Gray(o, bmp); err != nil {
		t.Fatalf("gray on empty outline should succeed: %v", err)
	}
	for _, b := range bmp.Buffer {
		if b != 0 {
			t.Fatal("empty outline should write nothing")
		}
	}
}

func TestMonoOverflow(t *testing.T) {
	o := unitSquare(4)
	bmp := NewBitmap(4, 4, PixelMono)
	if err := Mono(o, bmp, 1); err == nil {
		t.Fatal("expected overflow error with a too-small work buffer")
	}
}

func TestMonoIsSupersetOfGrayAbove128(t *testing.T) {
	size := 16
	o := unitSquare(size)
	gray := NewBitmap(size, size, PixelGray)
	if err := Gray(o, gray); err != nil {
		t.Fatalf("gray: %v", err)
	}
	mono := NewBitmap(size, size, PixelMono)
	if err := Mono(o, mono, size*size*minWorkBufPerPoint); err != nil {
		t.Fatalf("mono: %v", err)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g := gray.Buffer[gray.rowOffset(y)+x]
			bit := mono.Buffer[mono.rowOffset(y)+x/8]&(0x80>>uint(x%8)) != 0
			if g >= 128 && !bit {
				t.Errorf("pixel (%d,%d): gray=%d but mono bit unset", x, y, g)
			}
		}
	}
}

// thinColumn returns a rectangle two F26Dot6 units wide (1/32 pixel) and
// one pixel tall, entirely inside column x=1 — too thin to reach 50%
// coverage in that column, the dropout case from spec.md section 4.E step
// 4.
func thinColumn() *outline.Outline {
	return &outline.Outline{
		Points: []fixedmath.Vector{
			{X: 100, Y: 0},
			{X: 100, Y: 64},
			{X: 102, Y: 64},
			{X: 102, Y: 0},
		},
		Tags:     []byte{outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve},
		Contours: []uint16{3},
	}
}

func TestMonoDropoutSetsMidpointPixel(t *testing.T) {
	o := thinColumn()
	bmp := NewBitmap(4, 1, PixelMono)
	if err := Mono(o, bmp, 4*minWorkBufPerPoint); err != nil {
		t.Fatalf("mono: %v", err)
	}
	if bmp.Buffer[0]&(0x80>>1) == 0 {
		t.Errorf("expected dropout to set pixel 1, buffer = %08b", bmp.Buffer[0])
	}
}

func TestMonoIgnoreDropoutsSuppressesMidpointPixel(t *testing.T) {
	o := thinColumn()
	o.Flags |= outline.FlagIgnoreDropouts
	bmp := NewBitmap(4, 1, PixelMono)
	if err := Mono(o, bmp, 4*minWorkBufPerPoint); err != nil {
		t.Fatalf("mono: %v", err)
	}
	if bmp.Buffer[0] != 0 {
		t.Errorf("expected IGNORE_DROPOUTS to suppress the pixel, buffer = %08b", bmp.Buffer[0])
	}
}

func TestBitmapSetMonoSpanClampsToBounds(t *testing.T) {
	bmp := NewBitmap(8, 2, PixelMono)
	bmp.SetMonoSpan(-5, 20, 0) // should clamp without panicking
	for x := 0; x < 8; x++ {
		if bmp.Buffer[0]&(0x80>>uint(x)) == 0 {
			t.Errorf("pixel %d should be set after clamped full-row span", x)
		}
	}
}
