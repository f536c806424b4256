package loader

import (
	"testing"

	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

func triangleChild(Index) (GlyphLoad, Metrics, error) {
	o := outline.Outline{
		Points:   []fixedmath.Vector{{X: 0, Y: 0}, {X: 1 << 6, Y: 0}, {X: 0, Y: 1 << 6}},
		Tags:     []byte{outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve},
		Contours: []uint16{2},
	}
	return GlyphLoad{Outline: o}, Metrics{Advance: 10 << 6}, nil
}

func u16le(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func TestAssembleCompositeSingleComponentWithOffset(t *testing.T) {
	l := New()
	// flags: ARGS_ARE_XY_VALUES only, args as bytes, index 0, dx=5 dy=-3.
	record := append([]byte{}, u16le(FlagArgsAreXYValues)...)
	record = append(record, u16le(0)...)
	record = append(record, byte(int8(5)), byte(int8(-3)))

	cur := sfio.Cursor(record)
	if _, err := AssembleComposite(l, cur, 0, triangleChild); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(l.Current.Outline.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(l.Current.Outline.Points))
	}
	want := fixedmath.Vector{X: 5, Y: -3}
	if l.Current.Outline.Points[0] != want {
		t.Errorf("point 0 = %v, want %v", l.Current.Outline.Points[0], want)
	}
}

func TestAssembleCompositeUseMyMetrics(t *testing.T) {
	l := New()
	flags := FlagArgsAreXYValues | FlagUseMyMetrics
	record := append([]byte{}, u16le(flags)...)
	record = append(record, u16le(0)...)
	record = append(record, 0, 0)

	cur := sfio.Cursor(record)
	metrics, err := AssembleComposite(l, cur, 0, triangleChild)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if metrics.Advance != 10<<6 {
		t.Errorf("expected USE_MY_METRICS to propagate advance, got %v", metrics.Advance)
	}
}

func TestAssembleCompositeTooDeep(t *testing.T) {
	l := New()
	record := append([]byte{}, u16le(FlagArgsAreXYValues)...)
	record = append(record, u16le(0)...)
	record = append(record, 0, 0)
	cur := sfio.Cursor(record)

	_, err := AssembleComposite(l, cur, maxCompositeDepth, triangleChild)
	if err == nil {
		t.Fatal("expected composite-too-deep error")
	}
	e, ok := err.(*errcode.Error)
	if !ok || e.Code != errcode.CompositeTooDeep {
		t.Fatalf("expected CompositeTooDeep, got %v", err)
	}
}

func TestAssembleCompositePointMatching(t *testing.T) {
	l := New()
	// Base already has 4 points from a prior component; point 3 anchors
	// the new component's point 0 (ARGS_ARE_XY_VALUES clear, arg1=3, arg2=0).
	l.Current.Outline.Points = append(l.Current.Outline.Points,
		fixedmath.Vector{X: 1, Y: 1},
		fixedmath.Vector{X: 2, Y: 2},
		fixedmath.Vector{X: 3, Y: 3},
		fixedmath.Vector{X: 40 << 6, Y: 50 << 6},
	)
	l.Current.Outline.Contours = append(l.Current.Outline.Contours, 3)

	flags := uint16(0) // ARGS_ARE_XY_VALUES clear: point matching.
	record := append([]byte{}, u16le(flags)...)
	record = append(record, u16le(0)...)
	record = append(record, byte(3), byte(0)) // arg1=3, arg2=0

	cur := sfio.Cursor(record)
	if _, err := AssembleComposite(l, cur, 0, triangleChild); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	p := len(l.Current.Outline.Points) - 3 // pointOffset before the child's 3 points.
	if l.Current.Outline.Points[3] != l.Current.Outline.Points[p+0] {
		t.Errorf("point 3 = %v, want point-matched to point %d = %v",
			l.Current.Outline.Points[3], p, l.Current.Outline.Points[p+0])
	}
}

func TestAssembleCompositePointMatchingOutOfRange(t *testing.T) {
	l := New()
	l.Current.Outline.Points = append(l.Current.Outline.Points, fixedmath.Vector{X: 1, Y: 1})

	flags := uint16(0)
	record := append([]byte{}, u16le(flags)...)
	record = append(record, u16le(0)...)
	record = append(record, byte(9), byte(0)) // arg1 out of range for a 1-point base.

	cur := sfio.Cursor(record)
	_, err := AssembleComposite(l, cur, 0, triangleChild)
	e, ok := err.(*errcode.Error)
	if !ok || e.Code != errcode.InvalidComposite {
		t.Fatalf("expected InvalidComposite, got %v", err)
	}
}

func TestAssembleCompositeTwoByTwoTransform(t *testing.T) {
	l := New()
	flags := FlagArgsAreXYValues | FlagWeHaveATwoByTwo
	record := append([]byte{}, u16le(flags)...)
	record = append(record, u16le(0)...)
	record = append(record, 0, 0)
	// 2x2: identity scaled by 2 (F2Dot14: 1.0 == 0x4000, so 2.0 == 0x8000,
	// which as int16 is negative; use 1.5 == 0x6000 instead to stay positive).
	record = append(record, u16le(0x6000)...) // xx
	record = append(record, u16le(0)...)       // xy
	record = append(record, u16le(0)...)       // yx
	record = append(record, u16le(0x6000)...) // yy

	cur := sfio.Cursor(record)
	if _, err := AssembleComposite(l, cur, 0, triangleChild); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	// point 1 was (1<<6, 0); scaled by 1.5 should become (96, 0).
	if got := l.Current.Outline.Points[1].X; got != 96 {
		t.Errorf("scaled X = %v, want 96", got)
	}
}
