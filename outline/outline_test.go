package outline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/inkwell-labs/corefont/fixedmath"
)

func square() *Outline {
	return &Outline{
		Points: []fixedmath.Vector{
			{X: 0, Y: 0},
			{X: 10 << 6, Y: 0},
			{X: 10 << 6, Y: 10 << 6},
			{X: 0, Y: 10 << 6},
		},
		Tags:     []byte{TagOnCurve, TagOnCurve, TagOnCurve, TagOnCurve},
		Contours: []uint16{3},
	}
}

func TestValidate(t *testing.T) {
	o := square()
	if err := o.Validate(); err != nil {
		t.Fatalf("square should validate: %v", err)
	}

	bad := square()
	bad.Contours = []uint16{1, 0} // not strictly increasing
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for non-increasing contours")
	}

	mismatched := &Outline{Points: []fixedmath.Vector{{}}, Tags: nil, Contours: nil}
	if err := mismatched.Validate(); err == nil {
		t.Fatal("expected validation error when points/contours disagree on emptiness")
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	o := square()
	orig := square()
	delta := fixedmath.Vector{X: 3 << 6, Y: -7 << 6}
	o.Translate(delta)
	o.Translate(fixedmath.Vector{X: -delta.X, Y: -delta.Y})
	if diff := cmp.Diff(orig.Points, o.Points); diff != "" {
		t.Errorf("translate round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	o := square()
	orig := square()
	m := fixedmath.Matrix{XX: fixedmath.One16 * 2, XY: fixedmath.One16 / 8, YX: -fixedmath.One16 / 4, YY: fixedmath.One16}
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	o.Transform(m)
	o.Transform(inv)
	for i := range o.Points {
		if abs64(int64(o.Points[i].X-orig.Points[i].X)) > 4 || abs64(int64(o.Points[i].Y-orig.Points[i].Y)) > 4 {
			t.Errorf("point %d: got %v, want ~%v", i, o.Points[i], orig.Points[i])
		}
	}
}

func TestReverseIsInvolution(t *testing.T) {
	o := square()
	orig := square()
	o.Reverse()
	o.Reverse()
	if diff := cmp.Diff(orig.Points, o.Points); diff != "" {
		t.Errorf("reverse(reverse(o)) mismatch (-want +got):\n%s", diff)
	}
	if orig.Flags != o.Flags {
		t.Errorf("flags should round trip: got %v, want %v", o.Flags, orig.Flags)
	}
}

func TestCopyRequiresCapacity(t *testing.T) {
	src := square()
	dst := New(2, 1) // too small
	if err := Copy(dst, src); err == nil {
		t.Fatal("expected insufficient capacity error")
	}
	dst2 := New(4, 1)
	if err := Copy(dst2, src); err != nil {
		t.Fatalf("copy into sufficient capacity failed: %v", err)
	}
	if diff := cmp.Diff(src.Points, dst2.Points); diff != "" {
		t.Errorf("copy mismatch (-want +got):\n%s", diff)
	}
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
