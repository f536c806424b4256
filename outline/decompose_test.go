package outline

import (
	"testing"

	"github.com/inkwell-labs/corefont/fixedmath"
)

// recordingSink records every callback it receives, for asserting
// decomposition shape in tests without a rasterizer dependency.
type recordingSink struct {
	ops []string
}

func (r *recordingSink) MoveTo(to fixedmath.Vector) {
	r.ops = append(r.ops, "M")
}
func (r *recordingSink) LineTo(to fixedmath.Vector) {
	r.ops = append(r.ops, "L")
}
func (r *recordingSink) ConicTo(control, to fixedmath.Vector) {
	r.ops = append(r.ops, "Q")
}
func (r *recordingSink) CubicTo(c1, c2, to fixedmath.Vector) {
	r.ops = append(r.ops, "C")
}

func opsEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDecomposeAllOnCurve(t *testing.T) {
	o := square()
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	want := []string{"M", "L", "L", "L", "L"} // 3 interior edges + close
	if !opsEqual(rec.ops, want) {
		t.Errorf("got ops %v, want %v", rec.ops, want)
	}
}

func TestDecomposeConicCurve(t *testing.T) {
	// A single conic arc: on, off, on.
	o := &Outline{
		Points: []fixedmath.Vector{
			{X: 0, Y: 0},
			{X: 5 << 6, Y: 5 << 6},
			{X: 10 << 6, Y: 0},
		},
		Tags:     []byte{TagOnCurve, 0, TagOnCurve},
		Contours: []uint16{2},
	}
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	want := []string{"M", "Q", "L"} // conic to last on-curve, then line closing back to start
	if !opsEqual(rec.ops, want) {
		t.Errorf("got ops %v, want %v", rec.ops, want)
	}
}

func TestDecomposeConsecutiveOffCurveInsertsMidpoint(t *testing.T) {
	// on, off, off, on: two consecutive conic off-curve points imply an
	// implicit on-curve midpoint between them (spec.md invariant 3).
	o := &Outline{
		Points: []fixedmath.Vector{
			{X: 0, Y: 0},
			{X: 4 << 6, Y: 8 << 6},
			{X: 8 << 6, Y: 8 << 6},
			{X: 12 << 6, Y: 0},
		},
		Tags:     []byte{TagOnCurve, 0, 0, TagOnCurve},
		Contours: []uint16{3},
	}
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	want := []string{"M", "Q", "Q", "L"}
	if !opsEqual(rec.ops, want) {
		t.Errorf("got ops %v, want %v", rec.ops, want)
	}
}

func TestDecomposeCubicCurve(t *testing.T) {
	o := &Outline{
		Points: []fixedmath.Vector{
			{X: 0, Y: 0},
			{X: 3 << 6, Y: 6 << 6},
			{X: 7 << 6, Y: 6 << 6},
			{X: 10 << 6, Y: 0},
		},
		Tags:     []byte{TagOnCurve, TagCubic, TagCubic, TagOnCurve},
		Contours: []uint16{3},
	}
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	want := []string{"M", "C", "L"}
	if !opsEqual(rec.ops, want) {
		t.Errorf("got ops %v, want %v", rec.ops, want)
	}
}

func TestDecomposeStartsOffCurve(t *testing.T) {
	// First point off-curve, last point on-curve: the decomposer should
	// rotate the last point to the front as the MoveTo target.
	o := &Outline{
		Points: []fixedmath.Vector{
			{X: 5 << 6, Y: 10 << 6}, // off-curve
			{X: 10 << 6, Y: 0},      // on-curve
			{X: 0, Y: 0},            // on-curve
		},
		Tags:     []byte{0, TagOnCurve, TagOnCurve},
		Contours: []uint16{2},
	}
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if rec.ops[0] != "M" {
		t.Fatalf("first op should be MoveTo, got %v", rec.ops)
	}
}

func TestDecomposeEmptyOutline(t *testing.T) {
	o := &Outline{}
	var rec recordingSink
	if err := o.Decompose(&rec); err != nil {
		t.Fatalf("decompose of empty outline should not error: %v", err)
	}
	if len(rec.ops) != 0 {
		t.Errorf("expected no ops for empty outline, got %v", rec.ops)
	}
}
