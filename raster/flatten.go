package raster

import "github.com/inkwell-labs/corefont/fixedmath"

// flattenTolerance is the maximum deviation, in F26Dot6 units, allowed
// between a curve and its line-segment approximation, per SPEC_FULL.md's
// "flatten tolerance 1/64 pixel" (one F26Dot6 unit).
const flattenTolerance = 1

// maxFlattenDepth bounds recursive subdivision so a degenerate curve
// (duplicate or collinear control points driving the flatness test to
// never converge) cannot recurse unboundedly.
const maxFlattenDepth = 16

// lineSink receives flattened line segments in F26Dot6 pixel coordinates.
type lineSink interface {
	lineTo(x1, y1, x2, y2 int)
}

// curveFlattener implements outline.Sink, turning every curve segment
// into a sequence of lineTo calls against an underlying lineSink. This
// generalizes the teacher's freetype.go drawContour, which flattened
// curves inline while feeding its rasterizer's Adder interface directly;
// here flattening is split out so both the mono and gray converters can
// share it.
type curveFlattener struct {
	sink         lineSink
	cur, startPt fixedmath.Vector
}

func (f *curveFlattener) MoveTo(to fixedmath.Vector) {
	f.cur = to
	f.startPt = to
}

func (f *curveFlattener) LineTo(to fixedmath.Vector) {
	f.sink.lineTo(int(f.cur.X), int(f.cur.Y), int(to.X), int(to.Y))
	f.cur = to
}

func (f *curveFlattener) ConicTo(control, to fixedmath.Vector) {
	f.flattenConic(f.cur, control, to, 0)
	f.cur = to
}

func (f *curveFlattener) CubicTo(c1, c2, to fixedmath.Vector) {
	f.flattenCubic(f.cur, c1, c2, to, 0)
	f.cur = to
}

func lerp(a, b fixedmath.Vector, t float64) fixedmath.Vector {
	return fixedmath.Vector{
		X: a.X + fixedmath.F26Dot6(float64(b.X-a.X)*t),
		Y: a.Y + fixedmath.F26Dot6(float64(b.Y-a.Y)*t),
	}
}

// conicFlat reports whether the control point c0-c1-c2 deviates from the
// chord c0-c2 by no more than flattenTolerance.
func conicFlat(c0, c1, c2 fixedmath.Vector) bool {
	return pointLineDeviation(c1, c0, c2) <= flattenTolerance
}

// pointLineDeviation returns twice the triangle area of (p, a, b) divided
// by the chord length, i.e. the perpendicular distance from p to line ab,
// using float64 for the square root exactly as freetype/raster/geom.go's
// Point.Len does ("TODO(nigeltao): use fixed point math" — the spec's
// 1/64 pixel tolerance does not demand more precision than float64 gives
// here).
func pointLineDeviation(p, a, b fixedmath.Vector) fixedmath.F26Dot6 {
	chord := fixedmath.VectorLength(b.Sub(a))
	if chord == 0 {
		return fixedmath.VectorLength(p.Sub(a))
	}
	cross := int64(p.X-a.X)*int64(b.Y-a.Y) - int64(p.Y-a.Y)*int64(b.X-a.X)
	if cross < 0 {
		cross = -cross
	}
	return fixedmath.F26Dot6(cross / int64(chord))
}

func (f *curveFlattener) flattenConic(p0, p1, p2 fixedmath.Vector, depth int) {
	if depth >= maxFlattenDepth || conicFlat(p0, p1, p2) {
		f.sink.lineTo(int(p0.X), int(p0.Y), int(p2.X), int(p2.Y))
		return
	}
	p01 := lerp(p0, p1, 0.5)
	p12 := lerp(p1, p2, 0.5)
	mid := lerp(p01, p12, 0.5)
	f.flattenConic(p0, p01, mid, depth+1)
	f.flattenConic(mid, p12, p2, depth+1)
}

func cubicFlat(p0, p1, p2, p3 fixedmath.Vector) bool {
	return pointLineDeviation(p1, p0, p3) <= flattenTolerance &&
		pointLineDeviation(p2, p0, p3) <= flattenTolerance
}

func (f *curveFlattener) flattenCubic(p0, p1, p2, p3 fixedmath.Vector, depth int) {
	if depth >= maxFlattenDepth || cubicFlat(p0, p1, p2, p3) {
		f.sink.lineTo(int(p0.X), int(p0.Y), int(p3.X), int(p3.Y))
		return
	}
	p01 := lerp(p0, p1, 0.5)
	p12 := lerp(p1, p2, 0.5)
	p23 := lerp(p2, p3, 0.5)
	p012 := lerp(p01, p12, 0.5)
	p123 := lerp(p12, p23, 0.5)
	mid := lerp(p012, p123, 0.5)
	f.flattenCubic(p0, p01, p012, mid, depth+1)
	f.flattenCubic(mid, p123, p23, p3, depth+1)
}
