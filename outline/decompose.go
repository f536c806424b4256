package outline

import "github.com/inkwell-labs/corefont/fixedmath"

// Sink receives the callbacks emitted by Outline.Decompose, in order, per
// SPEC_FULL.md section 4.C. Conic (ConicTo) segments are second-order
// Bezier curves (one control point); Cubic (CubicTo) segments are
// third-order (two control points).
type Sink interface {
	MoveTo(to fixedmath.Vector)
	LineTo(to fixedmath.Vector)
	ConicTo(control, to fixedmath.Vector)
	CubicTo(c1, c2, to fixedmath.Vector)
}

// Decompose walks every contour of o, emitting callbacks to sink. Two
// consecutive off-curve points of the same order imply an inserted
// midpoint on-curve point, matching spec.md invariant 3. The first point of
// every contour must be on-curve; if it is off-curve, the contour's last
// on-curve point is rotated to the front, or a midpoint of the first and
// last points is synthesized when neither is on-curve, per spec.md's
// decompose contract.
//
// This is the teacher's freetype.go drawContour algorithm (which fed a
// rasterizer directly) generalized into a reusable push-model sink so any
// consumer — a rasterizer, a round-trip test, an SVG exporter — can share
// it.
func (o *Outline) Decompose(sink Sink) error {
	if len(o.Points) == 0 {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	start := 0
	for _, end := range o.Contours {
		e := int(end)
		if err := decomposeContour(o.Points[start:e+1], o.Tags[start:e+1], sink); err != nil {
			return err
		}
		start = e + 1
	}
	return nil
}

func onCurve(tag byte) bool { return tag&TagOnCurve != 0 }
func isCubicOff(tag byte) bool { return tag&TagOnCurve == 0 && tag&TagCubic != 0 }

func midpoint(a, b fixedmath.Vector) fixedmath.Vector {
	return fixedmath.Vector{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// rotated returns points and tags reordered so index 0 is on-curve,
// synthesizing a start point when neither the first nor the last point of
// the contour is on-curve.
func rotated(points []fixedmath.Vector, tags []byte) ([]fixedmath.Vector, []byte, fixedmath.Vector) {
	n := len(points)
	if onCurve(tags[0]) {
		return points, tags, points[0]
	}
	if onCurve(tags[n-1]) {
		rp := make([]fixedmath.Vector, n)
		rt := make([]byte, n)
		rp[0] = points[n-1]
		rt[0] = tags[n-1]
		copy(rp[1:], points[:n-1])
		copy(rt[1:], tags[:n-1])
		return rp, rt, rp[0]
	}
	start := midpoint(points[0], points[n-1])
	rp := make([]fixedmath.Vector, n+1)
	rt := make([]byte, n+1)
	rp[0] = start
	rt[0] = TagOnCurve
	copy(rp[1:], points)
	copy(rt[1:], tags)
	return rp, rt, start
}

func decomposeContour(points []fixedmath.Vector, tags []byte, sink Sink) error {
	n := len(points)
	if n == 0 {
		return nil
	}
	if n == 1 {
		if onCurve(tags[0]) {
			sink.MoveTo(points[0])
			sink.LineTo(points[0])
		}
		return nil
	}

	rp, rt, start := rotated(points, tags)
	n = len(rp)
	sink.MoveTo(start)

	// pending holds off-curve control points not yet resolved to a segment.
	var pending []fixedmath.Vector

	resolveTo := func(to fixedmath.Vector) {
		switch len(pending) {
		case 0:
			sink.LineTo(to)
		case 1:
			sink.ConicTo(pending[0], to)
		case 2:
			sink.CubicTo(pending[0], pending[1], to)
		}
		pending = nil
	}

	for i := 1; i < n; i++ {
		p, tag := rp[i], rt[i]
		switch {
		case onCurve(tag):
			resolveTo(p)
		case isCubicOff(tag):
			pending = append(pending, p)
		default: // conic off-curve
			if len(pending) == 1 && !isCubicOff(rt[i-1]) {
				mid := midpoint(pending[0], p)
				sink.ConicTo(pending[0], mid)
				pending = pending[:0]
			}
			pending = append(pending, p)
		}
	}
	resolveTo(start)
	return nil
}
