package outline

import "github.com/inkwell-labs/corefont/fixedmath"

// Embolden offsets every point of o outward along its contour's local
// normal by strength (in F26Dot6 pixels), synthesizing a bolder glyph
// without a second master design, per spec.md's "simple oblique/embolden
// synthesis" allowance. The normal at each point is approximated from the
// chord between its neighbors, matching the teacher's preference for cheap
// vector arithmetic over analytic curve normals (freetype.go never needs
// true curve normals either, since its rasterizer flattens to lines first).
func (o *Outline) Embolden(strength fixedmath.F26Dot6) {
	if strength == 0 {
		return
	}
	start := 0
	for _, end := range o.Contours {
		e := int(end)
		emboldenContour(o.Points[start:e+1], strength)
		start = e + 1
	}
}

func emboldenContour(points []fixedmath.Vector, strength fixedmath.F26Dot6) {
	n := len(points)
	if n < 3 {
		return
	}
	offsets := make([]fixedmath.Vector, n)
	for i := range points {
		prev := points[(i-1+n)%n]
		next := points[(i+1)%n]
		chord := next.Sub(prev)
		// Outward normal of the chord, rotated -90 degrees (clockwise),
		// matching a contour wound counter-clockwise per the non-zero fill
		// convention in spec.md section 3.
		normal := fixedmath.Vector{X: chord.Y, Y: -chord.X}
		length := fixedmath.VectorLength(normal)
		if length == 0 {
			continue
		}
		scale := int64(strength) << 6 / int64(length)
		offsets[i] = fixedmath.Vector{
			X: fixedmath.F26Dot6(int64(normal.X) * scale >> 6),
			Y: fixedmath.F26Dot6(int64(normal.Y) * scale >> 6),
		}
	}
	for i := range points {
		points[i] = points[i].Add(offsets[i])
	}
}
