// Package outline implements the glyph outline representation and its
// transforms, per SPEC_FULL.md section 4.C: an ordered sequence of points
// and contour-end indices, with on/off-curve tags, translate/transform,
// bounding/control box computation, decomposition to a push-model sink, and
// the simple oblique/embolden synthesis spec.md permits.
//
// The point/tag layout mirrors freetype/truetype/glyph.go's Point{X,Y,Flags}
// from the teacher repository, generalized from TrueType's specific flag
// bits to the spec's format-agnostic tag byte.
package outline

import "github.com/inkwell-labs/corefont/fixedmath"

// Tag bits for Outline.Tags, per SPEC_FULL.md/spec.md section 3.
const (
	TagOnCurve  byte = 1 << 0
	TagCubic    byte = 1 << 1 // set: third-order (cubic) off-curve; clear (and off-curve): second-order (conic)
	tagReserved byte = 0xfc   // bits 2-7, reserved for hinter use
)

// Flags for Outline.Flags.
const (
	FlagOwner uint32 = 1 << iota
	FlagEvenOddFill
	FlagReverseFill
	FlagIgnoreDropouts
	FlagHighPrecision
	FlagSinglePass
)

// Outline is a glyph outline: contours of line and Bezier segments.
type Outline struct {
	Points   []fixedmath.Vector
	Tags     []byte
	Contours []uint16 // each entry is the index of the last point in that contour
	Flags    uint32
}

// New returns an Outline with capacity for nPoints points and nContours
// contours, per spec.md's growth contract (capacity, not initial length).
func New(nPoints, nContours int) *Outline {
	return &Outline{
		Points:   make([]fixedmath.Vector, 0, nPoints),
		Tags:     make([]byte, 0, nPoints),
		Contours: make([]uint16, 0, nContours),
	}
}

// NumPoints returns the number of points in o.
func (o *Outline) NumPoints() int { return len(o.Points) }

// NumContours returns the number of contours in o.
func (o *Outline) NumContours() int { return len(o.Contours) }

// Validate checks the invariants from spec.md section 3:
//  1. contours[i] < contours[i+1] strictly; contours[n-1] == n_points-1.
//  2. n_points == 0 iff n_contours == 0.
func (o *Outline) Validate() error {
	np, nc := len(o.Points), len(o.Contours)
	if (np == 0) != (nc == 0) {
		return errInvalidOutline
	}
	if nc == 0 {
		return nil
	}
	if len(o.Tags) != np {
		return errInvalidOutline
	}
	prev := -1
	for i, end := range o.Contours {
		if int(end) <= prev || int(end) >= np {
			return errInvalidOutline
		}
		_ = i
		prev = int(end)
	}
	if int(o.Contours[nc-1]) != np-1 {
		return errInvalidOutline
	}
	return nil
}

// Copy copies src into dst, per spec.md's "requires dst.capacity >=
// src.{n_points, n_contours}" contract. dst's slices are reused (their
// length is reset and re-grown) rather than reallocated when capacity
// already suffices, matching the glyph loader's "never shrunk" growth
// policy in package loader.
func Copy(dst, src *Outline) error {
	np, nc := len(src.Points), len(src.Contours)
	if cap(dst.Points) < np || cap(dst.Contours) < nc {
		return errInsufficientCapacity
	}
	dst.Points = dst.Points[:np]
	dst.Tags = dst.Tags[:np]
	dst.Contours = dst.Contours[:nc]
	copy(dst.Points, src.Points)
	copy(dst.Tags, src.Tags)
	copy(dst.Contours, src.Contours)
	dst.Flags = src.Flags
	return nil
}

// Translate shifts every point in o by delta.
func (o *Outline) Translate(delta fixedmath.Vector) {
	for i := range o.Points {
		o.Points[i] = o.Points[i].Add(delta)
	}
}

// Transform applies m to every point in o.
func (o *Outline) Transform(m fixedmath.Matrix) {
	for i := range o.Points {
		o.Points[i] = m.Apply(o.Points[i])
	}
}

// Reverse inverts the orientation of every contour in o, flipping the
// effective fill rule the way spec.md describes ("used to flip the fill
// rule").
func (o *Outline) Reverse() {
	start := 0
	for _, end := range o.Contours {
		e := int(end)
		for i, j := start, e; i < j; i, j = i+1, j-1 {
			o.Points[i], o.Points[j] = o.Points[j], o.Points[i]
			o.Tags[i], o.Tags[j] = o.Tags[j], o.Tags[i]
		}
		start = e + 1
	}
	o.Flags ^= FlagReverseFill
}

var errInvalidOutline = invalidOutlineError{}
var errInsufficientCapacity = insufficientCapacityError{}

type invalidOutlineError struct{}

func (invalidOutlineError) Error() string { return "outline: invalid outline structure" }

type insufficientCapacityError struct{}

func (insufficientCapacityError) Error() string { return "outline: destination capacity too small" }
