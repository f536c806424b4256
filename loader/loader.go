// Package loader implements the glyph-loading accumulator shared by every
// format driver, per SPEC_FULL.md section 4.D: a base/current pair of
// outlines plus subglyph tables that composite glyph assembly appends to,
// generalizing FT_GlyphLoader (ftgloadr.h in the original implementation)
// from a C object with manual memory tracking into the Go idiom of slices
// grown by append.
package loader

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/outline"
)

// Index identifies a glyph within a face, independent of format.
type Index uint32

// maxPoints bounds a single glyph's point count, matching the uint16
// contour-end encoding outline.Outline relies on.
const maxPoints = 1 << 16

// Metrics carries the per-glyph measurements a composite's USE_MY_METRICS
// flag can inherit from a component, and phantom-point derived advance
// width for drivers (package driver/truetype) that compute it that way.
type Metrics struct {
	Advance fixedmath.F26Dot6
	Bearing fixedmath.Vector
}

// SubGlyph records one component of a composite glyph, mirroring
// FT_SubGlyph_ from ftgloadr.h.
type SubGlyph struct {
	Index     Index
	Flags     uint16
	Arg1, Arg2 int32
	Transform fixedmath.Matrix
}

// GlyphLoad is one accumulated glyph: its outline, any extra (phantom)
// points carried alongside it, and the subglyph records describing how it
// was assembled, mirroring FT_GlyphLoadRec_.
type GlyphLoad struct {
	Outline     outline.Outline
	ExtraPoints []fixedmath.Vector
	SubGlyphs   []SubGlyph
}

func (g *GlyphLoad) reset() {
	g.Outline.Points = g.Outline.Points[:0]
	g.Outline.Tags = g.Outline.Tags[:0]
	g.Outline.Contours = g.Outline.Contours[:0]
	g.ExtraPoints = g.ExtraPoints[:0]
	g.SubGlyphs = g.SubGlyphs[:0]
}

// Loader accumulates a glyph across possibly several composite components,
// the Go equivalent of FT_GlyphLoaderRec_: Current holds the component
// being decoded right now, Base holds everything Add has committed so far.
type Loader struct {
	Base    GlyphLoad
	Current GlyphLoad
}

// New returns an empty Loader.
func New() *Loader {
	return &Loader{}
}

// CheckPoints ensures Current has room for nPoints more points and
// nContours more contours, growing its backing slices geometrically the
// way outline.New's capacity contract expects. It mirrors
// FT_GlyphLoader_Check_Points, returning errcode.TooManyPoints /
// TooManyContours rather than silently truncating.
func (l *Loader) CheckPoints(nPoints, nContours int) error {
	want := len(l.Current.Outline.Points) + nPoints
	if want > maxPoints {
		return errcode.New("loader.CheckPoints", errcode.TooManyPoints)
	}
	if want > cap(l.Current.Outline.Points) {
		grown := make([]fixedmath.Vector, len(l.Current.Outline.Points), growCap(cap(l.Current.Outline.Points), want))
		copy(grown, l.Current.Outline.Points)
		l.Current.Outline.Points = grown
		grownTags := make([]byte, len(l.Current.Outline.Tags), cap(grown))
		copy(grownTags, l.Current.Outline.Tags)
		l.Current.Outline.Tags = grownTags
	}
	wantC := len(l.Current.Outline.Contours) + nContours
	if wantC > maxPoints {
		return errcode.New("loader.CheckPoints", errcode.TooManyContours)
	}
	if wantC > cap(l.Current.Outline.Contours) {
		grown := make([]uint16, len(l.Current.Outline.Contours), growCap(cap(l.Current.Outline.Contours), wantC))
		copy(grown, l.Current.Outline.Contours)
		l.Current.Outline.Contours = grown
	}
	return nil
}

// CheckSubglyphs ensures Current has room for n more subglyph records,
// mirroring FT_GlyphLoader_Check_Subglyphs.
func (l *Loader) CheckSubglyphs(n int) error {
	want := len(l.Current.SubGlyphs) + n
	if want > cap(l.Current.SubGlyphs) {
		grown := make([]SubGlyph, len(l.Current.SubGlyphs), growCap(cap(l.Current.SubGlyphs), want))
		copy(grown, l.Current.SubGlyphs)
		l.Current.SubGlyphs = grown
	}
	return nil
}

func growCap(have, want int) int {
	if have == 0 {
		have = 8
	}
	for have < want {
		have *= 2
	}
	return have
}

// Prepare empties Current without releasing its backing arrays, matching
// FT_GlyphLoader_Prepare's "empty the current glyph" contract so a fresh
// component can be decoded into the same buffers.
func (l *Loader) Prepare() {
	l.Current.reset()
}

// Add appends Current onto Base, offsetting Current's contour end
// indices by Base's existing point count (subglyph records are appended
// unchanged), then clears Current for reuse. This is FT_GlyphLoader_Add.
func (l *Loader) Add() {
	pointOffset := len(l.Base.Outline.Points)

	l.Base.Outline.Points = append(l.Base.Outline.Points, l.Current.Outline.Points...)
	l.Base.Outline.Tags = append(l.Base.Outline.Tags, l.Current.Outline.Tags...)
	for _, end := range l.Current.Outline.Contours {
		l.Base.Outline.Contours = append(l.Base.Outline.Contours, end+uint16(pointOffset))
	}
	l.Base.ExtraPoints = append(l.Base.ExtraPoints, l.Current.ExtraPoints...)
	l.Base.SubGlyphs = append(l.Base.SubGlyphs, l.Current.SubGlyphs...)

	l.Current.reset()
}

// Rewind empties both Base and Current, the Go analogue of
// FT_GlyphLoader_Rewind, used between independent LoadGlyph calls that
// reuse one Loader.
func (l *Loader) Rewind() {
	l.Base.reset()
	l.Current.reset()
}

// CopyPoints appends src's Base outline onto dst's Base outline, mirroring
// FT_GlyphLoader_Copy_Points; used when a driver needs to snapshot a
// loaded glyph's outline into a second loader (for example, caching an
// unhinted copy before applying a hinting program).
func CopyPoints(dst, src *Loader) error {
	if err := dst.CheckPoints(len(src.Base.Outline.Points), len(src.Base.Outline.Contours)); err != nil {
		return err
	}
	pointOffset := len(dst.Base.Outline.Points)
	dst.Base.Outline.Points = append(dst.Base.Outline.Points, src.Base.Outline.Points...)
	dst.Base.Outline.Tags = append(dst.Base.Outline.Tags, src.Base.Outline.Tags...)
	for _, end := range src.Base.Outline.Contours {
		dst.Base.Outline.Contours = append(dst.Base.Outline.Contours, end+uint16(pointOffset))
	}
	return nil
}
