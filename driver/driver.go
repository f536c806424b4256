// Package driver defines the format-agnostic interface every font backend
// implements, per SPEC_FULL.md section 4.G: a capability-based dispatch
// surface ("polymorphic over the capability set") plus a Registry that
// probes each registered driver in turn until one accepts a stream.
//
// The split between this package (the contract) and driver/truetype,
// driver/cff, driver/type1, driver/cid (the implementations) mirrors
// FreeType's module service architecture (ftserv.h/ftmodule.h in the
// original implementation): drivers are modules with a declared
// capability set and an optional table of named services, looked up by
// name rather than by a fixed vtable so a capability can be added without
// breaking every other driver's interface.
package driver

import (
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

// Flags describes the capabilities a driver declares, per spec.md's
// module flags: Scalable, HasHinter, NoOutlines (embedded-bitmap-only
// formats), and so on.
type Flags uint32

const (
	Scalable Flags = 1 << iota
	HasHinter
	NoOutlines
	GlyphNames
	MultipleMasters
)

// Metrics mirrors loader.Metrics for the driver/face boundary, kept as a
// distinct alias so driver implementations don't need to import loader's
// composite-assembly machinery just to report an advance width.
type Metrics = loader.Metrics

// GlyphFormat describes what LoadGlyph populated, per spec.md section 3:
// "format ∈ {Outline, Bitmap, Composite}".
type GlyphFormat int

const (
	FormatOutline GlyphFormat = iota
	FormatBitmap
	FormatComposite
)

// GlyphResult is what LoadGlyph hands back to package face, discriminated
// by Format.
type GlyphResult struct {
	Format  GlyphFormat
	Outline outline.Outline
	Metrics Metrics
}

// Face is an opened, driver-specific font instance: the result of a
// successful Driver.Open. It is format-agnostic from package face's point
// of view, matching spec.md's "uniform internal abstraction."
type Face interface {
	// NumGlyphs returns the number of glyphs in the face.
	NumGlyphs() int
	// UnitsPerEm returns the design grid resolution (FUnits per em).
	UnitsPerEm() int
	// LoadGlyph loads glyph index gid, scaled to the given pixel size.
	LoadGlyph(gid loader.Index, ppemX, ppemY int) (GlyphResult, error)
	// Close releases any resources the face holds (decoded tables,
	// memory-mapped views acquired through its Stream).
	Close() error
}

// KerningFace is implemented by faces whose format carries explicit pair
// kerning (the "get_kerning?" optional capability in spec.md section
// 4.G).
type KerningFace interface {
	Kerning(left, right loader.Index, ppemX int) (int32, error)
}

// CharmapFace is implemented by faces that can map a Unicode code point
// to a glyph index.
type CharmapFace interface {
	CharIndex(r rune) loader.Index
}

// NamedGlyphFace is implemented by faces that can report a glyph's
// PostScript name (the "postscript-name" named service in spec.md).
type NamedGlyphFace interface {
	GlyphName(gid loader.Index) (string, bool)
}

// ColorRenderer is an optional collaborator a driver may implement to
// supply COLR/SVG glyph layers. No driver in this module implements it;
// it exists so a future color-font backend has a stable extension point
// without changing Face, per SPEC_FULL.md's Open Question decision to
// model OT-SVG as an interface rather than as code.
type ColorRenderer interface {
	RenderColorLayers(gid loader.Index) (bool, error)
}

// IncrementalInterface is an optional collaborator for fonts whose glyph
// data is supplied by the caller on demand rather than read from a
// stream (FreeType's FT_Incremental_Interface). Not implemented by any
// driver here; declared for the same forward-compatibility reason as
// ColorRenderer.
type IncrementalInterface interface {
	GetGlyphData(gid loader.Index) ([]byte, error)
}

// BitmapSize describes one embedded bitmap strike, the Go analogue of
// FT_Bitmap_Size.
type BitmapSize struct {
	Width, Height      uint16
	Size, XPpem, YPpem fixedmath.F26Dot6
}

// FixedSizesFace is an optional collaborator for faces that carry
// embedded bitmap strikes (spec.md's num_fixed_sizes). No driver in this
// module implements it yet (no EBDT/EBLC decoder is implemented), but
// package face exposes the slot so a future bitmap-strike driver can
// populate it without changing face.Face's shape.
type FixedSizesFace interface {
	FixedSizes() []BitmapSize
}

// Driver is a format backend, registered once with a Registry.
type Driver interface {
	// Name returns the driver's short identifier ("truetype", "cff",
	// "type1", "cid").
	Name() string
	// Flags returns this driver's declared capability set.
	Flags() Flags
	// Probe reports whether s looks like this driver's format, by
	// reading only enough of s to decide (a magic number, a handful of
	// header fields). On a negative result the driver must leave s
	// positioned wherever is convenient; Registry.Probe always reseeks
	// to the stream's start before trying the next driver.
	Probe(s sfio.Stream) bool
	// Open parses s fully and returns a Face, assuming Probe would
	// return true for s.
	Open(s sfio.Stream) (Face, error)
	// Services returns this driver's named service table (spec.md's
	// "postscript-name" service and others a specific format may add).
	// May return nil.
	Services() map[string]any
}
