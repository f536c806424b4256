// Package face implements the format-agnostic Face object, per
// SPEC_FULL.md section 4.H: size selection, charmap lookup, and glyph
// loading dispatched across whichever driver.Driver opened the
// underlying stream, generalizing freetype/truetype/face.go's
// size/DPI/hinting Options and truetype.Font's metadata fields from one
// hardcoded format to any driver.Face a Registry hands back.
package face

import (
	"github.com/inkwell-labs/corefont/driver"
	"golang.org/x/exp/shiny/font"

	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

// Hinting is the glyph-node quantization mode a Face's current Size
// applies, re-exported from the teacher's own dependency rather than
// declaring a parallel enum.
type Hinting = font.Hinting

const (
	HintingNone     = font.HintingNone
	HintingVertical = font.HintingVertical
	HintingFull     = font.HintingFull
)

// SizeMetrics mirrors FT_Size_Metrics: the current pixel-size selection.
// Ascender, Descender, Height and MaxAdvance are not computed by this
// package; SetPixelSizes and SetCharSize leave them zero.
type SizeMetrics struct {
	PixelWidth, PixelHeight uint16
	Ascender, Descender, Height, MaxAdvance fixedmath.F26Dot6
}

// Size is a Face's current character-size selection, the Go analogue of
// FT_SizeRec: a Face owns exactly one active Size at a time (no
// multi-size FT_New_Size support, since nothing in this module's scope
// needs more than one concurrently selected size per Face).
type Size struct {
	Metrics SizeMetrics
}

// BitmapSize describes one embedded bitmap strike a bitmap-only or
// bitmap-augmented face carries, the Go analogue of FT_Bitmap_Size.
type BitmapSize = driver.BitmapSize

// Charmap describes one of a Face's character maps. Only a single
// Unicode-like charmap is modeled (driver.CharmapFace's CharIndex), the
// platform/encoding-ID enumeration spec.md's Charmap type names but that
// none of this module's drivers (plain TrueType/CFF/Type 1/CID) expose
// more than one of.
type Charmap struct {
	Unicode bool
}

// Face is an opened, format-agnostic font instance.
type Face struct {
	backend driver.Face
	drv     driver.Driver
	stream  sfio.Stream

	unitsPerEm int
	numGlyphs  int

	size Size
}

// Open probes s against reg and wraps whichever driver accepts it.
func Open(reg *driver.Registry, s sfio.Stream) (*Face, error) {
	backend, d, err := reg.Probe(s)
	if err != nil {
		return nil, err
	}
	return newFace(backend, d, s), nil
}

// OpenForced bypasses probing, the Face-level equivalent of
// driver.Registry.OpenForced for a caller that already knows the format
// by its driver name.
func OpenForced(reg *driver.Registry, name string, s sfio.Stream) (*Face, error) {
	backend, d, err := reg.OpenForced(name, s)
	if err != nil {
		return nil, err
	}
	return newFace(backend, d, s), nil
}

func newFace(backend driver.Face, d driver.Driver, s sfio.Stream) *Face {
	f := &Face{
		backend:    backend,
		drv:        d,
		stream:     s,
		unitsPerEm: backend.UnitsPerEm(),
		numGlyphs:  backend.NumGlyphs(),
	}
	f.setDefaultPixelSize()
	return f
}

// setDefaultPixelSize gives a freshly opened Face an initial 12-pixel
// size, the way freetype/truetype/face.go's Options.size defaults an
// absent Size to 12 points. Construction has no "other axis" to fall back
// to the way SetPixelSizes does, so this sets the size directly rather
// than routing through SetPixelSizes' zero-means-fail contract.
func (f *Face) setDefaultPixelSize() {
	f.size = Size{Metrics: SizeMetrics{PixelWidth: 12, PixelHeight: 12}}
}

func (f *Face) NumGlyphs() int  { return f.numGlyphs }
func (f *Face) UnitsPerEm() int { return f.unitsPerEm }

// FixedSizes reports the embedded bitmap strikes this face carries, if
// any. Only meaningful for a driver implementing driver.FixedSizesFace;
// no driver in this module does yet (no EBDT/EBLC bitmap-strike decoder
// is implemented), so this is currently always empty, but the slot lets a
// future bitmap-strike driver populate it without changing Face's shape.
func (f *Face) FixedSizes() []driver.BitmapSize {
	fs, ok := f.backend.(driver.FixedSizesFace)
	if !ok {
		return nil
	}
	return fs.FixedSizes()
}

// DriverName reports the backing driver's short identifier ("truetype",
// "cff", "type1", "cid"), the name OpenForced accepts.
func (f *Face) DriverName() string { return f.drv.Name() }

// Size returns the face's currently selected size.
func (f *Face) Size() Size { return f.size }

// SetCharSize selects a size in 26.6 fixed-point points (zero means "keep
// the same value as the other axis"), scaled to pixels at the given
// resolutions, mirroring FT_Set_Char_Size.
func (f *Face) SetCharSize(charWidth, charHeight fixedmath.F26Dot6, horzRes, vertRes uint32) error {
	if charWidth == 0 {
		charWidth = charHeight
	}
	if charHeight == 0 {
		charHeight = charWidth
	}
	if charWidth <= 0 || charHeight <= 0 {
		return errcode.New("face.SetCharSize", errcode.InvalidPixelSize)
	}
	if horzRes == 0 {
		horzRes = 72
	}
	if vertRes == 0 {
		vertRes = 72
	}
	pixelW := int(charWidth) * int(horzRes) / 72
	pixelH := int(charHeight) * int(vertRes) / 72
	// charWidth/charHeight are already 26.6 fixed-point, so the division
	// above yields a 26.6 pixel size; Round to the nearest whole pixel for
	// SetPixelSizes' integer ppem contract.
	return f.SetPixelSizes(uint16(fixedmath.F26Dot6(pixelW).Round()), uint16(fixedmath.F26Dot6(pixelH).Round()))
}

// SetPixelSizes selects an exact pixel size, mirroring
// FT_Set_Pixel_Sizes. A zero value for either axis reuses the other axis'
// value; setting both to zero leaves nothing to reuse and fails with
// errcode.InvalidPixelSize.
func (f *Face) SetPixelSizes(pixelWidth, pixelHeight uint16) error {
	if pixelWidth == 0 {
		pixelWidth = pixelHeight
	}
	if pixelHeight == 0 {
		pixelHeight = pixelWidth
	}
	if pixelWidth == 0 || pixelHeight == 0 {
		return errcode.New("face.SetPixelSizes", errcode.InvalidPixelSize)
	}
	f.size = Size{Metrics: SizeMetrics{
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
	}}
	return nil
}

// Charmaps reports the charmaps this face's driver exposes.
func (f *Face) Charmaps() []Charmap {
	if _, ok := f.backend.(driver.CharmapFace); ok {
		return []Charmap{{Unicode: true}}
	}
	return nil
}

// SelectCharmap selects a charmap by format; only Unicode is modeled, so
// the only meaningful call is SelectCharmap(true).
func (f *Face) SelectCharmap(unicode bool) error {
	if !unicode {
		return errcode.New("face.SelectCharmap", errcode.InvalidArgument)
	}
	if _, ok := f.backend.(driver.CharmapFace); !ok {
		return errcode.New("face.SelectCharmap", errcode.InvalidCharMapHandle)
	}
	return nil
}

// GetCharIndex maps a Unicode code point to a glyph index, returning 0
// (the conventional .notdef slot) if this face has no charmap or the
// code point is unmapped.
func (f *Face) GetCharIndex(r rune) loader.Index {
	cm, ok := f.backend.(driver.CharmapFace)
	if !ok {
		return 0
	}
	return cm.CharIndex(r)
}

// LoadGlyph decodes gid at the face's current size.
func (f *Face) LoadGlyph(gid loader.Index) (driver.GlyphResult, error) {
	if int(gid) < 0 || int(gid) >= f.numGlyphs {
		return driver.GlyphResult{}, errcode.New("face.LoadGlyph", errcode.InvalidGlyphIndex)
	}
	return f.backend.LoadGlyph(gid, int(f.size.Metrics.PixelWidth), int(f.size.Metrics.PixelHeight))
}

// LoadChar maps r to a glyph index via the active charmap, then loads it,
// mirroring FT_Load_Char.
func (f *Face) LoadChar(r rune) (driver.GlyphResult, error) {
	return f.LoadGlyph(f.GetCharIndex(r))
}

// GlyphName reports gid's PostScript/post-table name, if the backing
// driver carries one.
func (f *Face) GlyphName(gid loader.Index) (string, bool) {
	ng, ok := f.backend.(driver.NamedGlyphFace)
	if !ok {
		return "", false
	}
	return ng.GlyphName(gid)
}

// Kerning returns the kerning adjustment between an adjacent glyph pair
// at the face's current horizontal pixel size, if the backing driver
// carries pair-kerning data.
func (f *Face) Kerning(left, right loader.Index) (int32, error) {
	kf, ok := f.backend.(driver.KerningFace)
	if !ok {
		return 0, errcode.New("face.Kerning", errcode.UnimplementedFeature)
	}
	return kf.Kerning(left, right, int(f.size.Metrics.PixelWidth))
}

// Close releases the underlying driver.Face and its stream.
func (f *Face) Close() error { return f.backend.Close() }
