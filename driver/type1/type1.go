// Package type1 implements the driver.Driver interface for PostScript
// Type 1 fonts (PFA/PFB), per SPEC_FULL.md section 4.G / section 6. No
// teacher source for Type 1 charstring decoding was present in the
// retrieval pack (seehuhn-go-pdf/font/type1 appears only as PDF-embedding
// test files, which exercise a PSFont's high-level Glyphs/Cmds surface
// without shipping the decoder behind it), so this package is grounded on
// driver/cff's charstring.go idiom instead: the same operand-stack
// interpreter shape and loader.Loader accumulator, generalized to Type 1's
// narrower operator set, explicit hsbw/sbw width, and the
// eexec/charstring double-encryption the CFF format doesn't have.
package type1

import (
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

const defaultUnitsPerEm = 1000

// Font holds a fully decoded Type 1 program: its glyphs in definition
// order (so LoadGlyph's gid is stable across calls), their still-encoded
// charstrings, and the local Subrs a callsubr can reach.
type Font struct {
	glyphOrder []string
	charstrings map[string][]byte
	ctx        charstringContext
	encoding   []string // code -> glyph name, nil means StandardEncoding
}

// Driver is the registerable driver.Driver for PostScript Type 1 fonts.
type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "type1" }
func (*Driver) Flags() driver.Flags {
	return driver.Scalable | driver.GlyphNames
}
func (*Driver) Services() map[string]any { return nil }

// Probe recognizes a PFA's "%!" PostScript header or a PFB's 0x80
// packaging marker.
func (*Driver) Probe(s sfio.Stream) bool {
	var hdr [2]byte
	n, _ := s.Read(hdr[:])
	if n < 1 {
		return false
	}
	if hdr[0] == pfbMarker {
		return true
	}
	return n == 2 && hdr[0] == '%' && hdr[1] == '!'
}

func (d *Driver) Open(s sfio.Stream) (driver.Face, error) {
	size := s.Size()
	buf := make([]byte, size)
	if _, err := s.Read(buf); err != nil {
		return nil, errcode.New("type1.Open", errcode.InvalidStreamRead)
	}
	f, err := parse(buf)
	if err != nil {
		return nil, err
	}
	return &Face{font: f, stream: s}, nil
}

// parse decrypts a Type 1 program's private dictionary and extracts its
// CharStrings/Subrs, per the Adobe Type 1 Font Format's eexec layer
// (outer, r=55665) wrapping a second charstring-encryption layer (inner,
// r=4330) applied per glyph/subroutine.
func parse(buf []byte) (*Font, error) {
	cleartext, encryptedPrivate, err := splitProgram(buf)
	if err != nil {
		return nil, err
	}
	priv := decrypt(encryptedPrivate, 55665, 4)

	lenIV := scanLenIV(priv)
	order, rawGlyphs, err := scanCharstrings(priv)
	if err != nil {
		return nil, err
	}
	rawSubrs, err := scanSubrs(priv)
	if err != nil {
		return nil, err
	}

	charstrings := make(map[string][]byte, len(rawGlyphs))
	for name, raw := range rawGlyphs {
		charstrings[name] = decrypt(raw, 4330, lenIV)
	}
	subrs := make([][]byte, len(rawSubrs))
	for i, raw := range rawSubrs {
		if raw != nil {
			subrs[i] = decrypt(raw, 4330, lenIV)
		}
	}

	return &Font{
		glyphOrder:  order,
		charstrings: charstrings,
		ctx:         charstringContext{subrs: subrs},
		encoding:    scanEncoding(cleartext),
	}, nil
}

// Face is the driver.Face implementation backing an opened Type 1 stream.
type Face struct {
	font   *Font
	stream sfio.Stream
}

func (f *Face) NumGlyphs() int  { return len(f.font.glyphOrder) }
func (f *Face) UnitsPerEm() int { return defaultUnitsPerEm }
func (f *Face) Close() error    { return f.stream.Close() }

// GlyphName returns gid's PostScript glyph name, satisfying the same
// driver.Flags().GlyphNames contract driver/truetype's post-table names
// do.
func (f *Face) GlyphName(gid loader.Index) (string, bool) {
	i := int(gid)
	if i < 0 || i >= len(f.font.glyphOrder) {
		return "", false
	}
	return f.font.glyphOrder[i], true
}

func scale(v, unitsPerEm, ppem int) fixedmath.F26Dot6 {
	if unitsPerEm == 0 {
		return 0
	}
	return fixedmath.F26Dot6(int64(v) * int64(ppem) * 64 / int64(unitsPerEm))
}

// LoadGlyph interprets gid's Type 1 charstring into pixel space at ppem,
// the same shape as driver/cff.Face.LoadGlyph's design-units-then-scale
// pipeline.
func (f *Face) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	i := int(gid)
	if i < 0 || i >= len(f.font.glyphOrder) {
		return driver.GlyphResult{}, errcode.New("type1.LoadGlyph", errcode.InvalidGlyphIndex)
	}
	code, ok := f.font.charstrings[f.font.glyphOrder[i]]
	if !ok {
		return driver.GlyphResult{}, errcode.New("type1.LoadGlyph", errcode.InvalidGlyphIndex)
	}

	l := loader.New()
	l.Prepare()
	width, err := decodeCharString(&f.font.ctx, l, code)
	if err != nil {
		return driver.GlyphResult{}, err
	}
	l.Add()

	upe := defaultUnitsPerEm
	for j := range l.Base.Outline.Points {
		p := l.Base.Outline.Points[j]
		l.Base.Outline.Points[j].X = scale(int(p.X), upe, ppemX)
		l.Base.Outline.Points[j].Y = scale(int(p.Y), upe, ppemY)
	}

	src := l.Base.Outline
	out := *outline.New(len(src.Points), len(src.Contours))
	if err := outline.Copy(&out, &src); err != nil {
		return driver.GlyphResult{}, err
	}

	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: out,
		Metrics: loader.Metrics{Advance: scale(int(width), upe, ppemX)},
	}, nil
}
