package cff

import (
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

// scale converts a design-unit value to F26Dot6 pixel space at ppem,
// identical to driver/truetype's unexported scale helper (each driver
// keeps its own copy rather than sharing an internal package, matching
// how the teacher keeps truetype's and raster's fixed-point helpers
// separate).
func scale(v int32, unitsPerEm, ppem int) fixedmath.F26Dot6 {
	if unitsPerEm == 0 {
		return 0
	}
	return fixedmath.F26Dot6(int64(v) * int64(ppem) * 64 / int64(unitsPerEm))
}

const defaultUnitsPerEm = 1000

// Font holds a fully decoded CFF program: its CharStrings, the
// subroutine indexes a charstring's callsubr/callgsubr can reach, and the
// default/nominal width pair from its Private DICT, per
// seehuhn-go-pdf/font/cff's Font (fields Name, TopDict, Encoding,
// charset, Glyphs here narrowed to exactly what LoadGlyph needs).
type Font struct {
	charStrings index
	gsubrs      index
	ctx         charstringContext
	unitsPerEm  int

	// fdArray/fdSelect are populated only for CID-keyed CFF programs
	// (Top DICT carries ROS): fdSelect maps a glyph index to the
	// fdArray entry holding that glyph's Private DICT (width defaults
	// and local Subrs), mirroring seehuhn-go-pdf/font/cff/cid.go's
	// per-glyph FD indirection. A non-CID font leaves both nil and
	// every glyph uses ctx instead.
	fdArray  []charstringContext
	fdSelect fdSelectFn
}

// contextFor returns the charstringContext gid's charstring should be
// interpreted with: the font-wide ctx for ordinary CFF, or the
// FDSelect-chosen entry of fdArray for CID-keyed CFF.
func (f *Font) contextFor(gid int) *charstringContext {
	if f.fdSelect != nil {
		i := f.fdSelect(gid)
		if i >= 0 && i < len(f.fdArray) {
			return &f.fdArray[i]
		}
	}
	return &f.ctx
}

// Driver is the registerable driver.Driver for bare CFF and
// CFF-flavored OpenType ("OTTO") fonts.
type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "cff" }
func (*Driver) Flags() driver.Flags {
	return driver.Scalable
}
func (*Driver) Services() map[string]any { return nil }

// Probe recognizes a bare CFF header (major=1, minor=0) or an OTTO-tagged
// sfnt wrapper, mirroring driver/truetype.Probe's sfnt magic check but
// for the one tag that driver belongs to driver/cff instead.
func (*Driver) Probe(s sfio.Stream) bool {
	var hdr [4]byte
	n, _ := s.Read(hdr[:])
	if n != 4 {
		return false
	}
	if hdr[0] == 'O' && hdr[1] == 'T' && hdr[2] == 'T' && hdr[3] == 'O' {
		return true
	}
	return hdr[0] == 1 && hdr[1] == 0
}

func (d *Driver) Open(s sfio.Stream) (driver.Face, error) {
	size := s.Size()
	buf := make([]byte, size)
	if _, err := s.Read(buf); err != nil {
		return nil, errcode.New("cff.Open", errcode.InvalidStreamRead)
	}
	cffData := buf
	if len(buf) >= 4 && buf[0] == 'O' && buf[1] == 'T' && buf[2] == 'T' && buf[3] == 'O' {
		table, err := extractCFFTable(buf)
		if err != nil {
			return nil, err
		}
		cffData = table
	}
	f, err := parse(cffData)
	if err != nil {
		return nil, err
	}
	return &Face{font: f, stream: s}, nil
}

// extractCFFTable walks an sfnt table directory (the same 16-byte-record
// layout driver/truetype.parse reads) looking for the "CFF " table,
// letting OTTO-wrapped CFF fonts share this package's parser instead of
// needing a second one.
func extractCFFTable(buf []byte) ([]byte, error) {
	if len(buf) < 12 {
		return nil, errcode.New("cff.extractCFFTable", errcode.InvalidFileFormat)
	}
	numTables := int(buf[4])<<8 | int(buf[5])
	if len(buf) < 12+16*numTables {
		return nil, errcode.New("cff.extractCFFTable", errcode.InvalidFileFormat)
	}
	x := 12
	for i := 0; i < numTables; i, x = i+1, x+16 {
		tag := string(buf[x : x+4])
		if tag != "CFF " {
			continue
		}
		offset := int(buf[x+8])<<24 | int(buf[x+9])<<16 | int(buf[x+10])<<8 | int(buf[x+11])
		length := int(buf[x+12])<<24 | int(buf[x+13])<<16 | int(buf[x+14])<<8 | int(buf[x+15])
		end := offset + length
		if offset < 0 || length < 0 || end > len(buf) {
			return nil, errcode.New("cff.extractCFFTable", errcode.InvalidTable)
		}
		return buf[offset:end], nil
	}
	return nil, errcode.New("cff.extractCFFTable", errcode.InvalidTable)
}

// parse decodes a bare CFF byte stream: header, Name INDEX, Top DICT
// INDEX, String INDEX, Global Subr INDEX, then (via the Top DICT's
// offsets) CharStrings and the Private DICT/local Subrs, the same walk
// order as seehuhn-go-pdf/font/cff.Read.
func parse(buf []byte) (*Font, error) {
	if len(buf) < 4 {
		return nil, errcode.New("cff.parse", errcode.InvalidFileFormat)
	}
	hdrSize := int(buf[2])
	if hdrSize < 4 || hdrSize > len(buf) {
		return nil, errcode.New("cff.parse", errcode.InvalidFileFormat)
	}
	rest := buf[hdrSize:]

	_, rest, err := readIndex(rest) // Name INDEX: unused, fonts are opened by path/stream, not PostScript name
	if err != nil {
		return nil, err
	}
	topDicts, rest, err := readIndex(rest)
	if err != nil {
		return nil, err
	}
	if len(topDicts) != 1 {
		return nil, errcode.New("cff.parse", errcode.InvalidCFFTable)
	}
	_, rest, err = readIndex(rest) // String INDEX: SIDs are only needed for names/encoding, out of this driver's scope
	if err != nil {
		return nil, err
	}
	gsubrs, _, err := readIndex(rest)
	if err != nil {
		return nil, err
	}

	top, err := decodeDict(topDicts[0])
	if err != nil {
		return nil, err
	}

	csOffset := top.getInt(opCharStrings, 0)
	if csOffset <= 0 || csOffset >= len(buf) {
		return nil, errcode.New("cff.parse", errcode.InvalidCFFTable)
	}
	charStrings, _, err := readIndex(buf[csOffset:])
	if err != nil {
		return nil, err
	}

	f := &Font{charStrings: charStrings, gsubrs: gsubrs, unitsPerEm: defaultUnitsPerEm}
	f.ctx.gsubrs = gsubrs

	if m := top.fontMatrixScale(); m > 0 {
		f.unitsPerEm = m
	}

	if size, offset, ok := top.getPair(opPrivate); ok {
		ctx, err := parsePrivate(buf, offset, size)
		if err != nil {
			return nil, err
		}
		ctx.gsubrs = gsubrs
		f.ctx = ctx
	}

	// ROS marks a CID-keyed font: glyphs are interpreted using the
	// FDArray/FDSelect font-dict-select indirection instead of (or in
	// addition to, for a font-wide default) the top-level Private DICT,
	// per seehuhn-go-pdf/font/cff's fdselect.go/cid.go.
	if _, ok := top[opROS]; ok {
		fdArrayOffset := top.getInt(opFDArray, 0)
		if fdArrayOffset <= 0 || fdArrayOffset >= len(buf) {
			return nil, errcode.New("cff.parse", errcode.InvalidCFFTable)
		}
		fdDicts, _, err := readIndex(buf[fdArrayOffset:])
		if err != nil {
			return nil, err
		}
		fdArray := make([]charstringContext, len(fdDicts))
		for i := range fdArray {
			fdArray[i].gsubrs = gsubrs
		}
		for i, blob := range fdDicts {
			fd, err := decodeDict(blob)
			if err != nil {
				return nil, err
			}
			if size, offset, ok := fd.getPair(opPrivate); ok {
				ctx, err := parsePrivate(buf, offset, size)
				if err != nil {
					return nil, err
				}
				ctx.gsubrs = gsubrs
				fdArray[i] = ctx
			}
		}
		f.fdArray = fdArray

		fdSelectOffset := top.getInt(opFDSelect, 0)
		if fdSelectOffset <= 0 || fdSelectOffset >= len(buf) {
			return nil, errcode.New("cff.parse", errcode.InvalidCFFTable)
		}
		fdSelect, err := readFDSelect(buf[fdSelectOffset:], len(charStrings), len(fdArray))
		if err != nil {
			return nil, err
		}
		f.fdSelect = fdSelect
	}

	return f, nil
}

// parsePrivate decodes a Private DICT (the top-level one, or one entry
// of an FDArray) into a charstringContext: its width defaults and, if
// present, its local Subrs INDEX (offset relative to the Private
// DICT's own start), per seehuhn-go-pdf/font/cff's Private-DICT
// handling shared between the top-level and per-FD cases.
func parsePrivate(buf []byte, offset, size int) (charstringContext, error) {
	var ctx charstringContext
	if offset < 0 || size < 0 || offset+size > len(buf) {
		return ctx, errcode.New("cff.parsePrivate", errcode.InvalidCFFTable)
	}
	priv, err := decodeDict(buf[offset : offset+size])
	if err != nil {
		return ctx, err
	}
	ctx.defaultWidthX = float64(priv.getInt(opDefaultWidthX, 0))
	ctx.nominalWidthX = float64(priv.getInt(opNominalWidthX, 0))
	if subrsOffset := priv.getInt(opSubrs, 0); subrsOffset > 0 {
		abs := offset + subrsOffset
		if abs < 0 || abs >= len(buf) {
			return ctx, errcode.New("cff.parsePrivate", errcode.InvalidCFFTable)
		}
		subrs, _, err := readIndex(buf[abs:])
		if err != nil {
			return ctx, err
		}
		ctx.subrs = subrs
	}
	return ctx, nil
}

// fontMatrixScale derives unitsPerEm from the Top DICT's FontMatrix
// operator (operand 0, the x-scale), per seehuhn-go-pdf/font/cff/cid.go's
// "unitsPerEm := round(1/FontMatrix[0])"; returns 0 (meaning "use the
// 1000 default") when FontMatrix is absent or degenerate.
func (d dict) fontMatrixScale() int {
	v, ok := d[0x0c07]
	if !ok || len(v) != 6 || v[0] == 0 {
		return 0
	}
	return int(1/v[0] + 0.5)
}

// Face is the driver.Face implementation backing an opened CFF stream.
type Face struct {
	font   *Font
	stream sfio.Stream
}

func (f *Face) NumGlyphs() int  { return len(f.font.charStrings) }
func (f *Face) UnitsPerEm() int { return f.font.unitsPerEm }
func (f *Face) Close() error    { return f.stream.Close() }

// LoadGlyph interprets gid's Type 2 charstring into pixel space at ppem,
// mirroring driver/truetype.Face.LoadGlyph's shape: build the outline in
// design units via package loader's accumulator, then scale every point.
func (f *Face) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	i := int(gid)
	if i < 0 || i >= len(f.font.charStrings) {
		return driver.GlyphResult{}, errcode.New("cff.LoadGlyph", errcode.InvalidGlyphIndex)
	}

	l := loader.New()
	l.Prepare()
	width, err := decodeCharString(f.font.contextFor(i), l, f.font.charStrings[i])
	if err != nil {
		return driver.GlyphResult{}, err
	}
	l.Add()

	upe := f.font.unitsPerEm
	for j := range l.Base.Outline.Points {
		p := l.Base.Outline.Points[j]
		l.Base.Outline.Points[j].X = scale(int32(p.X), upe, ppemX)
		l.Base.Outline.Points[j].Y = scale(int32(p.Y), upe, ppemY)
	}

	src := l.Base.Outline
	out := *outline.New(len(src.Points), len(src.Contours))
	if err := outline.Copy(&out, &src); err != nil {
		return driver.GlyphResult{}, err
	}

	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: out,
		Metrics: loader.Metrics{Advance: scale(int32(width), upe, ppemX)},
	}, nil
}
