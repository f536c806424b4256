// Package truetype implements the driver.Driver interface for TrueType
// (sfnt/glyf) and TrueType-flavored OpenType fonts, per SPEC_FULL.md
// section 4.G / section 6. It is grounded directly on the teacher's
// freetype/truetype package: the same table-directory walk, the same
// data-as-byte-cursor decoding style (here generalized into
// sfio.Cursor), and the same simple/composite glyf decomposition,
// extended to honor composite scale/2x2 transforms via package loader's
// AssembleComposite instead of rejecting them as UnsupportedError.
package truetype

import (
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

const (
	locaShort = iota
	locaLong
)

// Bounds mirrors the teacher's Bounds: a glyph or face's coordinate
// extent in FUnits, endpoints inclusive.
type Bounds struct {
	XMin, YMin, XMax, YMax int16
}

// Font holds every table this driver understands, sliced from the
// backing stream's bytes exactly as freetype/truetype/truetype.go's Font
// struct does, generalized to also retain post-table glyph names and a
// decoded cmap.
type Font struct {
	cmap, glyf, head, hhea, hmtx, kern, loca, maxp, post, name []byte

	locaOffsetFormat int
	nGlyph, nHMetric int
	nKernPairs       int
	unitsPerEm       int
	bounds           Bounds

	cmapSegments []cmapSegment
	glyphNames   map[loader.Index]string
}

// Driver is the registerable driver.Driver for TrueType fonts.
type Driver struct{}

// New returns a TrueType Driver.
func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "truetype" }
func (*Driver) Flags() driver.Flags {
	return driver.Scalable | driver.GlyphNames
}
func (*Driver) Services() map[string]any {
	return map[string]any{"postscript-name": postscriptNameService}
}

func postscriptNameService(f *Font, gid loader.Index) (string, bool) {
	name, ok := f.glyphNames[gid]
	return name, ok
}

// sfnt version tags this driver recognizes. "OTTO" (CFF-flavored OpenType)
// is deliberately excluded: that combination is routed to driver/cff.
var sfntMagics = [][4]byte{
	{0x00, 0x01, 0x00, 0x00},
	{'t', 'r', 'u', 'e'},
	{'t', 't', 'c', 'f'},
}

// WOFF/WOFF2 are recognized by magic only; SPEC_FULL.md section 6 scopes
// this driver to byte-format recognition, leaving decompression to a
// caller-supplied Stream wrapper (e.g. one that inflates WOFF's zlib
// table data before handing bytes to this driver).
var woffMagic = [4]byte{'w', 'O', 'F', 'F'}
var woff2Magic = [4]byte{'w', 'O', 'F', '2'}

func (*Driver) Probe(s sfio.Stream) bool {
	var tag [4]byte
	n, _ := s.Read(tag[:])
	if n != 4 {
		return false
	}
	if tag == woffMagic || tag == woff2Magic {
		return false // recognized, but not a format this driver opens directly
	}
	for _, m := range sfntMagics {
		if tag == m {
			return true
		}
	}
	return false
}

// RecognizeCompressed reports whether tag (the stream's first 4 bytes)
// names a WOFF or WOFF2 container, for callers deciding whether to wrap
// the stream in a decompressor before Probe/Open.
func RecognizeCompressed(tag [4]byte) bool {
	return tag == woffMagic || tag == woff2Magic
}

func (d *Driver) Open(s sfio.Stream) (driver.Face, error) {
	size := s.Size()
	buf := make([]byte, size)
	if _, err := s.Read(buf); err != nil {
		return nil, errcode.New("truetype.Open", errcode.InvalidStreamRead)
	}
	f, err := parse(buf)
	if err != nil {
		return nil, err
	}
	return &Face{font: f, stream: s}, nil
}

func parse(ttf []byte) (*Font, error) {
	if len(ttf) < 12 {
		return nil, errcode.New("truetype.parse", errcode.InvalidFileFormat)
	}
	c := sfio.Cursor(ttf[4:])
	numTables := int(c.U16())
	c.Skip(6)
	if len(ttf) < 12+16*numTables {
		return nil, errcode.New("truetype.parse", errcode.InvalidFileFormat)
	}

	f := &Font{}
	x := 12
	for i := 0; i < numTables; i, x = i+1, x+16 {
		tag := string(ttf[x : x+4])
		entry := sfio.Cursor(ttf[x+8 : x+16])
		table, err := readTable(ttf, entry)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "cmap":
			f.cmap = table
		case "glyf":
			f.glyf = table
		case "head":
			f.head = table
		case "hhea":
			f.hhea = table
		case "hmtx":
			f.hmtx = table
		case "kern":
			f.kern = table
		case "loca":
			f.loca = table
		case "maxp":
			f.maxp = table
		case "post":
			f.post = table
		case "name":
			f.name = table
		}
	}

	if len(f.maxp) < 6 {
		return nil, errcode.New("truetype.parse", errcode.InvalidTable)
	}
	f.nGlyph = int(sfio.Cursor(f.maxp[4:]).U16())

	if err := f.parseHead(); err != nil {
		return nil, err
	}
	if err := f.parseHhea(); err != nil {
		return nil, err
	}
	if err := f.parseCmap(); err != nil {
		return nil, err
	}
	if err := f.parseKern(); err != nil {
		return nil, err
	}
	f.parsePost() // glyph names are optional; a parse failure just leaves names empty

	return f, nil
}

func readTable(ttf []byte, entry sfio.Cursor) ([]byte, error) {
	offset := int(entry.U32())
	length := int(entry.U32())
	end := offset + length
	if offset < 0 || length < 0 || end > len(ttf) {
		return nil, errcode.New("truetype.readTable", errcode.InvalidTable)
	}
	return ttf[offset:end], nil
}

func (f *Font) parseHead() error {
	if len(f.head) != 54 {
		return errcode.New("truetype.parseHead", errcode.InvalidTable)
	}
	c := sfio.Cursor(f.head[18:])
	f.unitsPerEm = int(c.U16())
	c.Skip(16)
	f.bounds.XMin = c.I16()
	f.bounds.YMin = c.I16()
	f.bounds.XMax = c.I16()
	f.bounds.YMax = c.I16()
	c.Skip(6)
	switch c.U16() {
	case 0:
		f.locaOffsetFormat = locaShort
	case 1:
		f.locaOffsetFormat = locaLong
	default:
		return errcode.New("truetype.parseHead", errcode.InvalidTable)
	}
	return nil
}

func (f *Font) parseHhea() error {
	if len(f.hhea) != 36 {
		return errcode.New("truetype.parseHhea", errcode.InvalidTable)
	}
	c := sfio.Cursor(f.hhea[34:])
	f.nHMetric = int(c.U16())
	if 4*f.nHMetric+2*(f.nGlyph-f.nHMetric) != len(f.hmtx) {
		return errcode.New("truetype.parseHhea", errcode.InvalidTable)
	}
	return nil
}

// hMetric returns the advance width and left-side bearing of gid, in
// FUnits, applying the "last entry repeats" rule for monospaced-tail
// fonts (hmtx may carry fewer entries than glyphs).
func (f *Font) hMetric(gid loader.Index) (advance uint16, lsb int16) {
	g := int(gid)
	if f.nHMetric == 0 {
		return 0, 0
	}
	if g >= f.nHMetric {
		c := sfio.Cursor(f.hmtx[4*(f.nHMetric-1):])
		advance = c.U16()
		lsb = int16(sfio.Cursor(f.hmtx[4*f.nHMetric+2*(g-f.nHMetric):]).U16())
		return advance, lsb
	}
	c := sfio.Cursor(f.hmtx[4*g:])
	advance = c.U16()
	lsb = c.I16()
	return advance, lsb
}

// scale converts an F26Dot6 FUnit-space value to pixel space at ppem.
func scale(v int32, unitsPerEm, ppem int) fixedmath.F26Dot6 {
	if unitsPerEm == 0 {
		return 0
	}
	return fixedmath.F26Dot6(int64(v) * int64(ppem) * 64 / int64(unitsPerEm))
}
