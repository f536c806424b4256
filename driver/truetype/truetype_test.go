package truetype

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

// buildSfnt assembles a minimal sfnt binary from a table tag -> bytes map,
// computing the directory's offsets itself so individual test cases never
// have to hand-compute byte positions. tags is the order tables are
// written in (arbitrary, but kept deterministic for readability).
func buildSfnt(tags []string, tables map[string][]byte) []byte {
	var body bytes.Buffer
	type dirEntry struct {
		tag            string
		offset, length uint32
	}
	var dir []dirEntry
	for _, tag := range tags {
		t := tables[tag]
		dir = append(dir, dirEntry{tag, uint32(12 + 16*len(tags) + body.Len()), uint32(len(t))})
		body.Write(t)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0x00010000))
	binary.Write(&out, binary.BigEndian, uint16(len(tags)))
	binary.Write(&out, binary.BigEndian, uint16(0)) // searchRange
	binary.Write(&out, binary.BigEndian, uint16(0)) // entrySelector
	binary.Write(&out, binary.BigEndian, uint16(0)) // rangeShift
	for _, e := range dir {
		out.WriteString(e.tag)
		binary.Write(&out, binary.BigEndian, uint32(0)) // checksum, unused by this driver
		binary.Write(&out, binary.BigEndian, e.offset)
		binary.Write(&out, binary.BigEndian, e.length)
	}
	out.Write(body.Bytes())
	return out.Bytes()
}

func u16be(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func i16be(v int16) []byte  { return u16be(uint16(v)) }
func u32be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// buildTestFont constructs a two-glyph font (an empty .notdef and a
// triangle at gid 1, mapped from 'A') entirely from synthesized table
// bytes, so package tests don't depend on an external .ttf fixture.
func buildTestFont(t *testing.T) []byte {
	t.Helper()

	head := append([]byte{}, u32be(0x00010000)...) // version
	head = append(head, u32be(0)...)                // fontRevision
	head = append(head, u32be(0)...)                // checkSumAdjustment
	head = append(head, u32be(0x5F0F3CF5)...)       // magicNumber
	head = append(head, u16be(0)...)                // flags
	head = append(head, u16be(1000)...)             // unitsPerEm
	head = append(head, make([]byte, 16)...)        // created, modified
	head = append(head, i16be(100)...)               // xMin
	head = append(head, i16be(100)...)               // yMin
	head = append(head, i16be(900)...)               // xMax
	head = append(head, i16be(900)...)               // yMax
	head = append(head, u16be(0)...)                // macStyle
	head = append(head, u16be(0)...)                // lowestRecPPEM
	head = append(head, i16be(0)...)                 // fontDirectionHint
	head = append(head, u16be(0)...)                // indexToLocFormat (short)
	head = append(head, u16be(0)...)                // glyphDataFormat
	if len(head) != 54 {
		t.Fatalf("head table is %d bytes, want 54", len(head))
	}

	hhea := append([]byte{}, u32be(0x00010000)...) // version
	hhea = append(hhea, i16be(900)...)               // ascent
	hhea = append(hhea, i16be(-100)...)              // descent
	hhea = append(hhea, i16be(0)...)                 // lineGap
	hhea = append(hhea, u16be(900)...)              // advanceWidthMax
	hhea = append(hhea, i16be(0)...)                 // minLeftSideBearing
	hhea = append(hhea, i16be(0)...)                 // minRightSideBearing
	hhea = append(hhea, i16be(900)...)               // xMaxExtent
	hhea = append(hhea, i16be(1)...)                 // caretSlopeRise
	hhea = append(hhea, i16be(0)...)                 // caretSlopeRun
	hhea = append(hhea, i16be(0)...)                 // caretOffset
	hhea = append(hhea, make([]byte, 8)...)          // reserved x4
	hhea = append(hhea, i16be(0)...)                 // metricDataFormat
	hhea = append(hhea, u16be(2)...)                // numberOfHMetrics
	if len(hhea) != 36 {
		t.Fatalf("hhea table is %d bytes, want 36", len(hhea))
	}

	maxp := append([]byte{}, u32be(0x00010000)...)
	maxp = append(maxp, u16be(2)...) // numGlyphs

	// hmtx: two explicit long entries, advance + lsb.
	var hmtx []byte
	hmtx = append(hmtx, u16be(0)...)
	hmtx = append(hmtx, i16be(0)...)
	hmtx = append(hmtx, u16be(1000)...)
	hmtx = append(hmtx, i16be(100)...)

	// glyf: an empty .notdef, then a 3-point on-curve triangle at gid 1,
	// every delta stored as a full int16 (flags = onCurve bit only) so
	// the coordinate-decoding "is short vector" branches aren't exercised
	// by this particular fixture.
	var glyph1 []byte
	glyph1 = append(glyph1, i16be(1)...)   // numberOfContours
	glyph1 = append(glyph1, i16be(100)...) // xMin
	glyph1 = append(glyph1, i16be(100)...) // yMin
	glyph1 = append(glyph1, i16be(900)...) // xMax
	glyph1 = append(glyph1, i16be(900)...) // yMax
	glyph1 = append(glyph1, u16be(2)...)   // endPtsOfContours[0]
	glyph1 = append(glyph1, u16be(0)...)   // instructionLength
	glyph1 = append(glyph1, 0x01, 0x01, 0x01)
	glyph1 = append(glyph1, i16be(100)...) // dx0
	glyph1 = append(glyph1, i16be(800)...) // dx1
	glyph1 = append(glyph1, i16be(-800)...)
	glyph1 = append(glyph1, i16be(100)...) // dy0
	glyph1 = append(glyph1, i16be(0)...)
	glyph1 = append(glyph1, i16be(800)...)
	if len(glyph1)%2 != 0 {
		glyph1 = append(glyph1, 0) // pad to an even boundary for short loca
	}

	glyf := glyph1 // gid 0 is zero-length (empty .notdef)

	loca := append([]byte{}, u16be(0)...)
	loca = append(loca, u16be(0)...)
	loca = append(loca, u16be(uint16(len(glyph1)/2))...)

	// cmap: format 4, Windows Unicode BMP, mapping 'A' (0x41) to gid 1 via
	// idDelta, plus the mandatory terminating 0xFFFF segment.
	segEnd := append([]byte{}, u16be(0x0041)...)
	segEnd = append(segEnd, u16be(0xFFFF)...)
	segStart := append([]byte{}, u16be(0x0041)...)
	segStart = append(segStart, u16be(0xFFFF)...)
	segDelta := append([]byte{}, u16be(uint16(1-0x0041))...)
	segDelta = append(segDelta, u16be(1)...)
	segRangeOffset := append([]byte{}, u16be(0)...)
	segRangeOffset = append(segRangeOffset, u16be(0)...)

	var sub4 []byte
	sub4 = append(sub4, u16be(4)...) // format
	lengthPos := len(sub4)
	sub4 = append(sub4, u16be(0)...) // length, patched below
	sub4 = append(sub4, u16be(0)...) // language
	sub4 = append(sub4, u16be(4)...) // segCountX2 (segCount=2)
	sub4 = append(sub4, u16be(0)...) // searchRange
	sub4 = append(sub4, u16be(0)...) // entrySelector
	sub4 = append(sub4, u16be(0)...) // rangeShift
	sub4 = append(sub4, segEnd...)
	sub4 = append(sub4, u16be(0)...) // reservedPad
	sub4 = append(sub4, segStart...)
	sub4 = append(sub4, segDelta...)
	sub4 = append(sub4, segRangeOffset...)
	copy(sub4[lengthPos:], u16be(uint16(len(sub4))))

	cmap := append([]byte{}, u16be(0)...) // version
	cmap = append(cmap, u16be(1)...)     // numTables
	cmap = append(cmap, u16be(3)...)     // platformID (Windows)
	cmap = append(cmap, u16be(1)...)     // encodingID (Unicode BMP)
	cmap = append(cmap, u32be(12)...)    // offset (right after this one record)
	cmap = append(cmap, sub4...)

	// post format 2.0: gid 0 keeps the standard ".notdef" name (index 0
	// into the Macintosh order), gid 1 gets a custom Pascal-string name
	// ("A") via an index >= 258.
	post := append([]byte{}, u32be(postFormat2)...)
	post = append(post, make([]byte, 28)...) // italicAngle..maxMemType1, unused by this driver
	post = append(post, u16be(2)...)         // numberOfGlyphs
	post = append(post, u16be(0)...)         // index[0] -> ".notdef"
	post = append(post, u16be(258)...)       // index[1] -> pascalNames[0]
	post = append(post, byte(1), 'A')        // Pascal string pool: "A"
	if len(post) != 32+2+4+2 {
		t.Fatalf("post table is %d bytes, want %d", len(post), 32+2+4+2)
	}

	nameTable := buildNameTable(map[uint16]string{
		nameIDFamily: "Test Sans",
		nameIDStyle:  "Regular",
	})

	// kern: old-format header, one horizontal subtable, one pair (gid0,
	// gid1) -> -50 FUnits.
	var kern []byte
	kern = append(kern, u16be(0)...) // version
	kern = append(kern, u16be(1)...) // nTables
	kern = append(kern, u16be(0)...) // subtable version
	kern = append(kern, u16be(14+6)...) // subtable length (header + 1 pair)
	kern = append(kern, u16be(0x0001)...) // coverage: horizontal
	kern = append(kern, u16be(1)...)      // nPairs
	kern = append(kern, make([]byte, 6)...) // searchRange, entrySelector, rangeShift
	kern = append(kern, u16be(0)...)        // left gid
	kern = append(kern, u16be(1)...)        // right gid
	kern = append(kern, i16be(-50)...)      // value

	tags := []string{"cmap", "glyf", "head", "hhea", "hmtx", "kern", "loca", "maxp", "name", "post"}
	tables := map[string][]byte{
		"cmap": cmap, "glyf": glyf, "head": head, "hhea": hhea,
		"hmtx": hmtx, "kern": kern, "loca": loca, "maxp": maxp, "name": nameTable, "post": post,
	}
	return buildSfnt(tags, tables)
}

// buildNameTable assembles a minimal format-0 name table with one Windows
// Unicode BMP record per entry in ids.
func buildNameTable(ids map[uint16]string) []byte {
	var storage bytes.Buffer
	type rec struct {
		nameID uint16
		offset uint16
		length uint16
	}
	var recs []rec
	for id, s := range ids {
		utf16be := make([]byte, 0, 2*len(s))
		for _, r := range s {
			utf16be = append(utf16be, byte(r>>8), byte(r))
		}
		recs = append(recs, rec{id, uint16(storage.Len()), uint16(len(utf16be))})
		storage.Write(utf16be)
	}

	var out bytes.Buffer
	out.Write(u16be(0))              // format
	out.Write(u16be(uint16(len(recs)))) // count
	out.Write(u16be(uint16(6 + 12*len(recs)))) // stringOffset
	for _, r := range recs {
		out.Write(u16be(platformWindows))
		out.Write(u16be(1)) // encodingID (BMP)
		out.Write(u16be(0x0409)) // languageID (en-US)
		out.Write(u16be(r.nameID))
		out.Write(u16be(r.length))
		out.Write(u16be(r.offset))
	}
	out.Write(storage.Bytes())
	return out.Bytes()
}

func TestParseAndLoadGlyph(t *testing.T) {
	buf := buildTestFont(t)
	font, err := parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if font.unitsPerEm != 1000 {
		t.Errorf("unitsPerEm = %d, want 1000", font.unitsPerEm)
	}
	if font.nGlyph != 2 {
		t.Errorf("nGlyph = %d, want 2", font.nGlyph)
	}

	gid := font.charIndex('A')
	if gid != 1 {
		t.Fatalf("charIndex('A') = %d, want 1", gid)
	}
	if got := font.charIndex('Z'); got != 0 {
		t.Errorf("charIndex('Z') = %d, want 0 (.notdef)", got)
	}

	face := &Face{font: font}
	result, err := face.LoadGlyph(gid, 1000, 1000) // ppem == unitsPerEm: 1:1 scale
	if err != nil {
		t.Fatalf("LoadGlyph: %v", err)
	}
	if len(result.Outline.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(result.Outline.Points))
	}
	wantX := []int{100, 900, 100}
	for i, p := range result.Outline.Points {
		if int(p.X)>>6 != wantX[i] {
			t.Errorf("point %d X = %v, want %d", i, p.X, wantX[i])
		}
	}
	if result.Metrics.Advance>>6 != 1000 {
		t.Errorf("advance = %v, want 1000", result.Metrics.Advance)
	}

	if name, ok := face.GlyphName(gid); !ok || name != "A" {
		t.Errorf("GlyphName(gid) = %q, %v, want \"A\", true", name, ok)
	}
}

func TestProbeRecognizesSfntMagic(t *testing.T) {
	buf := buildTestFont(t)
	d := New()
	if !d.Probe(sfio.NewMemoryStream(buf)) {
		t.Error("Probe should recognize a 0x00010000 sfnt version tag")
	}
	if d.Probe(sfio.NewMemoryStream([]byte("OTTO????"))) {
		t.Error("Probe should not claim CFF-flavored OpenType")
	}
}

func TestRecognizeCompressed(t *testing.T) {
	if !RecognizeCompressed([4]byte{'w', 'O', 'F', 'F'}) {
		t.Error("expected WOFF to be recognized as compressed")
	}
	if RecognizeCompressed([4]byte{0, 1, 0, 0}) {
		t.Error("a plain sfnt tag should not be reported as compressed")
	}
}

func TestFamilyAndStyleName(t *testing.T) {
	buf := buildTestFont(t)
	font, err := parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, ok := font.FamilyName(); !ok || got != "Test Sans" {
		t.Errorf("FamilyName() = %q, %v, want \"Test Sans\", true", got, ok)
	}
	if got, ok := font.StyleName(); !ok || got != "Regular" {
		t.Errorf("StyleName() = %q, %v, want \"Regular\", true", got, ok)
	}
}

func TestKerning(t *testing.T) {
	buf := buildTestFont(t)
	font, err := parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	face := &Face{font: font}
	got, err := face.Kerning(0, 1, 1000)
	if err != nil {
		t.Fatalf("Kerning: %v", err)
	}
	if want := int32(-50); got != want {
		t.Errorf("Kerning(0, 1) = %d, want %d", got, want)
	}
	if got, _ := face.Kerning(1, 0, 1000); got != 0 {
		t.Errorf("Kerning(1, 0) = %d, want 0 (no pair in that order)", got)
	}
}

func TestLocaRangeOutOfBounds(t *testing.T) {
	buf := buildTestFont(t)
	font, err := parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, _, err := font.locaRange(loader.Index(99)); err == nil {
		t.Error("expected an error for an out-of-range glyph index")
	}
}
