package cid

import (
	"strconv"
	"testing"

	"github.com/inkwell-labs/corefont/sfio"
)

// t1Encrypt, opInt, and pfbSegment mirror driver/type1's own test helpers
// of the same name (small, self-contained fixture builders, not worth
// exporting across a package boundary just for tests).
func t1Encrypt(plain []byte, r uint16, prefix []byte) []byte {
	const c1, c2 = 52845, 22719
	full := append(append([]byte{}, prefix...), plain...)
	out := make([]byte, len(full))
	for i, p := range full {
		c := p ^ byte(r>>8)
		r = (uint16(c)+r)*c1 + c2
		out[i] = c
	}
	return out
}

func opInt(v int32) []byte {
	return []byte{255, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func pfbSegment(segType byte, payload []byte) []byte {
	n := len(payload)
	seg := []byte{0x80, segType, byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
	return append(seg, payload...)
}

const (
	pfbSegASCII  = 1
	pfbSegBinary = 2
	pfbSegEOF    = 3
)

// buildTestCIDFont assembles a 2-FD, 3-CID CIDFontType0 resource where
// CID 1 and CID 2 both call local subroutine 0, but resolve it through
// different FDArray groups (CID 1 -> FD 0, CID 2 -> FD 1) with different
// subroutine bodies — the fixture only passes if FD dispatch, not just
// charstring decode, is wired correctly.
func buildTestCIDFont(t *testing.T) []byte {
	t.Helper()
	prefix := []byte{0, 0, 0, 0}

	fd0Subr0 := t1Encrypt(append(append(opInt(100), opInt(0)...), 5, 11), 4330, prefix)
	fd1Subr0 := t1Encrypt(append(append(opInt(200), opInt(0)...), 5, 11), 4330, prefix)

	cid0 := t1Encrypt([]byte{14}, 4330, prefix) // endchar only

	var cid1Plain []byte
	cid1Plain = append(cid1Plain, opInt(50)...)
	cid1Plain = append(cid1Plain, opInt(500)...)
	cid1Plain = append(cid1Plain, 13) // hsbw 50 500
	cid1Plain = append(cid1Plain, opInt(0)...)
	cid1Plain = append(cid1Plain, opInt(0)...)
	cid1Plain = append(cid1Plain, 21) // rmoveto -> (50,0)
	cid1Plain = append(cid1Plain, opInt(0)...)
	cid1Plain = append(cid1Plain, 10) // callsubr 0
	cid1Plain = append(cid1Plain, 9, 14) // closepath endchar
	cid1 := t1Encrypt(cid1Plain, 4330, prefix)

	var cid2Plain []byte
	cid2Plain = append(cid2Plain, opInt(50)...)
	cid2Plain = append(cid2Plain, opInt(700)...)
	cid2Plain = append(cid2Plain, 13) // hsbw 50 700
	cid2Plain = append(cid2Plain, opInt(0)...)
	cid2Plain = append(cid2Plain, opInt(0)...)
	cid2Plain = append(cid2Plain, 21) // rmoveto -> (50,0)
	cid2Plain = append(cid2Plain, opInt(0)...)
	cid2Plain = append(cid2Plain, 10) // callsubr 0
	cid2Plain = append(cid2Plain, 9, 14) // closepath endchar
	cid2 := t1Encrypt(cid2Plain, 4330, prefix)

	fdDict := func(idx int, subr []byte) string {
		return "dup " + strconv.Itoa(idx) + " /FontDict 5 dict dup begin\n" +
			"/Private 4 dict dup begin\n" +
			"/lenIV 4 def\n" +
			"/Subrs 1 array\n" +
			"dup 0 " + strconv.Itoa(len(subr)) + " RD " + string(subr) + " NP\n" +
			"end\n" +
			"end put\n"
	}

	var priv []byte
	priv = append(priv, "/FDArray 2 array\n"...)
	priv = append(priv, fdDict(0, fd0Subr0)...)
	priv = append(priv, fdDict(1, fd1Subr0)...)
	priv = append(priv, "/CIDMap 3 array\n"...)
	priv = append(priv, "dup 0 0 put\n"...)
	priv = append(priv, "dup 1 0 put\n"...)
	priv = append(priv, "dup 2 1 put\n"...)
	priv = append(priv, "/CharStrings 3 dict dup begin\n"...)
	priv = append(priv, "/0 "+strconv.Itoa(len(cid0))+" RD "...)
	priv = append(priv, cid0...)
	priv = append(priv, " ND\n"...)
	priv = append(priv, "/1 "+strconv.Itoa(len(cid1))+" RD "...)
	priv = append(priv, cid1...)
	priv = append(priv, " ND\n"...)
	priv = append(priv, "/2 "+strconv.Itoa(len(cid2))+" RD "...)
	priv = append(priv, cid2...)
	priv = append(priv, " ND\n"...)
	priv = append(priv, "end\n"...)

	encryptedPrivate := t1Encrypt(priv, 55665, prefix)
	cleartext := "%!PS-Adobe-3.0 Resource-CIDFont\n/CIDFontName /TestCID def\n/CIDFontType 0 def\n"

	var buf []byte
	buf = append(buf, pfbSegment(pfbSegASCII, []byte(cleartext))...)
	buf = append(buf, pfbSegment(pfbSegBinary, encryptedPrivate)...)
	buf = append(buf, 0x80, pfbSegEOF)
	return buf
}

func TestParseAndLoadGlyphCID(t *testing.T) {
	data := buildTestCIDFont(t)
	s := sfio.NewMemoryStream(data)

	d := New()
	if !d.Probe(s) {
		t.Fatal("Probe should recognize a CIDFontType0 resource")
	}
	if err := s.Seek(0); err != nil {
		t.Fatalf("seek: %v", err)
	}

	face, err := d.Open(s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer face.Close()

	if face.NumGlyphs() != 3 {
		t.Fatalf("NumGlyphs = %d, want 3", face.NumGlyphs())
	}

	g1, err := face.LoadGlyph(1, 1000, 1000)
	if err != nil {
		t.Fatalf("LoadGlyph(1): %v", err)
	}
	if g1.Outline.NumPoints() != 2 {
		t.Fatalf("CID 1 should have 2 points, got %d", g1.Outline.NumPoints())
	}
	// Points are 26.6 pixels; at ppem == unitsPerEm, design x 150 is 150<<6.
	if p := g1.Outline.Points[1]; int32(p.X) != 150<<6 || int32(p.Y) != 0 {
		t.Errorf("CID 1's FD0 subr should move to (150,0), got (%d,%d)", p.X, p.Y)
	}

	g2, err := face.LoadGlyph(2, 1000, 1000)
	if err != nil {
		t.Fatalf("LoadGlyph(2): %v", err)
	}
	if p := g2.Outline.Points[1]; int32(p.X) != 250<<6 || int32(p.Y) != 0 {
		t.Errorf("CID 2's FD1 subr should move to (250,0), got (%d,%d)", p.X, p.Y)
	}
}

func TestProbeRejectsPlainType1(t *testing.T) {
	s := sfio.NewMemoryStream([]byte("%!PS-AdobeFont-1.0: Test\n"))
	d := New()
	if d.Probe(s) {
		t.Error("Probe should reject a plain Type 1 font with no CIDFontType marker")
	}
}
