package truetype

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

// cmapSegment is one entry of a format-4 cmap subtable's parallel
// start/end/delta/offset arrays, named directly after the teacher's
// unexported cm struct.
type cmapSegment struct {
	end, start, delta, rangeOffset uint16
	rangeBase                      int // offset into f.cmap where this segment's idRangeOffset values begin
}

const (
	cmapFormat4         = 4
	languageIndependent = 0
	unicodeEncoding     = 0x00000003
	microsoftEncoding   = 0x00030001
)

// parseCmap decodes a format-4 Unicode or Microsoft cmap subtable,
// generalizing the teacher's Font.parseCmap (which stores segments and
// leaves index lookup to a separate Index method) by keeping the raw
// subtable bytes around so charIndex can follow idRangeOffset glyph-array
// indirection as well as the common delta-only case.
func (f *Font) parseCmap() error {
	if len(f.cmap) < 4 {
		return nil // cmap is optional for this driver's probe/parse purposes
	}
	c := sfio.Cursor(f.cmap[2:])
	nsubtab := int(c.U16())
	if len(f.cmap) < 8*nsubtab+4 {
		return errcode.New("truetype.parseCmap", errcode.InvalidTable)
	}
	offset, found := 0, false
	for i := 0; i < nsubtab; i++ {
		pidPsid, o := c.U32(), c.U32()
		if pidPsid == unicodeEncoding {
			offset, found = int(o), true
			break
		} else if pidPsid == microsoftEncoding {
			offset, found = int(o), true
		}
	}
	if !found || offset <= 0 || offset > len(f.cmap) {
		return nil
	}

	sub := sfio.Cursor(f.cmap[offset:])
	if sub.U16() != cmapFormat4 {
		return nil // other cmap formats are not required by any spec operation
	}
	sub.Skip(2) // length
	if sub.U16() != languageIndependent {
		return nil
	}
	segCount := int(sub.U16()) / 2
	sub.Skip(6)

	segs := make([]cmapSegment, segCount)
	for i := range segs {
		segs[i].end = sub.U16()
	}
	sub.Skip(2)
	for i := range segs {
		segs[i].start = sub.U16()
	}
	for i := range segs {
		segs[i].delta = sub.U16()
	}
	rangeOffsetBase := offset + (len(f.cmap[offset:]) - len(sub))
	for i := range segs {
		segs[i].rangeBase = rangeOffsetBase + 2*i
		segs[i].rangeOffset = sub.U16()
	}
	f.cmapSegments = segs
	return nil
}

// charIndex maps r to a glyph index, per the format-4 algorithm: find the
// segment containing r, then either add delta (common case) or follow
// idRangeOffset into the glyph ID array (rare, used for sparse
// encodings).
func (f *Font) charIndex(r rune) loader.Index {
	if r < 0 || r > 0xFFFF {
		return 0
	}
	c := uint16(r)
	for i := range f.cmapSegments {
		s := &f.cmapSegments[i]
		if c < s.start || c > s.end {
			continue
		}
		if s.rangeOffset == 0 {
			return loader.Index(c + s.delta)
		}
		glyphIndexOffset := s.rangeBase + int(s.rangeOffset) + 2*int(c-s.start)
		if glyphIndexOffset+2 > len(f.cmap) {
			return 0
		}
		gid := sfio.Cursor(f.cmap[glyphIndexOffset:]).U16()
		if gid == 0 {
			return 0
		}
		return loader.Index(gid + s.delta)
	}
	return 0
}
