package truetype

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

// nKernPairs counts the format-0 horizontal kerning pairs this driver parsed,
// kept on Font directly rather than re-deriving it from len(kern) on
// every lookup.
//
// Only the older, 16-bit-headered kern table format is parsed: per
// Apple's TrueType documentation, "fonts targeted for both the Mac OS
// and Windows should use the old format", and Windows never recognizes
// the newer 32-bit-headered one. The teacher's parseKern makes the same
// call and this driver follows it rather than adding a second code path
// for a format real-world fonts rarely carry.
func (f *Font) parseKern() error {
	if len(f.kern) == 0 {
		return nil
	}
	if len(f.kern) < 18 {
		return errcode.New("truetype.parseKern", errcode.InvalidTable)
	}
	c := sfio.Cursor(f.kern)
	if c.U16() != 0 {
		return nil // unsupported kern version; leave kerning disabled rather than failing Open
	}
	if c.U16() != 1 {
		return nil // multi-subtable kern is unsupported; same fallback
	}
	c.Skip(2) // subtable version
	length := int(c.U16())
	if c.U16() != 0x0001 {
		return nil // not horizontal kerning
	}
	f.nKernPairs = int(c.U16())
	if 6*f.nKernPairs != length-14 {
		return errcode.New("truetype.parseKern", errcode.InvalidTable)
	}
	return nil
}

// Kerning implements driver.KerningFace, returning the kerning adjustment
// (FUnits, scaled to pixels at ppemX) to apply between left and right when
// they appear adjacent, via binary search over the sorted kern pair table
// exactly as the teacher's Font.Kerning does.
func (f *Face) Kerning(left, right loader.Index, ppemX int) (int32, error) {
	n := f.font.nKernPairs
	if n == 0 {
		return 0, nil
	}
	g := uint32(left)<<16 | uint32(right)
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		c := sfio.Cursor(f.font.kern[18+6*mid:])
		ig := c.U32()
		switch {
		case ig < g:
			lo = mid + 1
		case ig > g:
			hi = mid
		default:
			return int32(scale(int32(int16(c.U16())), f.font.unitsPerEm, ppemX)) >> 6, nil
		}
	}
	return 0, nil
}
