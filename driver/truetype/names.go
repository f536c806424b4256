package truetype

import (
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/sfio"
)

// macGlyphNames is the standard Macintosh glyph ordering referenced by a
// post table format 1.0 (and by any format 2.0 index below 258), taken
// verbatim from Apple's TrueType Reference Manual appendix and identical
// to the table the teacher's sibling psnames-style drivers in this pack
// carry for the same purpose.
var macGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
	"period", "slash", "zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon", "semicolon", "less",
	"equal", "greater", "question", "at", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z", "bracketleft", "backslash",
	"bracketright", "asciicircum", "underscore", "grave", "a", "b", "c",
	"d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v", "w", "x", "y", "z", "braceleft", "bar",
	"braceright", "asciitilde", "Adieresis", "Aring", "Ccedilla",
	"Eacute", "Ntilde", "Odieresis", "Udieresis", "aacute", "agrave",
	"acircumflex", "adieresis", "atilde", "aring", "ccedilla", "eacute",
	"egrave", "ecircumflex", "edieresis", "iacute", "igrave",
	"icircumflex", "idieresis", "ntilde", "oacute", "ograve",
	"ocircumflex", "odieresis", "otilde", "uacute", "ugrave",
	"ucircumflex", "udieresis", "dagger", "degree", "cent", "sterling",
	"section", "bullet", "paragraph", "germandbls", "registered",
	"copyright", "trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product", "pi",
	"integral", "ordfeminine", "ordmasculine", "Omega", "ae", "oslash",
	"questiondown", "exclamdown", "logicalnot", "radical", "florin",
	"approxequal", "Delta", "guillemotleft", "guillemotright",
	"ellipsis", "nonbreakingspace", "Agrave", "Atilde", "Otilde", "OE",
	"oe", "endash", "emdash", "quotedblleft", "quotedblright",
	"quoteleft", "quoteright", "divide", "lozenge", "ydieresis",
	"Ydieresis", "fraction", "currency", "guilsinglleft",
	"guilsinglright", "fi", "fl", "daggerdbl", "periodcentered",
	"quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave", "dotlessi",
	"circumflex", "tilde", "macron", "breve", "dotaccent", "ring",
	"cedilla", "hungarumlaut", "ogonek", "caron", "Lslash", "lslash",
	"Scaron", "scaron", "Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus", "multiply",
	"onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute", "Ccaron",
	"ccaron", "dcroat",
}

// post table format markers.
const (
	postFormat1 = 0x00010000
	postFormat2 = 0x00020000
	postFormat3 = 0x00030000
)

// parsePost decodes the post table's glyph-name mapping: format 1.0
// glyphs use the standard Macintosh order directly, format 2.0 carries
// an explicit per-glyph index plus a pool of Pascal strings for indices
// at or above 258, and format 3.0 carries no names at all. Unlike the
// rest of this driver, a malformed post table is not fatal to opening
// the face: glyph names are a convenience service, not required for
// rendering, so failures here just leave glyphNames empty and
// GlyphName reports ok=false for every glyph.
func (f *Font) parsePost() {
	if len(f.post) < 4 {
		return
	}
	format := sfio.Cursor(f.post).U32()
	switch format {
	case postFormat1:
		f.glyphNames = make(map[loader.Index]string, f.nGlyph)
		for i := 0; i < f.nGlyph && i < len(macGlyphNames); i++ {
			f.glyphNames[loader.Index(i)] = macGlyphNames[i]
		}
	case postFormat2:
		f.parsePostFormat2()
	case postFormat3:
		// No names; glyphNames stays nil and GlyphName reports ok=false.
	}
}

func (f *Font) parsePostFormat2() {
	if len(f.post) < 34 {
		return
	}
	c := sfio.Cursor(f.post[32:])
	n := int(c.U16())
	if n != f.nGlyph || 34+2*n > len(f.post) {
		return
	}
	indices := make([]uint16, n)
	for i := range indices {
		indices[i] = c.U16()
	}

	pool := f.post[34+2*n:]
	var pascalNames []string
	for len(pool) > 0 {
		l := int(pool[0])
		if 1+l > len(pool) {
			break
		}
		pascalNames = append(pascalNames, string(pool[1:1+l]))
		pool = pool[1+l:]
	}

	f.glyphNames = make(map[loader.Index]string, n)
	for gid, idx := range indices {
		switch {
		case idx < 258:
			f.glyphNames[loader.Index(gid)] = macGlyphNames[idx]
		case int(idx)-258 < len(pascalNames):
			f.glyphNames[loader.Index(gid)] = pascalNames[idx-258]
		}
	}
}
