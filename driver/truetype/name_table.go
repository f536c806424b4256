package truetype

import (
	"bytes"

	"github.com/inkwell-labs/corefont/sfio"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// name table ID constants this driver reads (TrueType Reference Manual,
// "name" table, nameID column).
const (
	nameIDFamily = 1
	nameIDStyle  = 2
)

const (
	platformMacintosh = 1
	platformWindows    = 3
)

// decodeUTF16BE decodes a big-endian UTF-16 byte string, as every Windows
// (and most Macintosh Unicode) name record uses, adapted directly from the
// teacher's decodeUTF16 helper.
func decodeUTF16BE(b []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// nameRecord reads the family or style string (nameID 1 or 2) from the
// name table, preferring a Windows Unicode record and falling back to a
// Macintosh Roman one (plain ASCII, no transcoding needed for the
// common case).
func (f *Font) nameRecord(nameID uint16) (string, bool) {
	if len(f.name) < 6 {
		return "", false
	}
	c := sfio.Cursor(f.name[2:])
	count := int(c.U16())
	stringOffset := int(c.U16())
	if 6+12*count > len(f.name) || stringOffset > len(f.name) {
		return "", false
	}
	storage := f.name[stringOffset:]

	var macCandidate []byte
	recs := sfio.Cursor(f.name[6:])
	for i := 0; i < count; i++ {
		platformID := recs.U16()
		recs.Skip(4) // encodingID, languageID
		nid := recs.U16()
		length := int(recs.U16())
		offset := int(recs.U16())
		if nid != nameID || offset+length > len(storage) {
			continue
		}
		raw := storage[offset : offset+length]
		switch platformID {
		case platformWindows:
			if s, err := decodeUTF16BE(raw); err == nil {
				return s, true
			}
		case platformMacintosh:
			macCandidate = raw
		}
	}
	if macCandidate != nil {
		return string(bytes.TrimRight(macCandidate, "\x00")), true
	}
	return "", false
}

// FamilyName returns the font's family name (name ID 1), if present.
func (f *Font) FamilyName() (string, bool) { return f.nameRecord(nameIDFamily) }

// StyleName returns the font's subfamily/style name (name ID 2), if present.
func (f *Font) StyleName() (string, bool) { return f.nameRecord(nameIDStyle) }
