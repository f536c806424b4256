// Package cff implements the driver.Driver interface for bare CFF and
// CFF-flavored OpenType ("OTTO") fonts, per SPEC_FULL.md section 4.G: a
// Type 2 charstring interpreter feeding the same outline.Outline/loader
// machinery driver/truetype uses, so package face never has to know which
// format produced a given glyph's points.
//
// Grounded on seehuhn-go-pdf/font/cff: this package keeps that repo's INDEX
// framing (cffIndex as [][]byte), DICT operator/value decoding, and Type 2
// operator table, adapted from its parser.Parser-based byte reader to
// direct []byte slicing and from its Glyph{Cmds}-returning interpreter to one that
// appends directly into an outline.Outline.
package cff

import "github.com/inkwell-labs/corefont/errcode"

// index is a CFF INDEX: an ordered sequence of binary blobs, named after
// seehuhn-go-pdf/font/cff's cffIndex.
type index [][]byte

// readIndex decodes a CFF INDEX starting at the front of buf, returning
// the decoded blobs and the unread remainder of buf.
func readIndex(buf []byte) (index, []byte, error) {
	if len(buf) < 2 {
		return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
	}
	count := int(buf[0])<<8 | int(buf[1])
	buf = buf[2:]
	if count == 0 {
		return nil, buf, nil
	}
	if len(buf) < 1 {
		return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
	}
	offSize := int(buf[0])
	buf = buf[1:]
	if offSize < 1 || offSize > 4 {
		return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
	}

	offsets := make([]uint32, count+1)
	if len(buf) < offSize*(count+1) {
		return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
	}
	for i := range offsets {
		var v uint32
		for j := 0; j < offSize; j++ {
			v = v<<8 | uint32(buf[0])
			buf = buf[1:]
		}
		offsets[i] = v
	}

	dataLen := int(offsets[count]) - 1
	if dataLen < 0 || dataLen > len(buf) {
		return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
	}
	body := buf[:dataLen]
	buf = buf[dataLen:]

	res := make(index, count)
	for i := 0; i < count; i++ {
		lo, hi := offsets[i]-1, offsets[i+1]-1
		if hi < lo || int(hi) > len(body) {
			return nil, nil, errcode.New("cff.readIndex", errcode.InvalidCFFTable)
		}
		res[i] = body[lo:hi]
	}
	return res, buf, nil
}
