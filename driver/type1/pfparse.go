package type1

import (
	"bytes"
	"strconv"

	"github.com/inkwell-labs/corefont/errcode"
)

// pfbSegmentASCII and pfbSegmentBinary are the two payload segment types
// a PFB (MS-DOS/Windows packaging of a Type 1 font) uses; type 3 marks
// end-of-file and carries no payload.
const (
	pfbMarker        = 0x80
	pfbSegmentASCII  = 1
	pfbSegmentBinary = 2
	pfbSegmentEOF    = 3
)

// splitProgram separates a Type 1 font program (PFA text or PFB binary
// packaging) into its cleartext header (holding /FontMatrix, /Encoding,
// and other unencrypted dictionary entries) and the still-eexec-encrypted
// private-dictionary payload, reversing whichever container format wraps
// it before eexec decryption ever runs.
func splitProgram(buf []byte) (cleartext, encryptedPrivate []byte, err error) {
	if len(buf) > 0 && buf[0] == pfbMarker {
		return splitPFB(buf)
	}
	return splitPFA(buf)
}

// splitPFB concatenates a PFB's alternating ASCII/binary segments into
// one cleartext run and one (already-binary, no hex layer) encrypted-
// private-dictionary run, per the PFB segment header format: 0x80, a
// type byte, then a 4-byte little-endian payload length.
func splitPFB(buf []byte) (cleartext, encryptedPrivate []byte, err error) {
	var clear, priv []byte
	for len(buf) > 0 {
		if buf[0] != pfbMarker || len(buf) < 2 {
			return nil, nil, errcode.New("type1.splitPFB", errcode.InvalidType1Table)
		}
		segType := buf[1]
		if segType == pfbSegmentEOF {
			break
		}
		if len(buf) < 6 {
			return nil, nil, errcode.New("type1.splitPFB", errcode.InvalidType1Table)
		}
		length := int(buf[2]) | int(buf[3])<<8 | int(buf[4])<<16 | int(buf[5])<<24
		buf = buf[6:]
		if length < 0 || length > len(buf) {
			return nil, nil, errcode.New("type1.splitPFB", errcode.InvalidType1Table)
		}
		payload := buf[:length]
		buf = buf[length:]
		switch segType {
		case pfbSegmentASCII:
			clear = append(clear, payload...)
		case pfbSegmentBinary:
			priv = append(priv, payload...)
		default:
			return nil, nil, errcode.New("type1.splitPFB", errcode.InvalidType1Table)
		}
	}
	if priv == nil {
		return nil, nil, errcode.New("type1.splitPFB", errcode.InvalidType1Table)
	}
	return clear, priv, nil
}

// splitPFA splits a plain-text (PFA) Type 1 program at its "eexec"
// keyword, then decodes the remainder as ASCII hex if it looks like hex
// digits (the PFA convention) or passes it through unchanged if a binary
// eexec section was embedded directly in an otherwise-text file.
func splitPFA(buf []byte) (cleartext, encryptedPrivate []byte, err error) {
	idx := bytes.Index(buf, []byte("eexec"))
	if idx < 0 {
		return nil, nil, errcode.New("type1.splitPFA", errcode.InvalidType1Table)
	}
	clear := buf[:idx]
	rest := buf[idx+len("eexec"):]

	i := 0
	for i < len(rest) && isPFWhitespace(rest[i]) {
		i++
	}
	rest = rest[i:]

	if looksLikeHex(rest) {
		return clear, decodeHex(rest), nil
	}
	return clear, rest, nil
}

func isPFWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// looksLikeHex checks the first handful of non-whitespace bytes: eexec's
// binary payload starts with bytes whose high nibble makes them very
// unlikely to all be ASCII hex digits, while a genuine PFA hex dump's
// first bytes are always 0-9a-fA-F.
func looksLikeHex(buf []byte) bool {
	seen := 0
	for _, c := range buf {
		if isPFWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return false
		}
		seen++
		if seen >= 4 {
			return true
		}
	}
	return seen > 0
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// decodeHex decodes a PFA's whitespace-separated ASCII-hex dump, ignoring
// non-hex bytes (newlines, and the trailing "0000...0000" marker line
// that real encrypted content never reaches, since CharStrings/Subrs
// parsing stops once it has consumed every dict entry it can find).
func decodeHex(buf []byte) []byte {
	out := make([]byte, 0, len(buf)/2)
	var hi byte
	haveHi := false
	for _, c := range buf {
		if !isHexDigit(c) {
			continue
		}
		if !haveHi {
			hi = hexVal(c)
			haveHi = true
			continue
		}
		out = append(out, hi<<4|hexVal(c))
		haveHi = false
	}
	return out
}

// findInt scans forward from i for the next decimal integer token
// (possibly negative), returning its value and the index just past it.
func findInt(buf []byte, i int) (int, int, bool) {
	for i < len(buf) && isPFWhitespace(buf[i]) {
		i++
	}
	start := i
	if i < len(buf) && buf[i] == '-' {
		i++
	}
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		i++
	}
	if i == start || (i == start+1 && buf[start] == '-') {
		return 0, i, false
	}
	v, err := strconv.Atoi(string(buf[start:i]))
	if err != nil {
		return 0, i, false
	}
	return v, i, true
}
