package type1

import (
	"bytes"

	"github.com/inkwell-labs/corefont/errcode"
)

// rdTokens are the two spellings a Type 1 font uses for the operator
// that precedes a length-prefixed raw binary run ("read binary string"),
// Adobe's default names RD/ND/NP plus the shorter -|/|-/| some font
// generators emit instead.
var rdTokens = [][]byte{[]byte("RD"), []byte("-|")}

// scanCharstrings walks a decrypted private dictionary's "/CharStrings N
// dict dup begin ... end" block, extracting each glyph's still
// charstring-encrypted byte payload, per the Adobe Type 1 Font Format's
// binary-token convention: "/name length RD <length bytes> ND".
func scanCharstrings(priv []byte) ([]string, map[string][]byte, error) {
	idx := bytes.Index(priv, []byte("/CharStrings"))
	if idx < 0 {
		return nil, nil, errcode.New("type1.scanCharstrings", errcode.InvalidType1Table)
	}
	i := idx + len("/CharStrings")

	// Skip "N dict dup begin" before the first "/name" entry.
	if beginIdx := findKeyword(priv, i, "begin"); beginIdx >= 0 {
		i = beginIdx + len("begin")
	}

	var order []string
	glyphs := map[string][]byte{}
	for {
		i = skipWS(priv, i)
		if i >= len(priv) {
			break
		}
		if priv[i] != '/' {
			if matchesAt(priv, i, "end") {
				break
			}
			// Unrecognized token between entries (e.g. a comment or a
			// font-specific directive): skip to the next whitespace and
			// keep scanning rather than aborting the whole font.
			_, i = readToken(priv, i)
			continue
		}
		_, next := readToken(priv, i)
		name := string(tokenBytes(priv, i, next))[1:]
		i = next

		length, afterLen, ok := findInt(priv, i)
		if !ok {
			return nil, nil, errcode.New("type1.scanCharstrings", errcode.InvalidType1Table)
		}
		i = afterLen

		rdEnd, ok := matchRD(priv, i)
		if !ok {
			return nil, nil, errcode.New("type1.scanCharstrings", errcode.InvalidType1Table)
		}
		i = rdEnd
		if i >= len(priv) || priv[i] != ' ' {
			return nil, nil, errcode.New("type1.scanCharstrings", errcode.InvalidType1Table)
		}
		i++
		if length < 0 || i+length > len(priv) {
			return nil, nil, errcode.New("type1.scanCharstrings", errcode.InvalidType1Table)
		}
		if _, dup := glyphs[name]; !dup {
			order = append(order, name)
		}
		glyphs[name] = priv[i : i+length]
		i += length

		// Consume the terminator token (ND/|-/def) before the next entry.
		_, i = readToken(priv, i)
	}
	return order, glyphs, nil
}

// scanSubrs walks a decrypted private dictionary's "/Subrs N array ...
// dup I L RD <L bytes> NP" block into an index-ordered slice, per the
// same RD/length convention scanCharstrings uses for glyphs.
func scanSubrs(priv []byte) ([][]byte, error) {
	idx := bytes.Index(priv, []byte("/Subrs"))
	if idx < 0 {
		return nil, nil
	}
	i := idx + len("/Subrs")
	count, afterCount, ok := findInt(priv, i)
	if !ok || count < 0 {
		return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
	}
	i = afterCount

	subrs := make([][]byte, count)
	for {
		i = skipWS(priv, i)
		if !matchesAt(priv, i, "dup") {
			break
		}
		i += len("dup")

		index, afterIdx, ok := findInt(priv, i)
		if !ok {
			return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
		}
		i = afterIdx

		length, afterLen, ok := findInt(priv, i)
		if !ok {
			return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
		}
		i = afterLen

		rdEnd, ok := matchRD(priv, i)
		if !ok {
			return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
		}
		i = rdEnd
		if i >= len(priv) || priv[i] != ' ' {
			return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
		}
		i++
		if length < 0 || i+length > len(priv) {
			return nil, errcode.New("type1.scanSubrs", errcode.InvalidType1Table)
		}
		if index >= 0 && index < len(subrs) {
			subrs[index] = priv[i : i+length]
		}
		i += length

		_, i = readToken(priv, i) // NP/|
	}
	return subrs, nil
}

// scanLenIV reads the private dictionary's /lenIV override, defaulting to
// 4 (the standard number of random prefix bytes each charstring's
// encryption discards) when absent.
func scanLenIV(priv []byte) int {
	idx := bytes.Index(priv, []byte("/lenIV"))
	if idx < 0 {
		return 4
	}
	v, _, ok := findInt(priv, idx+len("/lenIV"))
	if !ok {
		return 4
	}
	return v
}

// scanEncoding reads a cleartext "/Encoding 256 array ... dup CODE /name
// put ... readonly def" block into a 256-entry code->glyph-name table;
// returns nil if the font instead references StandardEncoding.
func scanEncoding(cleartext []byte) []string {
	idx := bytes.Index(cleartext, []byte("/Encoding"))
	if idx < 0 {
		return nil
	}
	if matchesAt(cleartext, skipWS(cleartext, idx+len("/Encoding")), "StandardEncoding") {
		return nil
	}
	enc := make([]string, 256)
	for i := range enc {
		enc[i] = ".notdef"
	}
	i := idx
	for {
		dupIdx := bytes.Index(cleartext[i:], []byte("dup "))
		if dupIdx < 0 {
			break
		}
		i += dupIdx + len("dup ")
		code, afterCode, ok := findInt(cleartext, i)
		if !ok {
			break
		}
		i = afterCode
		i = skipWS(cleartext, i)
		if i >= len(cleartext) || cleartext[i] != '/' {
			continue
		}
		_, next := readToken(cleartext, i)
		name := string(tokenBytes(cleartext, i, next))[1:]
		i = next
		if code >= 0 && code < 256 {
			enc[code] = name
		}
	}
	return enc
}

func skipWS(buf []byte, i int) int {
	for i < len(buf) && isPFWhitespace(buf[i]) {
		i++
	}
	return i
}

func readToken(buf []byte, i int) (tok []byte, next int) {
	i = skipWS(buf, i)
	j := i
	for j < len(buf) && !isPFWhitespace(buf[j]) {
		j++
	}
	return buf[i:j], j
}

func tokenBytes(buf []byte, start, end int) []byte {
	start = skipWS(buf, start)
	return buf[start:end]
}

func matchesAt(buf []byte, i int, s string) bool {
	return i+len(s) <= len(buf) && string(buf[i:i+len(s)]) == s
}

// findKeyword finds the next occurrence of s at or after i.
func findKeyword(buf []byte, i int, s string) int {
	idx := bytes.Index(buf[i:], []byte(s))
	if idx < 0 {
		return -1
	}
	return i + idx
}

// matchRD skips whitespace then one of rdTokens at i, returning the index
// just past the matched token.
func matchRD(buf []byte, i int) (int, bool) {
	i = skipWS(buf, i)
	for _, tok := range rdTokens {
		if matchesAt(buf, i, string(tok)) {
			return i + len(tok), true
		}
	}
	return 0, false
}
