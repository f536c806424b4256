// Package cid implements the driver.Driver interface for CID-keyed
// PostScript Type 1 fonts (CIDFontType0 resources), per SPEC_FULL.md
// section 4.G / section 6's CID-keyed font support. It is built directly
// on driver/type1's exported charstring decoder and decryption primitives
// (SplitProgram, Decrypt, ScanCharstrings, ScanSubrs, NewContext,
// DecodeCharString): a CIDFontType0 resource uses the exact same Type 1
// charstring format and eexec/charstring double encryption as a plain
// Type 1 font, wrapped in a different top-level dictionary structure — an
// /FDArray of per-group Private dictionaries (each with its own local
// Subrs) plus a CID->FD-index map, the CID-keyed analogue of
// driver/cff's FDArray/FDSelect for CID-keyed CFF.
package cid

import (
	"bytes"

	"github.com/inkwell-labs/corefont/driver/type1"
	"github.com/inkwell-labs/corefont/errcode"
)

func skipWS(buf []byte, i int) int {
	for i < len(buf) && isWS(buf[i]) {
		i++
	}
	return i
}

func isWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func matchesAt(buf []byte, i int, s string) bool {
	return i+len(s) <= len(buf) && string(buf[i:i+len(s)]) == s
}

// findInt scans forward from i for the next decimal integer token,
// returning its value and the index just past it. Mirrors
// driver/type1's own findInt; duplicated rather than exported since it's
// a three-line primitive and this package's dict grammar (CIDMap's "dup
// CID FD put" triples) differs from anything type1 needs to expose.
func findInt(buf []byte, i int) (int, int, bool) {
	i = skipWS(buf, i)
	start := i
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		i++
	}
	if i == start {
		return 0, i, false
	}
	v := 0
	for _, c := range buf[start:i] {
		v = v*10 + int(c-'0')
	}
	return v, i, true
}

// fdBlock is the byte range of one "/FDArray" entry's "dup I /FontDict
// ... /Private ... end put" text, used to scope ScanSubrs/ScanLenIV to
// just that group's own Private dict rather than the whole decrypted
// blob.
type fdBlock struct {
	index int
	data  []byte
}

// scanFDArray splits the decrypted private payload's "/FDArray N array
// ... dup I /FontDict ... /Private ... end put" sequence into one block
// per font dict, in the order the dicts appear in the text.
func scanFDArray(priv []byte) ([]fdBlock, error) {
	idx := bytes.Index(priv, []byte("/FDArray"))
	if idx < 0 {
		return nil, errcode.New("cid.scanFDArray", errcode.InvalidType1Table)
	}

	var starts []int
	var indices []int
	i := idx
	for {
		dupIdx := bytes.Index(priv[i:], []byte("dup "))
		if dupIdx < 0 {
			break
		}
		pos := i + dupIdx
		n, after, ok := findInt(priv, pos+len("dup "))
		if !ok {
			i = pos + len("dup ")
			continue
		}
		after = skipWS(priv, after)
		if !matchesAt(priv, after, "/FontDict") {
			i = after
			continue
		}
		starts = append(starts, pos)
		indices = append(indices, n)
		i = after
	}
	if len(starts) == 0 {
		return nil, errcode.New("cid.scanFDArray", errcode.InvalidType1Table)
	}

	cidMapIdx := bytes.Index(priv, []byte("/CIDMap"))
	charStringsIdx := bytes.Index(priv, []byte("/CharStrings"))
	end := len(priv)
	if cidMapIdx >= 0 && cidMapIdx < end {
		end = cidMapIdx
	}
	if charStringsIdx >= 0 && charStringsIdx < end {
		end = charStringsIdx
	}

	blocks := make([]fdBlock, len(starts))
	for k, start := range starts {
		stop := end
		if k+1 < len(starts) {
			stop = starts[k+1]
		}
		blocks[k] = fdBlock{index: indices[k], data: priv[start:stop]}
	}
	return blocks, nil
}

// scanCIDMap reads the "/CIDMap ... dup CID FD put ..." block into a
// cid->fdIndex table, the textual analogue of a real CIDFontType0's
// binary CIDMap string.
func scanCIDMap(priv []byte) (map[int]int, error) {
	idx := bytes.Index(priv, []byte("/CIDMap"))
	if idx < 0 {
		return nil, errcode.New("cid.scanCIDMap", errcode.InvalidType1Table)
	}
	end := len(priv)
	if cs := bytes.Index(priv[idx:], []byte("/CharStrings")); cs >= 0 {
		end = idx + cs
	}
	region := priv[idx:end]

	table := map[int]int{}
	i := 0
	for {
		dupIdx := bytes.Index(region[i:], []byte("dup "))
		if dupIdx < 0 {
			break
		}
		i += dupIdx + len("dup ")
		cidVal, after, ok := findInt(region, i)
		if !ok {
			break
		}
		i = after
		fdVal, after, ok := findInt(region, i)
		if !ok {
			break
		}
		i = after
		i = skipWS(region, i)
		if !matchesAt(region, i, "put") {
			continue
		}
		i += len("put")
		table[cidVal] = fdVal
	}
	if len(table) == 0 {
		return nil, errcode.New("cid.scanCIDMap", errcode.InvalidType1Table)
	}
	return table, nil
}

// buildContexts turns each fdBlock into a type1.Context carrying that
// group's own local Subrs, keyed by its declared FD index.
func buildContexts(blocks []fdBlock) ([]*type1.Context, error) {
	maxIndex := -1
	for _, b := range blocks {
		if b.index > maxIndex {
			maxIndex = b.index
		}
	}
	ctxs := make([]*type1.Context, maxIndex+1)
	for _, b := range blocks {
		lenIV := type1.ScanLenIV(b.data)
		// ScanSubrs returns (nil, nil) for a font dict with no local
		// subroutines at all, which is valid: NewContext(nil) just means
		// callsubr always fails for that group.
		rawSubrs, err := type1.ScanSubrs(b.data)
		if err != nil {
			return nil, err
		}
		subrs := make([][]byte, len(rawSubrs))
		for i, raw := range rawSubrs {
			if raw != nil {
				subrs[i] = type1.Decrypt(raw, 4330, lenIV)
			}
		}
		ctxs[b.index] = type1.NewContext(subrs)
	}
	for _, c := range ctxs {
		if c == nil {
			return nil, errcode.New("cid.buildContexts", errcode.InvalidType1Table)
		}
	}
	return ctxs, nil
}
