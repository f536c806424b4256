package type1

import "github.com/inkwell-labs/corefont/loader"

// This file re-exports the pieces of this package's PFA/PFB splitting,
// eexec/charstring decryption, and charstring interpreter that
// driver/cid needs to implement CID-keyed Type 1 (PostScript
// CIDFontType0): a different top-level dictionary structure (an
// /FDArray of per-group Private dicts plus a CID->FD map) wrapping the
// exact same charstring format and double-encryption scheme this
// package already decodes.

// Context is a charstring interpreter's local-subroutine table, exported
// so a CID-keyed font can build one per FDArray entry.
type Context = charstringContext

// NewContext returns a Context backed by subrs.
func NewContext(subrs [][]byte) *Context {
	return &charstringContext{subrs: subrs}
}

// DecodeCharString interprets a single Type 1 charstring, returning its
// advance width.
func DecodeCharString(ctx *Context, l *loader.Loader, code []byte) (float64, error) {
	return decodeCharString(ctx, l, code)
}

// SplitProgram separates a PFA/PFB Type 1 program into its cleartext
// header and still-eexec-encrypted private payload.
func SplitProgram(buf []byte) (cleartext, encryptedPrivate []byte, err error) {
	return splitProgram(buf)
}

// Decrypt runs the Type 1 decryption cipher (r=55665 for the outer eexec
// layer, r=4330 for the inner per-charstring layer).
func Decrypt(cipher []byte, r uint16, skip int) []byte {
	return decrypt(cipher, r, skip)
}

// ScanCharstrings walks a "/CharStrings N dict dup begin ... end" block,
// keyed by whatever name each entry uses — a PostScript identifier for a
// plain Type 1 font, or a decimal CID for a CIDFontType0 FD group.
func ScanCharstrings(priv []byte) (order []string, glyphs map[string][]byte, err error) {
	return scanCharstrings(priv)
}

// ScanSubrs walks a "/Subrs N array ... dup I L RD <bytes> NP" block.
func ScanSubrs(priv []byte) ([][]byte, error) {
	return scanSubrs(priv)
}

// ScanLenIV reads a private dictionary's /lenIV override, defaulting to 4.
func ScanLenIV(priv []byte) int {
	return scanLenIV(priv)
}
