// Package errcode defines the numeric error codes returned throughout
// corefont. Codes are grouped by class in the high byte, mirroring the
// FreeType2 fterrors.h convention: the class occupies bits 8-15, the
// specific condition occupies bits 0-7. Numeric stability of these values
// is part of the public contract (see SPEC_FULL.md section 6) so existing
// constants must never be renumbered; new classes are appended.
package errcode

import "fmt"

// Code is a class-tagged numeric error code.
type Code uint16

// Class returns the high-byte class of a Code.
func (c Code) Class() Code { return c &^ 0xff }

const (
	classGeneric Code = 0x00 << 8
	classMemory  Code = 0x01 << 8
	classStream  Code = 0x02 << 8
	classOutline Code = 0x03 << 8
	classTrueType Code = 0x04 << 8
	classCFF     Code = 0x05 << 8
	classType1   Code = 0x06 << 8
	classRaster  Code = 0xf0 << 8
)

// Generic errors (class 0x00).
const (
	Ok Code = classGeneric + iota
	CannotOpenResource
	UnknownFileFormat
	InvalidFileFormat
	InvalidArgument
	InvalidFaceHandle
	InvalidSizeHandle
	InvalidSlotHandle
	InvalidLibraryHandle
	InvalidDriverHandle
	InvalidCharMapHandle
	InvalidCacheHandle
	InvalidGlyphIndex
	InvalidCharacterCode
	UnimplementedFeature
	InvalidGlyphFormat
	InvalidOutline
	InvalidDimensions
	InvalidPixelSize
	InvalidTable
	InvalidComposite
)

// Out-of-memory / unlisted-object errors (class 0x01).
const (
	OutOfMemory Code = classMemory + iota
	UnlistedObject
)

// Stream errors (class 0x02).
const (
	InvalidStreamSeek Code = classStream + iota
	InvalidStreamSkip
	InvalidStreamRead
	InvalidStreamOperation
	NestedFrameAccess
)

// Outline structural errors (class 0x03).
const (
	TooManyPoints Code = classOutline + iota
	TooManyContours
	TooManyHints
	TooManyEdges
	CompositeTooDeep
)

// Format-specific errors (classes 0x04-0x06).
const (
	InvalidTrueTypeBytecode Code = classTrueType + iota
)

const (
	InvalidCFFTable Code = classCFF + iota
)

const (
	InvalidType1Table Code = classType1 + iota
)

// Raster errors (class 0xf0).
const (
	RasterUninitialized Code = classRaster + iota
	RasterCorrupted
	RasterOverflow
)

// names holds the human-readable names of codes that have been assigned a
// constant above. Codes outside this map still print via their numeric
// value. fterrors.h codes that no caller ever returns (such as
// Invalid_Frame_Read) have no constant in this package.
var names = map[Code]string{
	Ok:                      "no error",
	CannotOpenResource:      "cannot open resource",
	UnknownFileFormat:       "unknown file format",
	InvalidFileFormat:       "invalid file format",
	InvalidArgument:         "invalid argument",
	InvalidFaceHandle:       "invalid face handle",
	InvalidSizeHandle:       "invalid size handle",
	InvalidSlotHandle:       "invalid slot handle",
	InvalidLibraryHandle:    "invalid library handle",
	InvalidDriverHandle:     "invalid driver handle",
	InvalidCharMapHandle:    "invalid charmap handle",
	InvalidCacheHandle:      "invalid cache handle",
	InvalidGlyphIndex:       "invalid glyph index",
	InvalidCharacterCode:    "invalid character code",
	UnimplementedFeature:    "unimplemented feature",
	InvalidGlyphFormat:      "invalid glyph format",
	InvalidOutline:          "invalid outline",
	InvalidDimensions:       "invalid dimensions",
	InvalidPixelSize:        "invalid pixel size",
	InvalidTable:            "invalid table",
	InvalidComposite:        "invalid composite glyph",
	OutOfMemory:             "out of memory",
	UnlistedObject:          "unlisted object",
	InvalidStreamSeek:       "invalid stream seek",
	InvalidStreamSkip:       "invalid stream skip",
	InvalidStreamRead:       "invalid stream read",
	InvalidStreamOperation:  "invalid stream operation",
	NestedFrameAccess:       "nested frame access",
	TooManyPoints:           "too many points",
	TooManyContours:         "too many contours",
	TooManyHints:            "too many hints",
	TooManyEdges:            "too many edges",
	CompositeTooDeep:        "composite glyph recursion too deep",
	InvalidTrueTypeBytecode: "invalid TrueType bytecode",
	InvalidCFFTable:         "invalid CFF table",
	InvalidType1Table:       "invalid Type 1 table",
	RasterUninitialized:     "raster uninitialized",
	RasterCorrupted:         "raster corrupted",
	RasterOverflow:          "raster overflow",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("errcode(0x%04x)", uint16(c))
}

// Error wraps a Code with the operation that produced it, so callers get
// both a stable numeric code (errors.Is(err, errcode.InvalidGlyphIndex))
// and a readable message.
type Error struct {
	Code Code
	Op   string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Code.String()
	}
	return e.Op + ": " + e.Code.String()
}

// Is reports whether target is the same Code, so errors.Is(err, SomeCode)
// works directly against a bare Code value.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && e.Code == c
}

func (c Code) Error() string { return c.String() }

// New returns an *Error for the given code and operation name.
func New(op string, code Code) error {
	if code == Ok {
		return nil
	}
	return &Error{Code: code, Op: op}
}
