// Package corefont implements the public API, per SPEC_FULL.md section
// 4.K: opening faces, loading glyphs into a reused slot, rasterizing a
// slot's outline into a bitmap, kerning, and glyph-name lookup.
//
// Grounded on the teacher's own freetype.Context — a single "owns
// everything for this drawing session" value layered on top of
// freetype/truetype's lower-level Font/GlyphBuf — generalized here to
// wrap face.Face instead of one hardcoded format, and on
// freetype/raster's Span/Painter split for keeping image/image/draw out
// of the rasterizer itself (package raster's own doc comment explains
// why); this file is the one place in the module that imports image,
// mirroring freetype.go's role as the image-aware layer above
// freetype/raster's image-free one.
package corefont

import (
	"image"
	"image/color"

	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/face"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/raster"
	"github.com/inkwell-labs/corefont/sfio"
)

// Slot is a face's mutable glyph workspace, reused across LoadGlyph calls
// rather than reallocated, matching spec.md's glyph-slot description.
type Slot struct {
	Format  driver.GlyphFormat
	Outline outline.Outline
	Bitmap  *raster.Bitmap
	Metrics loader.Metrics
}

// Face wraps a face.Face with the glyph slot spec.md's public API loads
// into and renders from.
type Face struct {
	inner  *face.Face
	stream sfio.Stream
	Slot   Slot
}

// OpenFace opens the font at path against reg, probing it to determine
// its format. faceIndex selects which face to open for a multi-face
// resource; a negative faceIndex returns only the face count (via the
// returned *Face being nil and n holding the count), mirroring
// spec.md's "face_index < 0 means return only the number of faces."
//
// None of this module's drivers implement multi-face container formats
// (TrueType/OpenType collections, multi-font Type 1 resources), so n is
// always 1 for any format this module recognizes; the negative-faceIndex
// contract is still honored for forward compatibility.
func OpenFace(reg *driver.Registry, path string, faceIndex int) (f *Face, n int, err error) {
	s, err := sfio.OpenFileStream(path)
	if err != nil {
		return nil, 0, err
	}
	return openFace(reg, s, faceIndex)
}

// OpenFaceMemory is OpenFace over an in-memory byte slice, the Go
// analogue of FT_New_Memory_Face.
func OpenFaceMemory(reg *driver.Registry, data []byte, faceIndex int) (f *Face, n int, err error) {
	return openFace(reg, sfio.NewMemoryStream(data), faceIndex)
}

func openFace(reg *driver.Registry, s sfio.Stream, faceIndex int) (*Face, int, error) {
	if faceIndex < 0 {
		// Every driver in this module opens a single-face resource; probe
		// far enough to confirm the format is recognized, then report it.
		backend, d, err := reg.Probe(s)
		if err != nil {
			s.Close()
			return nil, 0, err
		}
		backend.Close()
		_ = d
		s.Close()
		return nil, 1, nil
	}
	if faceIndex != 0 {
		s.Close()
		return nil, 0, errcode.New("corefont.OpenFace", errcode.InvalidArgument)
	}
	inner, err := face.Open(reg, s)
	if err != nil {
		s.Close()
		return nil, 0, err
	}
	return &Face{inner: inner, stream: s}, 1, nil
}

// NumGlyphs, UnitsPerEm, SetCharSize, SetPixelSizes, GetCharIndex and
// Close all forward to the wrapped face.Face.
func (f *Face) NumGlyphs() int  { return f.inner.NumGlyphs() }
func (f *Face) UnitsPerEm() int { return f.inner.UnitsPerEm() }
func (f *Face) DriverName() string { return f.inner.DriverName() }

func (f *Face) SetCharSize(charWidth, charHeight fixedmath.F26Dot6, horzRes, vertRes uint32) error {
	return f.inner.SetCharSize(charWidth, charHeight, horzRes, vertRes)
}

func (f *Face) SetPixelSizes(pixelWidth, pixelHeight uint16) error {
	return f.inner.SetPixelSizes(pixelWidth, pixelHeight)
}

func (f *Face) GetCharIndex(r rune) loader.Index { return f.inner.GetCharIndex(r) }

func (f *Face) Close() error {
	if err := f.inner.Close(); err != nil {
		return err
	}
	return f.stream.Close()
}

// LoadGlyph decodes glyph_index into f's slot, per spec.md's
// `load_glyph(face, glyph_index, flags) -> Error` contract: on success
// the slot holds an outline (Format = FormatOutline; this module's
// drivers never populate FormatBitmap or FormatComposite directly — a
// composite glyph is always assembled into a single outline by package
// loader before LoadGlyph returns, per spec.md §4.D).
func (f *Face) LoadGlyph(glyphIndex loader.Index) error {
	result, err := f.inner.LoadGlyph(glyphIndex)
	if err != nil {
		return err
	}
	f.Slot.Format = result.Format
	f.Slot.Outline = result.Outline
	f.Slot.Metrics = result.Metrics
	f.Slot.Bitmap = nil
	return nil
}

// LoadChar maps r through the active charmap, then loads it, mirroring
// FT_Load_Char.
func (f *Face) LoadChar(r rune) error {
	return f.LoadGlyph(f.GetCharIndex(r))
}

// RenderGlyph converts the slot's outline into a bitmap in place, per
// spec.md: "allocates a new buffer owned by the slot, freeing any
// previous owned buffer" (the prior f.Slot.Bitmap, if any, is simply
// replaced and left to the garbage collector — the Go analogue of
// freeing it, since this module's Bitmap owns no resource beyond its
// Buffer slice).
func (f *Face) RenderGlyph(mode raster.PixelMode) error {
	if f.Slot.Format != driver.FormatOutline {
		return errcode.New("corefont.RenderGlyph", errcode.InvalidGlyphFormat)
	}
	box := f.Slot.Outline.CBox()
	width, rows := 0, 0
	if !box.Empty() {
		width = int(box.XMax.Ceil()-box.XMin.Floor()) + 1
		rows = int(box.YMax.Ceil()-box.YMin.Floor()) + 1
	}
	if width <= 0 {
		width = 1
	}
	if rows <= 0 {
		rows = 1
	}
	rendered := outline.New(f.Slot.Outline.NumPoints(), f.Slot.Outline.NumContours())
	if err := outline.Copy(rendered, &f.Slot.Outline); err != nil {
		return err
	}
	if !box.Empty() {
		rendered.Translate(boxOrigin(box))
	}
	bmp := raster.NewBitmap(width, rows, mode)
	var err error
	switch mode {
	case raster.PixelMono:
		err = raster.Mono(rendered, bmp, rendered.NumPoints()*32)
	default:
		err = raster.Gray(rendered, bmp)
	}
	if err != nil {
		return err
	}
	f.Slot.Bitmap = bmp
	return nil
}

// GetKerning returns the horizontal kerning adjustment between an
// adjacent glyph pair, in whole pixels at the face's current horizontal
// pixel size, taken from the backing driver's driver.KerningFace. It
// takes no kerning-mode argument and returns a single horizontal value,
// not a vector; a face whose driver has no pair-kerning data fails with
// errcode.UnimplementedFeature.
func (f *Face) GetKerning(left, right loader.Index) (int32, error) {
	return f.inner.Kerning(left, right)
}

// GetGlyphName writes gid's PostScript name, per spec.md: "optional;
// requires GLYPH_NAMES flag; returns Invalid_Argument otherwise."
func (f *Face) GetGlyphName(gid loader.Index) (string, error) {
	name, ok := f.inner.GlyphName(gid)
	if !ok {
		return "", errcode.New("corefont.GetGlyphName", errcode.InvalidArgument)
	}
	return name, nil
}

// Image converts b into a standard-library image.Image: *image.Alpha for
// Gray (coverage values used directly as alpha), *image.Alpha
// thresholded to 0/255 for Mono. Kept in this package rather than
// package raster so the rasterizer itself never depends on image or
// image/draw, per DESIGN.md's note on mirroring the teacher's
// freetype/raster (no image dependency) versus freetype.go (the
// image-aware layer) split.
func Image(b *raster.Bitmap) (image.Image, error) {
	if b == nil {
		return nil, errcode.New("corefont.Image", errcode.InvalidArgument)
	}
	img := image.NewAlpha(image.Rect(0, 0, b.Width, b.Rows))
	for y := 0; y < b.Rows; y++ {
		off := bitmapRowOffset(b, y)
		for x := 0; x < b.Width; x++ {
			var a uint8
			switch b.Mode {
			case raster.PixelMono:
				if b.Buffer[off+x/8]&(0x80>>uint(x%8)) != 0 {
					a = 255
				}
			default:
				a = b.Buffer[off+x]
			}
			img.SetAlpha(x, y, color.Alpha{A: a})
		}
	}
	return img, nil
}

// bitmapRowOffset recomputes the byte offset raster.Bitmap keeps private,
// honoring a negative (bottom-up) Pitch the same way package raster does
// internally.
func bitmapRowOffset(b *raster.Bitmap, y int) int {
	if b.Pitch < 0 {
		return (b.Rows - 1 - y) * -b.Pitch
	}
	return y * b.Pitch
}

// boxOrigin returns the translation vector that moves box's minimum
// corner to the origin.
func boxOrigin(box outline.Box) fixedmath.Vector {
	return fixedmath.Vector{X: -box.XMin, Y: -box.YMin}
}
