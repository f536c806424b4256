package loader

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/sfio"
)

// Composite component flags, named after the original TrueType glyf
// component flags (Apple's TrueType Reference Manual, chapter 6) that the
// teacher's loadCompound decodes; unlike the teacher, which returns
// UnsupportedError for every scale/2x2 flag, this assembler applies them,
// since SPEC_FULL.md requires full composite transform support.
const (
	FlagArg1And2AreWords uint16 = 1 << iota
	FlagArgsAreXYValues
	FlagRoundXYToGrid
	FlagWeHaveAScale
	flagUnused
	FlagMoreComponents
	FlagWeHaveAnXAndYScale
	FlagWeHaveATwoByTwo
	FlagWeHaveInstructions
	FlagUseMyMetrics
	FlagOverlapCompound
)

// maxCompositeDepth bounds composite recursion, matching
// errcode.CompositeTooDeep's purpose: a font with a component cycle must
// fail cleanly rather than loop or blow the Go call stack.
const maxCompositeDepth = 8

// ChildLoader fetches the outline and metrics of a single child glyph by
// index, independent of the font format backing it. Composite glyph
// assembly is identical across TrueType, CFF ("seac"-style composition),
// and CID; only this callback differs.
type ChildLoader func(Index) (GlyphLoad, Metrics, error)

// AssembleComposite decodes a sequence of component records from cur and
// loads each referenced child into l.Current, translating or transforming
// it per its flags, mirroring (and generalizing) the teacher's
// loadCompound: an ARGS_ARE_XY_VALUES pair of signed offsets, one of
// SCALE/XY_SCALE/2X2 for a linear transform, USE_MY_METRICS to let a
// component's advance/bearing replace the composite's own, and
// MORE_COMPONENTS to continue the loop.
func AssembleComposite(l *Loader, cur sfio.Cursor, depth int, loadChild ChildLoader) (Metrics, error) {
	if depth >= maxCompositeDepth {
		return Metrics{}, errcode.New("loader.AssembleComposite", errcode.CompositeTooDeep)
	}

	var metrics Metrics
	for {
		flags := cur.U16()
		childIndex := Index(cur.U16())

		// arg1/arg2 are either a signed (dx, dy) offset or a pair of point
		// indices (arg1 into base[..P], arg2 into the new component),
		// selected by ARGS_ARE_XY_VALUES; the word/byte width is selected
		// independently by ARG_1_AND_2_ARE_WORDS.
		var dx, dy int32
		var arg1, arg2 int
		xyValues := flags&FlagArgsAreXYValues != 0
		if flags&FlagArg1And2AreWords != 0 {
			raw1, raw2 := cur.U16(), cur.U16()
			if xyValues {
				dx, dy = int32(int16(raw1)), int32(int16(raw2))
			} else {
				arg1, arg2 = int(raw1), int(raw2)
			}
		} else {
			raw1, raw2 := cur.U8(), cur.U8()
			if xyValues {
				dx, dy = int32(int8(raw1)), int32(int8(raw2))
			} else {
				arg1, arg2 = int(raw1), int(raw2)
			}
		}

		transform := fixedmath.Identity
		switch {
		case flags&FlagWeHaveATwoByTwo != 0:
			transform.XX = fixedmath.F16Dot16(cur.I16()) << 2
			transform.XY = fixedmath.F16Dot16(cur.I16()) << 2
			transform.YX = fixedmath.F16Dot16(cur.I16()) << 2
			transform.YY = fixedmath.F16Dot16(cur.I16()) << 2
		case flags&FlagWeHaveAnXAndYScale != 0:
			transform.XX = fixedmath.F16Dot16(cur.I16()) << 2
			transform.YY = fixedmath.F16Dot16(cur.I16()) << 2
		case flags&FlagWeHaveAScale != 0:
			scale := fixedmath.F16Dot16(cur.I16()) << 2
			transform.XX, transform.YY = scale, scale
		}

		child, childMetrics, err := loadChild(childIndex)
		if err != nil {
			return Metrics{}, err
		}

		if err := l.CheckPoints(len(child.Outline.Points), len(child.Outline.Contours)); err != nil {
			return Metrics{}, err
		}
		pointOffset := len(l.Current.Outline.Points)

		transformed := make([]fixedmath.Vector, len(child.Outline.Points))
		for i, p := range child.Outline.Points {
			transformed[i] = transform.Apply(p)
		}

		var delta fixedmath.Vector
		if xyValues {
			// dx/dy are in whatever linear unit the caller's outlines
			// already use (FUnits pre-scale for driver/truetype, pixel
			// F26Dot6 for a driver that scales before compositing);
			// AssembleComposite never rescales them, only offsets and
			// transforms. FlagRoundXYToGrid rounds to the nearest whole
			// unit in that same space, which in integer FUnit space (no
			// fractional bits) is a no-op; a driver working in true
			// F26Dot6 pixels would round via F26Dot6.Round before calling
			// AssembleComposite's loadChild.
			delta = fixedmath.Vector{X: fixedmath.F26Dot6(dx), Y: fixedmath.F26Dot6(dy)}
		} else {
			// Point matching: align point arg1 of base[..P] with point
			// arg2 of the new (already-transformed) component, per
			// spec.md §4.D step 3.
			if arg1 >= pointOffset || arg2 >= len(transformed) {
				return Metrics{}, errcode.New("loader.AssembleComposite", errcode.InvalidComposite)
			}
			delta = l.Current.Outline.Points[arg1].Sub(transformed[arg2])
		}
		for _, p := range transformed {
			l.Current.Outline.Points = append(l.Current.Outline.Points, p.Add(delta))
		}
		l.Current.Outline.Tags = append(l.Current.Outline.Tags, child.Outline.Tags...)
		for _, end := range child.Outline.Contours {
			l.Current.Outline.Contours = append(l.Current.Outline.Contours, end+uint16(pointOffset))
		}
		recordArg1, recordArg2 := dx, dy
		if !xyValues {
			recordArg1, recordArg2 = int32(arg1), int32(arg2)
		}
		l.Current.SubGlyphs = append(l.Current.SubGlyphs, SubGlyph{
			Index: childIndex, Flags: flags, Arg1: recordArg1, Arg2: recordArg2, Transform: transform,
		})

		if flags&FlagUseMyMetrics != 0 {
			metrics = childMetrics
		}
		if flags&FlagMoreComponents == 0 {
			break
		}
	}
	return metrics, nil
}
