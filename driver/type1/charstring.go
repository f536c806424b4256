package type1

import (
	"math"

	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
)

// Type 1 charstring operators, named after the Adobe Type 1 Font Format's
// Appendix B operator table; generalized from driver/cff's t2op table to
// this format's narrower, non-hinted operator set (no hintmask, no
// implicit width-from-stack-parity — Type 1 sets width explicitly via
// hsbw/sbw, always the charstring's first operator).
type t1op uint16

const (
	t1hstem      t1op = 1
	t1vstem      t1op = 3
	t1vmoveto    t1op = 4
	t1rlineto    t1op = 5
	t1hlineto    t1op = 6
	t1vlineto    t1op = 7
	t1rrcurveto  t1op = 8
	t1closepath  t1op = 9
	t1callsubr   t1op = 10
	t1return     t1op = 11
	t1hsbw       t1op = 13
	t1endchar    t1op = 14
	t1rmoveto    t1op = 21
	t1hmoveto    t1op = 22
	t1vhcurveto  t1op = 30
	t1hvcurveto  t1op = 31

	t1dotsection     t1op = 0x0c00
	t1vstem3         t1op = 0x0c01
	t1hstem3         t1op = 0x0c02
	t1seac           t1op = 0x0c06
	t1sbw            t1op = 0x0c07
	t1div            t1op = 0x0c0c
	t1callothersubr  t1op = 0x0c10
	t1pop            t1op = 0x0c11
	t1setcurrentpoint t1op = 0x0c21
)

const maxCallDepth = 10

// charstringContext carries the per-glyph subroutine table a callsubr can
// reach, one per Font (shared read-only across every glyph), the Type 1
// analogue of driver/cff's charstringContext.
type charstringContext struct {
	subrs [][]byte
}

// t1interp holds one charstring's execution state: the operand stack,
// current pen position, outline accumulator, and the small "PostScript
// operand stack" callothersubr/pop use to pass flex and hint-replacement
// results back into the charstring's own stack.
type t1interp struct {
	ctx *charstringContext
	l   *loader.Loader

	stack []float64

	x, y  float64
	width float64

	contourOpen bool
	depth       int

	psStack []float64

	flexActive bool
	flexPoints []fixedmath.Vector
	flexStartX float64
	flexStartY float64
}

func (s *t1interp) clearStack() { s.stack = s.stack[:0] }

func (s *t1interp) closeContour() {
	if !s.contourOpen {
		return
	}
	s.l.Current.Outline.Contours = append(s.l.Current.Outline.Contours, uint16(len(s.l.Current.Outline.Points)-1))
	s.contourOpen = false
}

func designVector(x, y float64) fixedmath.Vector {
	return fixedmath.Vector{X: fixedmath.F26Dot6(math.Round(x)), Y: fixedmath.F26Dot6(math.Round(y))}
}

func (s *t1interp) moveTo(dx, dy float64) error {
	s.x += dx
	s.y += dy
	if s.flexActive {
		s.flexPoints = append(s.flexPoints, designVector(s.x, s.y))
		return nil
	}
	s.closeContour()
	if err := s.l.CheckPoints(1, 1); err != nil {
		return err
	}
	s.l.Current.Outline.Points = append(s.l.Current.Outline.Points, designVector(s.x, s.y))
	s.l.Current.Outline.Tags = append(s.l.Current.Outline.Tags, outline.TagOnCurve)
	s.contourOpen = true
	return nil
}

func (s *t1interp) lineTo(dx, dy float64) error {
	s.x += dx
	s.y += dy
	if err := s.l.CheckPoints(1, 0); err != nil {
		return err
	}
	s.l.Current.Outline.Points = append(s.l.Current.Outline.Points, designVector(s.x, s.y))
	s.l.Current.Outline.Tags = append(s.l.Current.Outline.Tags, outline.TagOnCurve)
	return nil
}

func (s *t1interp) curveTo(dxa, dya, dxb, dyb, dxc, dyc float64) error {
	xa, ya := s.x+dxa, s.y+dya
	xb, yb := xa+dxb, ya+dyb
	s.x, s.y = xb+dxc, yb+dyc
	if err := s.l.CheckPoints(3, 0); err != nil {
		return err
	}
	s.l.Current.Outline.Points = append(s.l.Current.Outline.Points,
		designVector(xa, ya), designVector(xb, yb), designVector(s.x, s.y))
	s.l.Current.Outline.Tags = append(s.l.Current.Outline.Tags,
		outline.TagCubic, outline.TagCubic, outline.TagOnCurve)
	return nil
}

// endFlex turns the 7 reference points collected since "0 1
// callothersubr" into the two cubic curves they represent (point 0 is a
// reference point with no curve meaning, points 1-6 are the two curves'
// control/end points), per the Adobe flex convention's OtherSubr 0.
func (s *t1interp) endFlex() error {
	if len(s.flexPoints) != 7 {
		return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
	}
	p := s.flexPoints
	start := designVector(s.flexStartX, s.flexStartY)
	// The flex rmoveto's advanced the current point to p[6]; the curves
	// are drawn from where the flex began.
	s.x, s.y = s.flexStartX, s.flexStartY
	if err := s.curveTo(
		float64(p[1].X-start.X), float64(p[1].Y-start.Y),
		float64(p[2].X-p[1].X), float64(p[2].Y-p[1].Y),
		float64(p[3].X-p[2].X), float64(p[3].Y-p[2].Y)); err != nil {
		return err
	}
	if err := s.curveTo(
		float64(p[4].X-p[3].X), float64(p[4].Y-p[3].Y),
		float64(p[5].X-p[4].X), float64(p[5].Y-p[4].Y),
		float64(p[6].X-p[5].X), float64(p[6].Y-p[5].Y)); err != nil {
		return err
	}
	s.flexActive = false
	s.flexPoints = s.flexPoints[:0]
	return nil
}

func decodeCharString(ctx *charstringContext, l *loader.Loader, code []byte) (advance float64, err error) {
	s := &t1interp{ctx: ctx, l: l}
	if err := s.run(code); err != nil {
		return 0, err
	}
	s.closeContour()
	return s.width, nil
}

func (s *t1interp) run(code []byte) error {
	s.depth++
	if s.depth > maxCallDepth {
		return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
	}
	defer func() { s.depth-- }()

	for len(code) > 0 {
		b0 := code[0]

		switch {
		case b0 >= 32 && b0 <= 246:
			s.stack = append(s.stack, float64(int32(b0)-139))
			code = code[1:]
			continue
		case b0 >= 247 && b0 <= 250:
			if len(code) < 2 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			s.stack = append(s.stack, float64(int32(b0)*256+int32(code[1])+(108-247*256)))
			code = code[2:]
			continue
		case b0 >= 251 && b0 <= 254:
			if len(code) < 2 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			s.stack = append(s.stack, float64(-int32(b0)*256-int32(code[1])-(108-251*256)))
			code = code[2:]
			continue
		case b0 == 255:
			if len(code) < 5 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			v := int32(code[1])<<24 | int32(code[2])<<16 | int32(code[3])<<8 | int32(code[4])
			s.stack = append(s.stack, float64(v))
			code = code[5:]
			continue
		}

		op := t1op(b0)
		if op == 12 {
			if len(code) < 2 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			op = op<<8 | t1op(code[1])
			code = code[2:]
		} else {
			code = code[1:]
		}

		switch op {
		case t1hsbw:
			if len(s.stack) < 2 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			s.x = s.stack[0]
			s.width = s.stack[1]
			s.clearStack()
		case t1sbw:
			if len(s.stack) < 4 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			s.x, s.y = s.stack[0], s.stack[1]
			s.width = s.stack[2]
			s.clearStack()

		case t1rmoveto:
			if len(s.stack) >= 2 {
				if err := s.moveTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1hmoveto:
			if len(s.stack) >= 1 {
				if err := s.moveTo(s.stack[0], 0); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1vmoveto:
			if len(s.stack) >= 1 {
				if err := s.moveTo(0, s.stack[0]); err != nil {
					return err
				}
			}
			s.clearStack()

		case t1rlineto:
			if len(s.stack) >= 2 {
				if err := s.lineTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1hlineto:
			if len(s.stack) >= 1 {
				if err := s.lineTo(s.stack[0], 0); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1vlineto:
			if len(s.stack) >= 1 {
				if err := s.lineTo(0, s.stack[0]); err != nil {
					return err
				}
			}
			s.clearStack()

		case t1rrcurveto:
			if len(s.stack) >= 6 {
				if err := s.curveTo(s.stack[0], s.stack[1], s.stack[2], s.stack[3], s.stack[4], s.stack[5]); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1vhcurveto:
			if len(s.stack) >= 4 {
				if err := s.curveTo(0, s.stack[0], s.stack[1], s.stack[2], s.stack[3], 0); err != nil {
					return err
				}
			}
			s.clearStack()
		case t1hvcurveto:
			if len(s.stack) >= 4 {
				if err := s.curveTo(s.stack[0], 0, s.stack[1], s.stack[2], 0, s.stack[3]); err != nil {
					return err
				}
			}
			s.clearStack()

		case t1closepath:
			s.clearStack()

		case t1hstem, t1vstem, t1dotsection, t1vstem3, t1hstem3:
			// Hints carry no meaning for this driver (no hinter), consumed
			// purely to clear the operand stack between path operators.
			s.clearStack()

		case t1div:
			k := len(s.stack) - 2
			if k < 0 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			s.stack[k] /= s.stack[k+1]
			s.stack = s.stack[:k+1]

		case t1callothersubr:
			if err := s.doCallOtherSubr(); err != nil {
				return err
			}
		case t1pop:
			if len(s.psStack) > 0 {
				k := len(s.psStack) - 1
				s.stack = append(s.stack, s.psStack[k])
				s.psStack = s.psStack[:k]
			} else {
				s.stack = append(s.stack, 0)
			}
		case t1setcurrentpoint:
			// s.x/s.y are already authoritative (maintained incrementally
			// by every moveTo/lineTo/curveTo); the two operands here just
			// echo values this driver already tracked internally.
			s.clearStack()

		case t1callsubr:
			k := len(s.stack) - 1
			if k < 0 {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			idx := int(s.stack[k])
			s.stack = s.stack[:k]
			if idx < 0 || idx >= len(s.ctx.subrs) || s.ctx.subrs[idx] == nil {
				return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
			}
			if err := s.run(s.ctx.subrs[idx]); err != nil {
				return err
			}

		case t1return:
			return nil

		case t1seac:
			// Old-style accent composition: deliberately unsupported, the
			// same scope line driver/cff draws for Type 2's 4-operand
			// endchar — no font in the pack exercises it, and it needs a
			// StandardEncoding code->name table this driver doesn't carry.
			return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)

		case t1endchar:
			return nil

		default:
			return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
		}
	}
	return nil
}

// doCallOtherSubr implements just enough of the PostScript
// callothersubr/pop protocol to support OtherSubrs 0-3 (flex and hint
// replacement), the only ones any real Type 1 font generator emits;
// anything else is passed through by echoing its arguments back onto the
// PostScript stack unchanged, the common lenient-interpreter fallback.
func (s *t1interp) doCallOtherSubr() error {
	k := len(s.stack) - 2
	if k < 0 {
		return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
	}
	n := int(s.stack[k])
	othersubr := int(s.stack[k+1])
	if n < 0 || n > k {
		return errcode.New("type1.decodeCharString", errcode.InvalidType1Table)
	}
	args := append([]float64{}, s.stack[k-n:k]...)
	s.stack = s.stack[:k-n]

	switch othersubr {
	case 1: // start flex
		s.flexActive = true
		s.flexPoints = s.flexPoints[:0]
		s.flexStartX, s.flexStartY = s.x, s.y
	case 2: // flex reference point marker, between each of the 7 rmoveto's
	case 0: // end flex
		if err := s.endFlex(); err != nil {
			return err
		}
		s.psStack = append(s.psStack, s.y, s.x)
	case 3: // hint replacement: echo the subr number back for "pop callsubr"
		s.psStack = append(s.psStack, args...)
	default:
		for i := len(args) - 1; i >= 0; i-- {
			s.psStack = append(s.psStack, args[i])
		}
	}
	return nil
}
