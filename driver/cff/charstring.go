package cff

import (
	"math"

	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
)

// Type 2 charstring operators, named and numbered after
// seehuhn-go-pdf/font/cff/t2decode.go's t2op constants.
type t2op uint16

const (
	t2hstem      t2op = 0x0001
	t2vstem      t2op = 0x0003
	t2vmoveto    t2op = 0x0004
	t2rlineto    t2op = 0x0005
	t2hlineto    t2op = 0x0006
	t2vlineto    t2op = 0x0007
	t2rrcurveto  t2op = 0x0008
	t2callsubr   t2op = 0x000a
	t2return     t2op = 0x000b
	t2endchar    t2op = 0x000e
	t2hstemhm    t2op = 0x0012
	t2hintmask   t2op = 0x0013
	t2cntrmask   t2op = 0x0014
	t2rmoveto    t2op = 0x0015
	t2hmoveto    t2op = 0x0016
	t2vstemhm    t2op = 0x0017
	t2rcurveline t2op = 0x0018
	t2rlinecurve t2op = 0x0019
	t2vvcurveto  t2op = 0x001a
	t2hhcurveto  t2op = 0x001b
	t2callgsubr  t2op = 0x001d
	t2vhcurveto  t2op = 0x001e
	t2hvcurveto  t2op = 0x001f

	t2and    t2op = 0x0c03
	t2or     t2op = 0x0c04
	t2not    t2op = 0x0c05
	t2abs    t2op = 0x0c09
	t2add    t2op = 0x0c0a
	t2sub    t2op = 0x0c0b
	t2div    t2op = 0x0c0c
	t2neg    t2op = 0x0c0e
	t2eq     t2op = 0x0c0f
	t2drop   t2op = 0x0c12
	t2put    t2op = 0x0c14
	t2get    t2op = 0x0c15
	t2ifelse t2op = 0x0c16
	t2random t2op = 0x0c17
	t2mul    t2op = 0x0c18
	t2sqrt   t2op = 0x0c1a
	t2dup    t2op = 0x0c1b
	t2exch   t2op = 0x0c1c
	t2index  t2op = 0x0c1d
	t2roll   t2op = 0x0c1e
	t2hflex  t2op = 0x0c22
	t2flex   t2op = 0x0c23
	t2hflex1 t2op = 0x0c24
	t2flex1  t2op = 0x0c25
)

// maxCallDepth bounds callsubr/callgsubr recursion, matching the
// teacher's "maximum call stack size exceeded" check in decodeCharString.
const maxCallDepth = 10

// charstringContext carries what a Type 2 charstring needs to resolve
// local/global subroutine calls and the width-parsing defaults from its
// Private DICT, one per Font (shared read-only across every glyph).
type charstringContext struct {
	subrs, gsubrs  index
	defaultWidthX  float64
	nominalWidthX  float64
}

// t2interp holds the mutable state of one charstring's execution: the
// operand stack, current pen position, and the outline being built. It is
// a direct translation of seehuhn-go-pdf/font/cff/t2decode.go's
// decodeCharString closures into named fields, generalized so rMoveTo/
// rLineTo/rCurveTo append straight into an outline.Outline (using
// outline.TagCubic for the two off-curve control points of each cubic
// segment) instead of building an intermediate Glyph{Cmds} list.
type t2interp struct {
	ctx   *charstringContext
	l     *loader.Loader
	stack []float64

	x, y float64

	widthIsSet bool
	width      float64

	contourOpen bool
	depth       int
	numStems    int

	storageSlice []float64
}

func (s *t2interp) clearStack() { s.stack = s.stack[:0] }

func (s *t2interp) setWidth(present bool) {
	if s.widthIsSet {
		return
	}
	if present && len(s.stack) > 0 {
		s.width = s.stack[0] + s.ctx.nominalWidthX
		s.stack = s.stack[1:]
	}
	s.widthIsSet = true
}

// closeContour records the end of the contour currently being built, the
// outline.Outline analogue of the teacher's implicit "next rmoveto starts
// a new path" behavior: Contours records the index of a contour's final
// point, so closing just appends that index.
func (s *t2interp) closeContour() {
	if !s.contourOpen {
		return
	}
	s.l.Current.Outline.Contours = append(s.l.Current.Outline.Contours, uint16(len(s.l.Current.Outline.Points)-1))
	s.contourOpen = false
}

// designVector rounds a charstring-space coordinate pair to the nearest
// whole design unit; Type 2 operands are integers almost everywhere, the
// sole exception being the 16.16 real-number operand (opcode 255) and
// div results, neither of which any driver glyph leans on for sub-unit
// placement.
func designVector(x, y float64) fixedmath.Vector {
	return fixedmath.Vector{
		X: fixedmath.F26Dot6(math.Round(x)),
		Y: fixedmath.F26Dot6(math.Round(y)),
	}
}

func (s *t2interp) moveTo(dx, dy float64) error {
	s.closeContour()
	s.x += dx
	s.y += dy
	if err := s.l.CheckPoints(1, 1); err != nil {
		return err
	}
	s.l.Current.Outline.Points = append(s.l.Current.Outline.Points, designVector(s.x, s.y))
	s.l.Current.Outline.Tags = append(s.l.Current.Outline.Tags, outline.TagOnCurve)
	s.contourOpen = true
	return nil
}

func (s *t2interp) lineTo(dx, dy float64) error {
	s.x += dx
	s.y += dy
	if err := s.l.CheckPoints(1, 0); err != nil {
		return err
	}
	s.l.Current.Outline.Points = append(s.l.Current.Outline.Points, designVector(s.x, s.y))
	s.l.Current.Outline.Tags = append(s.l.Current.Outline.Tags, outline.TagOnCurve)
	return nil
}

func (s *t2interp) curveTo(dxa, dya, dxb, dyb, dxc, dyc float64) error {
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

// getSubr resolves a biased subroutine index per the "Type 2 Charstring
// Format" spec's three-tier bias table, identical to the teacher's
// getSubr/bias helpers.
func getSubr(subrs index, biased int) ([]byte, error) {
	nSubrs := len(subrs)
	var offset int
	switch {
	case nSubrs < 1240:
		offset = 107
	case nSubrs < 33900:
		offset = 1131
	default:
		offset = 32768
	}
	idx := biased + offset
	if idx < 0 || idx >= nSubrs {
		return nil, errcode.New("cff.getSubr", errcode.InvalidCFFTable)
	}
	return subrs[idx], nil
}

// decodeCharString interprets a Type 2 charstring into l.Current, leaving
// l.Base untouched (the caller Adds it once interpretation finishes) so a
// future seac-style composite could Prepare a second component into the
// same Loader the way driver/truetype's loadInto does.
func decodeCharString(ctx *charstringContext, l *loader.Loader, code []byte) (advance float64, err error) {
	s := &t2interp{ctx: ctx, l: l, width: ctx.defaultWidthX}
	if err := s.run(code); err != nil {
		return 0, err
	}
	s.closeContour()
	return s.width, nil
}

func (s *t2interp) run(code []byte) error {
	s.depth++
	if s.depth > maxCallDepth {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	defer func() { s.depth-- }()

	for len(code) > 0 {
		b0 := t2op(code[0])

		switch {
		case b0 >= 32 && b0 <= 246:
			s.stack = append(s.stack, float64(int32(b0)-139))
			code = code[1:]
			continue
		case b0 >= 247 && b0 <= 250:
			if len(code) < 2 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			s.stack = append(s.stack, float64(int32(b0)*256+int32(code[1])+(108-247*256)))
			code = code[2:]
			continue
		case b0 >= 251 && b0 <= 254:
			if len(code) < 2 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			s.stack = append(s.stack, float64(-int32(b0)*256-int32(code[1])-(108-251*256)))
			code = code[2:]
			continue
		case b0 == 28:
			if len(code) < 3 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			s.stack = append(s.stack, float64(int16(code[1])<<8+int16(code[2])))
			code = code[3:]
			continue
		case b0 == 255:
			if len(code) < 5 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			v := int32(code[1])<<24 + int32(code[2])<<16 + int32(code[3])<<8 + int32(code[4])
			s.stack = append(s.stack, float64(v)/65536)
			code = code[5:]
			continue
		}

		op := b0
		if op == 12 {
			if len(code) < 2 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			op = op<<8 | t2op(code[1])
			code = code[2:]
		} else {
			code = code[1:]
		}

		switch op {
		case t2rmoveto:
			s.setWidth(len(s.stack) > 2)
			if len(s.stack) >= 2 {
				if err := s.moveTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
			}
			s.clearStack()
		case t2hmoveto:
			s.setWidth(len(s.stack) > 1)
			if len(s.stack) >= 1 {
				if err := s.moveTo(s.stack[0], 0); err != nil {
					return err
				}
			}
			s.clearStack()
		case t2vmoveto:
			s.setWidth(len(s.stack) > 1)
			if len(s.stack) >= 1 {
				if err := s.moveTo(0, s.stack[0]); err != nil {
					return err
				}
			}
			s.clearStack()

		case t2rlineto:
			for len(s.stack) >= 2 {
				if err := s.lineTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
				s.stack = s.stack[2:]
			}
			s.clearStack()

		case t2hlineto, t2vlineto:
			horiz := op == t2hlineto
			for _, v := range s.stack {
				var err error
				if horiz {
					err = s.lineTo(v, 0)
				} else {
					err = s.lineTo(0, v)
				}
				if err != nil {
					return err
				}
				horiz = !horiz
			}
			s.clearStack()

		case t2rrcurveto, t2rcurveline, t2rlinecurve:
			for op == t2rlinecurve && len(s.stack) >= 8 {
				if err := s.lineTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
				s.stack = s.stack[2:]
			}
			for len(s.stack) >= 6 {
				if err := s.curveTo(s.stack[0], s.stack[1], s.stack[2], s.stack[3], s.stack[4], s.stack[5]); err != nil {
					return err
				}
				s.stack = s.stack[6:]
			}
			if op == t2rcurveline && len(s.stack) >= 2 {
				if err := s.lineTo(s.stack[0], s.stack[1]); err != nil {
					return err
				}
				s.stack = s.stack[2:]
			}
			s.clearStack()

		case t2hhcurveto:
			var dy1 float64
			if len(s.stack)%4 != 0 {
				dy1, s.stack = s.stack[0], s.stack[1:]
			}
			for len(s.stack) >= 4 {
				if err := s.curveTo(s.stack[0], dy1, s.stack[1], s.stack[2], s.stack[3], 0); err != nil {
					return err
				}
				s.stack = s.stack[4:]
				dy1 = 0
			}
			s.clearStack()

		case t2vvcurveto:
			var dx1 float64
			if len(s.stack)%4 != 0 {
				dx1, s.stack = s.stack[0], s.stack[1:]
			}
			for len(s.stack) >= 4 {
				if err := s.curveTo(dx1, s.stack[0], s.stack[1], s.stack[2], 0, s.stack[3]); err != nil {
					return err
				}
				s.stack = s.stack[4:]
				dx1 = 0
			}
			s.clearStack()

		case t2hvcurveto, t2vhcurveto:
			horiz := op == t2hvcurveto
			for len(s.stack) >= 4 {
				var extra float64
				if len(s.stack) == 5 {
					extra = s.stack[4]
				}
				var err error
				if horiz {
					err = s.curveTo(s.stack[0], 0, s.stack[1], s.stack[2], extra, s.stack[3])
				} else {
					err = s.curveTo(0, s.stack[0], s.stack[1], s.stack[2], s.stack[3], extra)
				}
				if err != nil {
					return err
				}
				s.stack = s.stack[4:]
				horiz = !horiz
			}
			s.clearStack()

		case t2flex:
			if len(s.stack) >= 13 {
				if err := s.curveTo(s.stack[0], s.stack[1], s.stack[2], s.stack[3], s.stack[4], s.stack[5]); err != nil {
					return err
				}
				if err := s.curveTo(s.stack[6], s.stack[7], s.stack[8], s.stack[9], s.stack[10], s.stack[11]); err != nil {
					return err
				}
			}
			s.clearStack()
		case t2flex1:
			if len(s.stack) >= 11 {
				if err := s.curveTo(s.stack[0], s.stack[1], s.stack[2], s.stack[3], s.stack[4], s.stack[5]); err != nil {
					return err
				}
				extra := s.stack[10]
				dx := s.stack[0] + s.stack[2] + s.stack[4] + s.stack[6] + s.stack[8]
				dy := s.stack[1] + s.stack[3] + s.stack[5] + s.stack[7] + s.stack[9]
				var err error
				if math.Abs(dx) > math.Abs(dy) {
					err = s.curveTo(s.stack[6], s.stack[7], s.stack[8], s.stack[9], extra, 0)
				} else {
					err = s.curveTo(s.stack[6], s.stack[7], s.stack[8], s.stack[9], 0, extra)
				}
				if err != nil {
					return err
				}
			}
			s.clearStack()
		case t2hflex:
			if len(s.stack) >= 7 {
				if err := s.curveTo(s.stack[0], 0, s.stack[1], s.stack[2], s.stack[3], 0); err != nil {
					return err
				}
				if err := s.curveTo(s.stack[4], 0, s.stack[5], -s.stack[2], s.stack[6], 0); err != nil {
					return err
				}
			}
			s.clearStack()
		case t2hflex1:
			if len(s.stack) >= 9 {
				if err := s.curveTo(s.stack[0], s.stack[1], s.stack[2], s.stack[3], s.stack[4], 0); err != nil {
					return err
				}
				dy := s.stack[1] + s.stack[3] + s.stack[7]
				if err := s.curveTo(s.stack[5], 0, s.stack[6], s.stack[7], s.stack[8], -dy); err != nil {
					return err
				}
			}
			s.clearStack()

		case t2hstem, t2hstemhm, t2vstem, t2vstemhm:
			// Stem hints are consumed for width/operand-count purposes
			// only; this driver has no hinter and outline.Outline carries
			// no stem-hint fields, matching driver/truetype's scope
			// (hinting instructions are likewise skipped, not executed).
			s.setWidth(len(s.stack)%2 == 1)
			s.numStems += len(s.stack) / 2
			s.clearStack()

		case t2hintmask, t2cntrmask:
			s.setWidth(len(s.stack)%2 == 1)
			// Operands still on the stack here are an implicit vstem
			// declaration ("if hstem and vstem hints are both declared at
			// the beginning ... the vstem hint operator need not be
			// included"), so they count toward the running stem total
			// before the mask width is computed.
			s.numStems += len(s.stack) / 2
			s.clearStack()
			k := (s.numStems + 7) / 8
			if k > len(code) {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			code = code[k:]

		case t2abs, t2neg, t2sqrt, t2drop, t2exch, t2dup, t2not:
			if err := s.unaryOp(op); err != nil {
				return err
			}
		case t2add, t2sub, t2div, t2mul, t2and, t2or, t2eq:
			if err := s.binaryOp(op); err != nil {
				return err
			}
		case t2random:
			s.stack = append(s.stack, 0.618) // deterministic stand-in; no driver glyph depends on true randomness
		case t2index:
			if err := s.doIndex(); err != nil {
				return err
			}
		case t2roll:
			if err := s.doRoll(); err != nil {
				return err
			}
		case t2put:
			if err := s.doPut(); err != nil {
				return err
			}
		case t2get:
			if err := s.doGet(); err != nil {
				return err
			}
		case t2ifelse:
			if err := s.doIfelse(); err != nil {
				return err
			}

		case t2callsubr, t2callgsubr:
			k := len(s.stack) - 1
			if k < 0 {
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			biased := int(s.stack[k])
			s.stack = s.stack[:k]
			var subrCode []byte
			var err error
			if op == t2callsubr {
				subrCode, err = getSubr(s.ctx.subrs, biased)
			} else {
				subrCode, err = getSubr(s.ctx.gsubrs, biased)
			}
			if err != nil {
				return err
			}
			if err := s.run(subrCode); err != nil {
				return err
			}

		case t2return:
			return nil

		case t2endchar:
			s.setWidth(len(s.stack) == 1 || len(s.stack) > 4)
			if len(s.stack) >= 4 {
				// Old-style seac accent composition (adx ady bchar achar):
				// not supported by this driver. No glyph in the pack's
				// fonts exercises it and adding standard-encoding-name
				// resolution for it is out of scope; surface a clear
				// error rather than silently dropping the accent.
				return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
			}
			return nil

		default:
			return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
		}
	}
	return nil
}

func (s *t2interp) unaryOp(op t2op) error {
	k := len(s.stack) - 1
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	switch op {
	case t2abs:
		if s.stack[k] < 0 {
			s.stack[k] = -s.stack[k]
		}
	case t2neg:
		s.stack[k] = -s.stack[k]
	case t2sqrt:
		s.stack[k] = math.Sqrt(s.stack[k])
	case t2not:
		if s.stack[k] == 0 {
			s.stack[k] = 1
		} else {
			s.stack[k] = 0
		}
	case t2drop:
		s.stack = s.stack[:k]
	case t2dup:
		s.stack = append(s.stack, s.stack[k])
	case t2exch:
		if k < 1 {
			return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
		}
		s.stack[k-1], s.stack[k] = s.stack[k], s.stack[k-1]
	}
	return nil
}

func (s *t2interp) binaryOp(op t2op) error {
	k := len(s.stack) - 2
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	switch op {
	case t2add:
		s.stack[k] += s.stack[k+1]
	case t2sub:
		s.stack[k] -= s.stack[k+1]
	case t2div:
		s.stack[k] /= s.stack[k+1]
	case t2mul:
		s.stack[k] *= s.stack[k+1]
	case t2and:
		v := 0.0
		if s.stack[k] != 0 && s.stack[k+1] != 0 {
			v = 1
		}
		s.stack[k] = v
	case t2or:
		v := 0.0
		if s.stack[k] != 0 || s.stack[k+1] != 0 {
			v = 1
		}
		s.stack[k] = v
	case t2eq:
		v := 0.0
		if s.stack[k] == s.stack[k+1] {
			v = 1
		}
		s.stack[k] = v
	}
	s.stack = s.stack[:k+1]
	return nil
}

func (s *t2interp) doIndex() error {
	k := len(s.stack) - 1
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	idx := int(s.stack[k])
	if idx < 0 {
		idx = 0
	}
	if k-idx-1 < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	s.stack[k] = s.stack[k-idx-1]
	return nil
}

func (s *t2interp) doRoll() error {
	k := len(s.stack) - 2
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	n := int(s.stack[k])
	j := int(s.stack[k+1])
	if n <= 0 || n > k {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	rollFloats(s.stack[k-n:k], j)
	s.stack = s.stack[:k]
	return nil
}

func rollFloats(data []float64, j int) {
	n := len(data)
	if n == 0 {
		return
	}
	j = ((j % n) + n) % n
	tmp := make([]float64, j)
	copy(tmp, data[n-j:])
	copy(data[j:], data[:n-j])
	copy(data[:j], tmp)
}

func (s *t2interp) doPut() error {
	k := len(s.stack) - 2
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	m := int(s.stack[k+1])
	if m < 0 || m >= 32 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	s.setStorage(m, s.stack[k])
	s.stack = s.stack[:k]
	return nil
}

func (s *t2interp) doGet() error {
	k := len(s.stack) - 1
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	m := int(s.stack[k])
	if m < 0 || m >= 32 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	s.stack[k] = s.getStorage(m)
	return nil
}

func (s *t2interp) doIfelse() error {
	k := len(s.stack) - 4
	if k < 0 {
		return errcode.New("cff.decodeCharString", errcode.InvalidCFFTable)
	}
	v := s.stack[k+1]
	if s.stack[k+2] <= s.stack[k+3] {
		v = s.stack[k]
	}
	s.stack = append(s.stack[:k], v)
	return nil
}

// storageSlice backs the put/get transient-memory operators, allocated
// lazily since most charstrings never use them.
func (s *t2interp) setStorage(i int, v float64) {
	if s.storageSlice == nil {
		s.storageSlice = make([]float64, 32)
	}
	s.storageSlice[i] = v
}
func (s *t2interp) getStorage(i int) float64 {
	if s.storageSlice == nil {
		return 0
	}
	return s.storageSlice[i]
}
