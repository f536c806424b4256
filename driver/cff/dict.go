package cff

import "github.com/inkwell-labs/corefont/errcode"

// dictOp identifies a Top/Private DICT operator, single-byte operators
// taking their own value and two-byte (12 xx) "escape" operators taking
// 0x0c00+xx, per seehuhn-go-pdf/font/cff's dictOp numbering.
type dictOp uint16

const (
	opCharset       dictOp = 15
	opEncoding      dictOp = 16
	opCharStrings   dictOp = 17
	opPrivate       dictOp = 18
	opSubrs         dictOp = 19
	opDefaultWidthX dictOp = 20
	opNominalWidthX dictOp = 21
	opROS           dictOp = 0x0c1e
	opFDArray       dictOp = 0x0c24
	opFDSelect      dictOp = 0x0c25
	opCharstringType dictOp = 0x0c06
)

// dict is a decoded Top or Private DICT: operator -> numeric operand
// list. Every operator this driver reads (CharStrings, Private, Subrs,
// widths, FDArray/FDSelect, ROS) takes only integer/real operands, so
// unlike the teacher's cffDict this never needs to carry string (SID)
// operands.
type dict map[dictOp][]float64

// decodeDict parses a Top or Private DICT's byte-packed operator/operand
// stream, a direct adaptation of seehuhn-go-pdf/font/cff's decodeDict
// restricted to the numeric-operand subset this driver's operator set
// needs.
func decodeDict(buf []byte) (dict, error) {
	res := dict{}
	var stack []float64
	for len(buf) > 0 {
		b0 := buf[0]
		switch {
		case b0 == 12:
			if len(buf) < 2 {
				return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
			}
			res[dictOp(b0)<<8|dictOp(buf[1])] = stack
			stack = nil
			buf = buf[2:]
		case b0 <= 21:
			res[dictOp(b0)] = stack
			stack = nil
			buf = buf[1:]
		case b0 == 28:
			if len(buf) < 3 {
				return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
			}
			stack = append(stack, float64(int16(uint16(buf[1])<<8|uint16(buf[2]))))
			buf = buf[3:]
		case b0 == 29:
			if len(buf) < 5 {
				return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
			}
			v := int32(uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4]))
			stack = append(stack, float64(v))
			buf = buf[5:]
		case b0 == 30:
			rest, v, err := decodeReal(buf[1:])
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)
			buf = rest
		case b0 >= 32 && b0 <= 246:
			stack = append(stack, float64(int32(b0)-139))
			buf = buf[1:]
		case b0 >= 247 && b0 <= 250:
			if len(buf) < 2 {
				return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
			}
			stack = append(stack, float64(int32(b0)*256+int32(buf[1])+(108-247*256)))
			buf = buf[2:]
		case b0 >= 251 && b0 <= 254:
			if len(buf) < 2 {
				return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
			}
			stack = append(stack, float64(-int32(b0)*256-int32(buf[1])-(108-251*256)))
			buf = buf[2:]
		default:
			return nil, errcode.New("cff.decodeDict", errcode.InvalidCFFTable)
		}
	}
	return res, nil
}

// decodeReal decodes a packed BCD real number (operator 30's operand
// encoding), returning the unread remainder of buf.
func decodeReal(buf []byte) ([]byte, float64, error) {
	var s []byte
	first := true
	var next byte
	for {
		var nibble byte
		if first {
			if len(buf) == 0 {
				return nil, 0, errcode.New("cff.decodeReal", errcode.InvalidCFFTable)
			}
			next, buf = buf[0], buf[1:]
			nibble, next = next>>4, next&0x0f
			first = false
		} else {
			nibble = next
			first = true
		}
		switch nibble {
		case 0xa:
			s = append(s, '.')
		case 0xb:
			s = append(s, 'e')
		case 0xc:
			s = append(s, 'e', '-')
		case 0xe:
			s = append(s, '-')
		case 0xf:
			return buf, parseFloatOrZero(string(s)), nil
		case 0xd:
			return nil, 0, errcode.New("cff.decodeReal", errcode.InvalidCFFTable)
		default:
			s = append(s, '0'+nibble)
		}
	}
}

func parseFloatOrZero(s string) float64 {
	var v float64
	var sign float64 = 1
	var seenDot bool
	var frac float64 = 0.1
	if len(s) > 0 && s[0] == '-' {
		sign = -1
		s = s[1:]
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			if seenDot {
				v += float64(c-'0') * frac
				frac /= 10
			} else {
				v = v*10 + float64(c-'0')
			}
		case c == '.':
			seenDot = true
		default:
			return sign * v // 'e'/'e-' exponent forms aren't emitted by any operand this driver reads
		}
	}
	return sign * v
}

func (d dict) getInt(op dictOp, def int) int {
	v, ok := d[op]
	if !ok || len(v) != 1 {
		return def
	}
	return int(v[0])
}

func (d dict) getPair(op dictOp) (int, int, bool) {
	v, ok := d[op]
	if !ok || len(v) != 2 {
		return 0, 0, false
	}
	return int(v[0]), int(v[1]), true
}
