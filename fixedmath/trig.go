package fixedmath

// This file implements the trig contract from SPEC_FULL.md section 4.B: a
// CORDIC-style rotation using a small table of arctangents of
// negative-power-of-two angles, giving 1/65536 accuracy with 24 iterations
// as the spec allows. This is the classic fixed-point CORDIC algorithm;
// the teacher repository has no trig implementation of its own (raster/geom.go
// Len/Norm use float64 math directly for vector length, kept as-is above),
// so the rotation table itself is written from the algorithm description
// rather than adapted from a specific file.

const cordicIterations = 24

// cordicAngles[i] = atan(2^-i) in F16Dot16 degrees, populated by init from
// cordicAngleTable below.
var cordicAngles [cordicIterations]F16Dot16

// cordicAngleTable holds atan(2^-i) for i in [0, 24), in F16Dot16 degrees,
// precomputed to avoid a floating point dependency at init time beyond this
// literal table (values match the standard CORDIC constant table).
var cordicAngleTable = [cordicIterations]int32{
	2949120, 1740967, 919879, 466945, 234379, 117304, 58666, 29335,
	14668, 7334, 3667, 1833, 917, 458, 229, 115,
	57, 29, 14, 7, 4, 2, 1, 1,
}

// cordicGainInv is 1/K in F16Dot16, where K is the CORDIC gain constant
// (~1.646760258) accumulated over cordicIterations iterations.
const cordicGainInv F16Dot16 = 39797 // 0.607252935 * 65536, rounded

func init() {
	for i := range cordicAngles {
		cordicAngles[i] = F16Dot16(cordicAngleTable[i])
	}
}

// CosSin returns (cos, sin) of angleDegrees (an F16Dot16 value) as F16Dot16
// fixed-point values in [-65536, 65536].
func CosSin(angleDegrees F16Dot16) (cos, sin F16Dot16) {
	// Reduce to [-180, 180).
	a := int64(angleDegrees) % (360 << 16)
	if a < 0 {
		a += 360 << 16
	}
	if a >= 180<<16 {
		a -= 360 << 16
	}
	// CORDIC rotation only converges for |a| below about 99.9 degrees, so
	// fold the outer quadrants by 180 degrees and negate the result.
	negate := false
	if a > 90<<16 {
		a, negate = a-180<<16, true
	} else if a < -90<<16 {
		a, negate = a+180<<16, true
	}

	x, y, z := int64(cordicGainInv), int64(0), a
	for i := 0; i < cordicIterations; i++ {
		dx, dy := x>>uint(i), y>>uint(i)
		if z >= 0 {
			x, y, z = x-dy, y+dx, z-int64(cordicAngles[i])
		} else {
			x, y, z = x+dy, y-dx, z+int64(cordicAngles[i])
		}
	}
	if negate {
		x, y = -x, -y
	}
	return F16Dot16(x), F16Dot16(y)
}

// Sin returns the sine of angleDegrees.
func Sin(angleDegrees F16Dot16) F16Dot16 { _, s := CosSin(angleDegrees); return s }

// Cos returns the cosine of angleDegrees.
func Cos(angleDegrees F16Dot16) F16Dot16 { c, _ := CosSin(angleDegrees); return c }

// Tan returns the tangent of angleDegrees, or an arbitrarily large value
// near the asymptotes (no error is returned; callers computing on
// near-vertical directions should avoid Tan and use Atan2/CosSin).
func Tan(angleDegrees F16Dot16) F16Dot16 {
	c, s := CosSin(angleDegrees)
	if c == 0 {
		if s >= 0 {
			return 1<<31 - 1
		}
		return -(1<<31 - 1)
	}
	v, err := DivFix(s, c)
	if err != nil {
		return 0
	}
	return v
}

// Atan2 returns the angle, in F16Dot16 degrees in (-180<<16, 180<<16], of
// the vector (x, y), using the same CORDIC vectoring-mode iteration as
// CosSin's rotation mode.
func Atan2(y, x F16Dot16) F16Dot16 {
	if x == 0 && y == 0 {
		return 0
	}
	negX := x < 0
	xi, yi := int64(x), int64(y)
	if negX {
		xi, yi = -xi, -yi
	}
	z := int64(0)
	for i := 0; i < cordicIterations; i++ {
		dx, dy := xi>>uint(i), yi>>uint(i)
		if yi >= 0 {
			xi, yi, z = xi+dy, yi-dx, z+int64(cordicAngles[i])
		} else {
			xi, yi, z = xi-dy, yi+dx, z-int64(cordicAngles[i])
		}
	}
	if negX {
		if z <= 0 {
			z += 180 << 16
		} else {
			z -= 180 << 16
		}
	}
	return F16Dot16(z)
}
