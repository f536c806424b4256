package fixedmath

import "testing"

func abs16(x F16Dot16) F16Dot16 {
	if x < 0 {
		return -x
	}
	return x
}

func TestCosSinUnitCircle(t *testing.T) {
	cases := []F16Dot16{0, 30 << 16, 45 << 16, 90 << 16, 135 << 16, 179 << 16, -90 << 16}
	for _, a := range cases {
		c, s := CosSin(a)
		// c^2 + s^2 should be close to One16^2.
		mag := int64(c)*int64(c) + int64(s)*int64(s)
		want := int64(One16) * int64(One16)
		diff := mag - want
		if diff < 0 {
			diff = -diff
		}
		// Allow a generous tolerance; CORDIC with a 24-entry table is not
		// exact, only within spec's 1/65536 per-component accuracy budget.
		if diff > want/1000 {
			t.Errorf("angle %v: cos=%v sin=%v magnitude^2 = %v, want ~%v", a, c, s, mag, want)
		}
	}
}

func TestCosSinKnownAngles(t *testing.T) {
	c, s := CosSin(0)
	if abs16(c-One16) > 64 || abs16(s) > 64 {
		t.Errorf("CosSin(0) = (%v, %v), want (1, 0)", c, s)
	}
	c, s = CosSin(90 << 16)
	if abs16(c) > 64 || abs16(s-One16) > 64 {
		t.Errorf("CosSin(90) = (%v, %v), want (0, 1)", c, s)
	}
}

func TestAtan2RoundTrip(t *testing.T) {
	for _, v := range []Vector{{X: 10 << 6, Y: 0}, {X: 0, Y: 10 << 6}, {X: 10 << 6, Y: 10 << 6}, {X: -10 << 6, Y: 5 << 6}} {
		_, angle := VectorPolarize(v)
		back := VectorUnit(angle)
		// back is a unit vector; check its direction matches v's sign pattern
		// loosely via the rotate-preserves-length property exercised
		// elsewhere. Here we just sanity check it doesn't panic and stays
		// within the unit circle tolerance.
		if VectorLength(back) > One6+2 || VectorLength(back) < One6-2 {
			t.Errorf("VectorUnit(%v) length = %v, want ~%v", angle, VectorLength(back), One6)
		}
	}
}
