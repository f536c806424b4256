package fixedmath

import "testing"

func absF26(x F26Dot6) F26Dot6 {
	if x < 0 {
		return -x
	}
	return x
}

func TestVectorRotatePreservesLength(t *testing.T) {
	v := Vector{X: 100 << 6, Y: 40 << 6}
	want := VectorLength(v)
	for _, angle := range []F16Dot16{0, 30 << 16, 90 << 16, 179 << 16, -45 << 16} {
		got := VectorLength(VectorRotate(v, angle))
		if d := absF26(got - want); d > 2 {
			t.Errorf("angle %v: length changed from %v to %v (diff %v)", angle, want, got, d)
		}
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Matrix{XX: One16 * 2, XY: One16 / 4, YX: -One16 / 8, YY: One16 * 3 / 2}
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	v := Vector{X: 10 << 6, Y: -7 << 6}
	got := inv.Apply(m.Apply(v))
	if d := absF26(got.X - v.X); d > 2 {
		t.Errorf("X round trip off by %v", d)
	}
	if d := absF26(got.Y - v.Y); d > 2 {
		t.Errorf("Y round trip off by %v", d)
	}
}

func TestMatrixSingularNotInvertible(t *testing.T) {
	m := Matrix{} // all zero, determinant 0
	if _, ok := m.Invert(); ok {
		t.Fatal("zero matrix should not be invertible")
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	v := Vector{X: 5 << 6, Y: 9 << 6}
	delta := Vector{X: 3 << 6, Y: -2 << 6}
	got := v.Add(delta).Sub(delta)
	if got != v {
		t.Errorf("translate round trip: got %v, want %v", got, v)
	}
}
