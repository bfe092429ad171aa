package msmath

import "testing"

func TestIdentityMul(t *testing.T) {
	const tol = 1e-6
	id := Identity()
	tr := Translate(Vec{X: 1, Y: 2, Z: 3})
	got := Mul(id, tr)
	if !AlmostEqual(got, tr, tol) {
		t.Errorf("want %v, got %v", tr, got)
	}
}

func TestMulPosition(t *testing.T) {
	const tol = 1e-6
	tr := Translate(Vec{X: 1, Y: 2, Z: 3})
	got := tr.MulPosition(Vec{X: 0, Y: 0, Z: 0})
	want := Vec{X: 1, Y: 2, Z: 3}
	if !EqualElem(got, want, tol) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestInverseIdentity(t *testing.T) {
	const tol = 1e-6
	id := Identity()
	got := id.Inverse()
	if !AlmostEqual(got, id, tol) {
		t.Errorf("inverse of identity should be identity, got %v", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	const tol = 1e-4
	m := Translate(Vec{X: 5, Y: -2, Z: 0.5})
	got := Mul(m, m.Inverse())
	if !AlmostEqual(got, Identity(), tol) {
		t.Errorf("m*inverse(m) should be identity, got %v", got)
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	got := zero.Inverse()
	for i, v := range got.Array() {
		if v == v { // NaN != NaN
			t.Errorf("element %d: want NaN, got %v", i, v)
		}
	}
}

func TestColumn(t *testing.T) {
	m := NewMat4([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	got := m.Column(3)
	want := Vec4{4, 8, 12, 16}
	if got != want {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestAt(t *testing.T) {
	m := NewMat4([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	if got := m.At(2, 3); got != 12 {
		t.Errorf("At(2,3): want 12, got %v", got)
	}
}

func TestAlmostEqual(t *testing.T) {
	a := Identity()
	b := Identity()
	b.x00 += 1e-4
	if AlmostEqual(a, b, 1e-5) {
		t.Error("want not almost-equal at epsilon 1e-5")
	}
	if !AlmostEqual(a, b, 1e-3) {
		t.Error("want almost-equal at epsilon 1e-3")
	}
}

func TestPutArrayRoundTrip(t *testing.T) {
	want := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	m := NewMat4(want[:])
	got := m.Array()
	if got != want {
		t.Errorf("want %v, got %v", want, got)
	}
}
