package msmath

import "testing"

func TestAddSub(t *testing.T) {
	const tol = 1e-6
	p := Vec{X: 1, Y: 2, Z: 3}
	q := Vec{X: 4, Y: 5, Z: 6}
	sum := Add(p, q)
	if !EqualElem(sum, Vec{X: 5, Y: 7, Z: 9}, tol) {
		t.Errorf("Add: got %v", sum)
	}
	diff := Sub(sum, q)
	if !EqualElem(diff, p, tol) {
		t.Errorf("Sub: want %v, got %v", p, diff)
	}
}

func TestScale(t *testing.T) {
	const tol = 1e-6
	got := Scale(2, Vec{X: 1, Y: -1, Z: 0.5})
	want := Vec{X: 2, Y: -2, Z: 1}
	if !EqualElem(got, want, tol) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestNorm(t *testing.T) {
	const tol = 1e-6
	got := Norm(Vec{X: 3, Y: 4, Z: 0})
	if got < 5-tol || got > 5+tol {
		t.Errorf("want 5, got %v", got)
	}
}

func TestUnit(t *testing.T) {
	const tol = 1e-6
	got := Unit(Vec{X: 0, Y: 0, Z: 0})
	if !EqualElem(got, Vec{}, tol) {
		t.Errorf("Unit of zero vector: want zero, got %v", got)
	}
	got = Unit(Vec{X: 10, Y: 0, Z: 0})
	want := Vec{X: 1, Y: 0, Z: 0}
	if !EqualElem(got, want, tol) {
		t.Errorf("want %v, got %v", want, got)
	}
}
