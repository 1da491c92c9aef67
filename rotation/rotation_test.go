package rotation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func vecEqual(t *testing.T, name string, got, want Vector, tol float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(got.X, want.X, tol) ||
		!scalar.EqualWithinAbs(got.Y, want.Y, tol) ||
		!scalar.EqualWithinAbs(got.Z, want.Z, tol) {
		t.Errorf("%s: got %+v, want %+v", name, got, want)
	}
}

func TestToFromMatrixRoundTrip(t *testing.T) {
	cases := []Vector{
		{X: 0, Y: 0, Z: 0},
		{X: math.Pi / 6, Y: 0, Z: 0},
		{X: 0, Y: math.Pi / 4, Z: 0},
		{X: 0, Y: 0, Z: math.Pi / 3},
		{X: 0.3, Y: -0.2, Z: 0.5},
	}
	for _, v := range cases {
		m := ToMatrix(v)
		got := FromMatrix(m)
		vecEqual(t, "round trip", got, v, 1e-8)
	}
}

func TestFromMatrixNearPi(t *testing.T) {
	// A π rotation about the x-axis.
	v := Vector{X: math.Pi, Y: 0, Z: 0}
	m := ToMatrix(v)
	got := FromMatrix(m)
	if math.Abs(r3.Norm(got)-math.Pi) > 1e-6 {
		t.Fatalf("expected angle π, got %v", r3.Norm(got))
	}
}

func TestComposeIdentity(t *testing.T) {
	v := Vector{X: 0.1, Y: 0.2, Z: 0.3}
	got := Compose(v, Zero)
	vecEqual(t, "compose with identity", got, v, tol)
	got = Compose(Zero, v)
	vecEqual(t, "identity compose", got, v, tol)
}

func TestComposeInverseIsIdentity(t *testing.T) {
	v := Vector{X: 0.4, Y: -0.1, Z: 0.2}
	got := Compose(v, Inverse(v))
	vecEqual(t, "compose inverse", got, Zero, 1e-7)
}

func TestNormalizeRange(t *testing.T) {
	v := Vector{X: 4 * math.Pi, Y: 0, Z: 0}
	got := Normalize(v)
	if r3.Norm(got) > math.Pi+1e-9 {
		t.Fatalf("normalized angle %v exceeds π", r3.Norm(got))
	}
}

func TestApplyIncrementMatchesCompose(t *testing.T) {
	base := Vector{X: 0.2, Y: 0.1, Z: -0.1}
	delta := Vector{X: 0.01, Y: -0.02, Z: 0.03}
	vecEqual(t, "apply increment", ApplyIncrement(base, delta), Compose(base, delta), tol)
}
