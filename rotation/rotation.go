package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector is an axis-angle rotation vector: direction is the rotation axis,
// magnitude is the rotation angle in radians.
type Vector = r3.Vec

// Zero is the identity rotation.
var Zero = Vector{}

// Normalize wraps v's angle into (-π, π], preserving its axis.
func Normalize(v Vector) Vector {
	theta := r3.Norm(v)
	if theta == 0 {
		return Vector{}
	}
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	wrapped -= math.Pi
	// math.Mod with the above shift maps theta into [-π, π); a value that
	// lands exactly on -π is folded to π so the result lies in (-π, π] as
	// the contract promises.
	if wrapped <= -math.Pi {
		wrapped = math.Pi
	}
	return r3.Scale(wrapped/theta, v)
}

// ToMatrix converts an axis-angle vector to its 3×3 rotation matrix via the
// Rodrigues formula R = I + sin(θ)K + (1-cos θ)K², where K is the
// skew-symmetric cross-product matrix of the unit rotation axis.
func ToMatrix(v Vector) *mat.Dense {
	theta := r3.Norm(v)
	r := mat.NewDense(3, 3, nil)
	if theta < 1e-12 {
		r.Set(0, 0, 1)
		r.Set(1, 1, 1)
		r.Set(2, 2, 1)
		return r
	}
	axis := r3.Scale(1/theta, v)
	sin, cos := math.Sincos(theta)

	k := mat.NewDense(3, 3, []float64{
		0, -axis.Z, axis.Y,
		axis.Z, 0, -axis.X,
		-axis.Y, axis.X, 0,
	})
	var k2 mat.Dense
	k2.Mul(k, k)

	r.Set(0, 0, 1)
	r.Set(1, 1, 1)
	r.Set(2, 2, 1)
	r.Add(r, scaled(k, sin))
	r.Add(r, scaled(&k2, 1-cos))
	return r
}

func scaled(m mat.Matrix, s float64) *mat.Dense {
	var d mat.Dense
	d.Scale(s, m)
	return &d
}

// FromMatrix recovers the axis-angle vector of a 3×3 rotation matrix.
func FromMatrix(r mat.Matrix) Vector {
	trace := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cosTheta := (trace - 1) / 2
	cosTheta = clamp(cosTheta, -1, 1)
	theta := math.Acos(cosTheta)

	if theta < 1e-9 {
		return Vector{}
	}

	if math.Pi-theta < 1e-6 {
		// Near the π singularity sin(θ)≈0: the skew-symmetric part of R
		// vanishes, so the axis is recovered from the symmetric part
		// R+I = 2·axis·axisᵀ instead.
		axis := Vector{
			X: math.Sqrt(math.Max(0, (r.At(0, 0)+1)/2)),
			Y: math.Sqrt(math.Max(0, (r.At(1, 1)+1)/2)),
			Z: math.Sqrt(math.Max(0, (r.At(2, 2)+1)/2)),
		}
		// Fix signs using the off-diagonal terms.
		if r.At(0, 1)+r.At(1, 0) < 0 {
			axis.Y = -axis.Y
		}
		if r.At(0, 2)+r.At(2, 0) < 0 {
			axis.Z = -axis.Z
		}
		if r.At(1, 2)+r.At(2, 1) < 0 && axis.Y*axis.Z > 0 {
			axis.Z = -axis.Z
		}
		return r3.Scale(theta/r3.Norm(axis), axis)
	}

	sin2 := 2 * math.Sin(theta)
	axis := Vector{
		X: (r.At(2, 1) - r.At(1, 2)) / sin2,
		Y: (r.At(0, 2) - r.At(2, 0)) / sin2,
		Z: (r.At(1, 0) - r.At(0, 1)) / sin2,
	}
	return r3.Scale(theta, axis)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Compose returns the axis-angle of the rotation matrix product Ra·Rb,
// i.e. "apply b, then a".
func Compose(a, b Vector) Vector {
	var m mat.Dense
	m.Mul(ToMatrix(a), ToMatrix(b))
	return Normalize(FromMatrix(&m))
}

// Inverse returns the axis-angle of the inverse rotation. Negating an
// axis-angle vector is only valid for vectors already normalized to
// (-π, π]; inputs must be pre-normalized (see Design Notes, Open Questions).
func Inverse(a Vector) Vector {
	return r3.Scale(-1, Normalize(a))
}

// ApplyIncrement composes a tangent-space increment delta onto base on the
// manifold: base·exp(delta). This is the only way estimator state may be
// updated; rotations are never perturbed component-wise.
func ApplyIncrement(base, delta Vector) Vector {
	return Compose(base, delta)
}
