package dualrotation

import (
	"github.com/PeterZs/GraphOptim/rotation"
	"gonum.org/v1/gonum/mat"
)

// retrieveRotations recovers one axis-angle rotation per view from the
// solver's d×3V factor Y.
//
// When d == 3 (RBRBCM) each column block Y[:, 3i:3i+3] is already a
// candidate 3×3 rotation. When d > 3 (RankDeficientBCM, or
// RiemannianStaircase after escalating), the factor is first projected
// down to its dominant rank-3 subspace via the left singular vectors of
// the full Y — the standard rounding step for low-rank SDP relaxations —
// before the same per-view extraction applies.
func retrieveRotations(y *mat.Dense) []rotation.Vector {
	rank, cols := y.Dims()
	numViews := cols / 3

	reduced := y
	if rank > 3 {
		reduced = reduceToRankThree(y)
	}

	out := make([]rotation.Vector, numViews)
	for i := 0; i < numViews; i++ {
		block := mat.NewDense(3, 3, nil)
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				block.Set(a, b, reduced.At(a, 3*i+b))
			}
		}
		so3 := projectToSO3(block)
		out[i] = rotation.FromMatrix(so3.T())
	}
	return out
}

// reduceToRankThree projects a d×3V factor onto its dominant 3-dimensional
// subspace: U3ᵀY, where U3 holds the top 3 left singular vectors of Y.
func reduceToRankThree(y *mat.Dense) *mat.Dense {
	var svd mat.SVD
	svd.Factorize(y, mat.SVDThin)
	var u mat.Dense
	svd.UTo(&u)

	rank, _ := y.Dims()
	u3 := mat.NewDense(rank, 3, nil)
	for a := 0; a < rank; a++ {
		for b := 0; b < 3; b++ {
			u3.Set(a, b, u.At(a, b))
		}
	}

	var proj mat.Dense
	proj.Mul(u3.T(), y)
	return &proj
}

// projectToSO3 snaps a near-orthogonal 3×3 block onto SO(3): the nearest
// orthogonal matrix via orthogonal Procrustes (U Vᵀ from the SVD), then a
// determinant-sign fixup (negate the whole block if the Procrustes result
// lands in O(3) \ SO(3)).
func projectToSO3(m *mat.Dense) *mat.Dense {
	var svd mat.SVD
	svd.Factorize(m, mat.SVDThin)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&u, v.T())
	if det3(&r) < 0 {
		r.Scale(-1, &r)
	}
	return &r
}

// det3 computes the determinant of a 3×3 matrix by cofactor expansion.
func det3(m *mat.Dense) float64 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}
