package dualrotation

import (
	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"gonum.org/v1/gonum/mat"
)

// buildCovariance assembles the 3V×3V symmetric block covariance matrix:
// block (i, j) holds R_ijᵀ. Because (R_ijᵀ)ᵀ = R_ij, writing only the
// (i, j) block through SymDense.SetSym automatically mirrors the
// required R_ij into block (j, i), so a single float64 write covers both
// halves of the symmetric-by-construction matrix.
func buildCovariance(ix *viewgraph.Index, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation) *mat.SymDense {
	n := 3 * ix.NumViews()
	r := mat.NewSymDense(n, nil)

	for key, meas := range pairs {
		i, _ := ix.IndexOf(key.I)
		j, _ := ix.IndexOf(key.J)
		rij := rotation.ToMatrix(meas.Rotation)

		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				r.SetSym(3*i+a, 3*j+b, rij.At(b, a))
			}
		}
	}
	return r
}
