package dualrotation

import (
	"math"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"gonum.org/v1/gonum/graph/spectral"
	"gonum.org/v1/gonum/mat"
)

// computeErrorBound reports the a-posteriori bound on the worst-case
// per-view rotation error of the SDP relaxation:
//
//	α_max = 2·arcsin(√(0.25 + λ₂/(2·d_max)) − 0.5)
//
// where λ₂ is the second-smallest eigenvalue of the (unweighted) view
// graph Laplacian — the smallest is always 0 for a connected graph, so
// λ₂ is the second entry of EigenSym's ascending Values() — and d_max is
// the maximum vertex degree.
func computeErrorBound(adj *viewgraph.Adjacency, numViews int) (float64, error) {
	ug := adj.ToGonumUndirected()
	laplacian := spectral.NewLaplacian(ug)

	sym, ok := laplacian.Matrix.(mat.Symmetric)
	if !ok {
		return 0, graphoptim.NumericalFailure("dualrotation: laplacian is not symmetric")
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return 0, graphoptim.NumericalFailure("dualrotation: laplacian eigendecomposition")
	}
	values := eig.Values(nil)
	if len(values) < 2 {
		return 0, graphoptim.InvalidInputf("dualrotation: fewer than 2 views (%d)", numViews)
	}
	lambda2 := values[1]

	dMax := adj.MaxDegree()
	if dMax == 0 {
		return 0, graphoptim.InvalidInputf("dualrotation: view graph has no edges")
	}

	inner := 0.25 + lambda2/(2*float64(dMax))
	if inner < 0 {
		inner = 0
	}
	arg := math.Sqrt(inner) - 0.5
	arg = clamp(arg, -1, 1)
	return 2 * math.Asin(arg), nil
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
