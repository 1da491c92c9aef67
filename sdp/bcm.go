package sdp

import (
	"context"
	"time"

	graphoptim "github.com/PeterZs/GraphOptim"
	"gonum.org/v1/gonum/mat"
)

// bcmSolver is the row-by-row block coordinate descent core shared by
// RBRBCM (rank fixed at 3) and RankDeficientBCM (rank configurable,
// typically < numViews).
//
// Each outer iteration visits every view in turn and replaces its d×3
// column block with the orthogonal Procrustes solution against the
// weighted sum of its neighbors' current blocks, holding every other
// block fixed — a Gauss-Seidel sweep over the SDP's block variables.
type bcmSolver struct {
	opts Options
	rank int

	numViews int
	r        *mat.SymDense
	adj      [][]int

	y *mat.Dense

	summary Summary
}

func newBCM(opts Options, rank int) *bcmSolver {
	return &bcmSolver{opts: opts, rank: rank}
}

func (s *bcmSolver) SetCovariance(r *mat.SymDense) {
	s.r = r
	s.numViews = r.SymmetricDim() / 3
}

func (s *bcmSolver) SetAdjacentEdges(adj [][]int) { s.adj = adj }

func (s *bcmSolver) GetSolution() *mat.Dense { return s.y }

func (s *bcmSolver) Summary() Summary { return s.summary }

func (s *bcmSolver) Solve(ctx context.Context) error {
	if s.r == nil {
		return graphoptim.InvalidInputf("sdp: covariance not set")
	}
	if s.adj == nil {
		return graphoptim.InvalidInputf("sdp: adjacency not set")
	}
	start := time.Now()

	s.y = initialStiefelStack(s.rank, s.numViews)

	converged := false
	iter := 0
	for ; iter < s.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		maxStep := 0.0
		for i := 0; i < s.numViews; i++ {
			old := columnBlock(s.y, i)
			updated, err := procrustesUpdate(s.r, s.adj, s.y, i, s.rank)
			if err != nil {
				return err
			}
			setColumnBlock(s.y, i, updated)
			if step := frobeniusDiff(updated, old); step > maxStep {
				maxStep = step
			}
		}

		graphoptim.LogInfo(s.opts.Logger, "sdp bcm iter=%d rank=%d max_step=%g", iter, s.rank, maxStep)

		if maxStep < s.opts.Tolerance {
			converged = true
			iter++
			break
		}
	}

	s.summary = Summary{Iterations: iter, Converged: converged, Elapsed: time.Since(start)}
	return nil
}

// procrustesUpdate solves the local orthogonal Procrustes problem for
// view i's column block: maximize tr(Yiᵀ Gi) subject to Yiᵀ Yi = I3,
// where Gi is the sum of neighbor blocks weighted by the covariance
// matrix. The closed-form solution is U Vᵀ from the (thin) SVD Gi = U Σ
// Vᵀ.
func procrustesUpdate(r mat.Symmetric, adj [][]int, y *mat.Dense, i, rank int) (*mat.Dense, error) {
	g := mat.NewDense(rank, 3, nil)
	for _, j := range adj[i] {
		if j == i {
			continue
		}
		rij := block(r, i, j)
		yj := columnBlock(y, j)
		var contrib mat.Dense
		contrib.Mul(yj, rij.T())
		g.Add(g, &contrib)
	}

	var svd mat.SVD
	if !svd.Factorize(g, mat.SVDThin) {
		return nil, graphoptim.NumericalFailure("sdp: Procrustes SVD")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	result := mat.NewDense(rank, 3, nil)
	result.Mul(&u, v.T())
	return result, nil
}

// initialStiefelStack builds a d×3V starting point by stacking the
// identity's first 3 columns of a d-dimensional frame for every view: each
// view's block starts as the first 3 columns of the d×d identity (orthonormal
// columns by construction, the cheapest deterministic Stiefel-feasible
// start available without pulling in a random-number dependency).
func initialStiefelStack(rank, numViews int) *mat.Dense {
	y := mat.NewDense(rank, 3*numViews, nil)
	for i := 0; i < numViews; i++ {
		for b := 0; b < 3; b++ {
			y.Set(b, 3*i+b, 1)
		}
	}
	return y
}
