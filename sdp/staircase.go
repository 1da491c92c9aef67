package sdp

import (
	"context"
	"time"

	graphoptim "github.com/PeterZs/GraphOptim"
	"gonum.org/v1/gonum/mat"
)

// staircaseSolver implements the Riemannian staircase: starting at rank 3,
// it runs Riemannian gradient descent (QR retraction per view block) to a
// local optimum, then checks a dual certificate built from the current
// iterate. If the certificate does not prove global optimality, rank is
// increased by one (the new row starts at zero) and optimization resumes
// from the escalated point, up to opts.MaxRank.
type staircaseSolver struct {
	opts Options

	numViews int
	r        *mat.SymDense
	adj      [][]int

	y    *mat.Dense
	rank int

	summary Summary
}

func newStaircase(opts Options) *staircaseSolver {
	return &staircaseSolver{opts: opts}
}

func (s *staircaseSolver) SetCovariance(r *mat.SymDense) {
	s.r = r
	s.numViews = r.SymmetricDim() / 3
}

func (s *staircaseSolver) SetAdjacentEdges(adj [][]int) { s.adj = adj }

func (s *staircaseSolver) GetSolution() *mat.Dense { return s.y }

func (s *staircaseSolver) Summary() Summary { return s.summary }

func (s *staircaseSolver) Solve(ctx context.Context) error {
	if s.r == nil {
		return graphoptim.InvalidInputf("sdp: covariance not set")
	}
	if s.adj == nil {
		return graphoptim.InvalidInputf("sdp: adjacency not set")
	}
	start := time.Now()

	rank := 3
	y := initialStiefelStack(rank, s.numViews)

	totalIter := 0
	certified := false
	for {
		var err error
		y, totalIter, err = s.optimizeAtRank(ctx, y, rank, totalIter)
		if err != nil {
			return err
		}

		certified, err = s.checkCertificate(y, rank)
		if err != nil {
			return err
		}
		graphoptim.LogInfo(s.opts.Logger, "sdp staircase rank=%d certified=%t", rank, certified)
		if certified || rank >= s.opts.MaxRank {
			break
		}
		rank++
		y = escalateRank(y, rank)
	}

	s.y = y
	s.rank = rank
	s.summary = Summary{Iterations: totalIter, Converged: certified, Elapsed: time.Since(start)}
	return nil
}

// optimizeAtRank runs Riemannian gradient-ascent sweeps at a fixed rank
// until the per-view step size drops below opts.Tolerance or
// opts.MaxIterations is exhausted, returning the updated iterate and the
// running iteration count.
func (s *staircaseSolver) optimizeAtRank(ctx context.Context, y *mat.Dense, rank, iterOffset int) (*mat.Dense, int, error) {
	const stepSize = 0.1
	iter := iterOffset
	for local := 0; local < s.opts.MaxIterations; local++ {
		if err := ctx.Err(); err != nil {
			return nil, iter, err
		}

		maxStep := 0.0
		for i := 0; i < s.numViews; i++ {
			old := columnBlock(y, i)
			grad := riemannianGradientBlock(s.r, s.adj, y, i, rank)

			var trial mat.Dense
			trial.Scale(stepSize, grad)
			trial.Add(&trial, old)

			retracted := retractQR(&trial)
			setColumnBlock(y, i, retracted)
			if step := frobeniusDiff(retracted, old); step > maxStep {
				maxStep = step
			}
		}
		iter++

		if maxStep < s.opts.Tolerance {
			break
		}
	}
	return y, iter, nil
}

// euclideanGradientBlock returns the unprojected gradient of tr(R YᵀY)
// with respect to view i's column block, up to an immaterial constant
// factor.
func euclideanGradientBlock(r mat.Symmetric, adj [][]int, y *mat.Dense, i, rank int) *mat.Dense {
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
	return g
}

// riemannianGradientBlock projects the Euclidean gradient onto the
// tangent space of view i's Stiefel block at its current point, using the
// canonical-metric projection Y(YᵀG + GᵀY)/2.
func riemannianGradientBlock(r mat.Symmetric, adj [][]int, y *mat.Dense, i, rank int) *mat.Dense {
	g := euclideanGradientBlock(r, adj, y, i, rank)
	yi := columnBlock(y, i)

	var yTg, gTy, sym mat.Dense
	yTg.Mul(yi.T(), g)
	gTy.Mul(g.T(), yi)
	sym.Add(&yTg, &gTy)
	sym.Scale(0.5, &sym)

	var proj mat.Dense
	proj.Mul(yi, &sym)

	var result mat.Dense
	result.Sub(g, &proj)
	return &result
}

// retractQR retracts a d×3 trial point back onto the Stiefel manifold:
// the thin Q factor of its QR factorization has orthonormal columns
// spanning the same subspace.
func retractQR(trial *mat.Dense) *mat.Dense {
	rank, cols := trial.Dims()
	var qr mat.QR
	qr.Factorize(trial)
	var qFull mat.Dense
	qr.QTo(&qFull)

	thin := mat.NewDense(rank, cols, nil)
	for a := 0; a < rank; a++ {
		for b := 0; b < cols; b++ {
			thin.Set(a, b, qFull.At(a, b))
		}
	}
	return thin
}

// escalateRank appends one zero row to y, lifting it from rank to rank+1
// without changing the point it represents (the new coordinate starts at
// zero, so tr(R YᵀY) is unchanged immediately after escalation).
func escalateRank(y *mat.Dense, newRank int) *mat.Dense {
	rank, cols := y.Dims()
	lifted := mat.NewDense(newRank, cols, nil)
	for r := 0; r < rank; r++ {
		for c := 0; c < cols; c++ {
			lifted.Set(r, c, y.At(r, c))
		}
	}
	return lifted
}

// checkCertificate builds the block-diagonal multiplier matrix Λ (each
// 3×3 block Λ_i = sym(Yiᵀ Gi), Gi the unprojected gradient at view i) and
// forms the certificate S = R − Λ. The staircase's current rank-d
// iterate is a certifiably global optimum of the SDP relaxation if S is
// negative semidefinite, checked via the ascending eigenvalues from
// mat.EigenSym.
func (s *staircaseSolver) checkCertificate(y *mat.Dense, rank int) (bool, error) {
	n := 3 * s.numViews
	sym := mat.NewSymDense(n, nil)

	for i := 0; i < s.numViews; i++ {
		yi := columnBlock(y, i)
		g := euclideanGradientBlock(s.r, s.adj, y, i, rank)

		var yTg, gTy, lambda mat.Dense
		yTg.Mul(yi.T(), g)
		gTy.Mul(g.T(), yi)
		lambda.Add(&yTg, &gTy)
		lambda.Scale(0.5, &lambda)

		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				sym.SetSym(3*i+a, 3*i+b, -lambda.At(a, b))
			}
		}
	}

	for i := 0; i < s.numViews; i++ {
		for _, j := range s.adj[i] {
			if j <= i {
				continue
			}
			rij := block(s.r, i, j)
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					v := sym.At(3*i+a, 3*j+b) + rij.At(a, b)
					sym.SetSym(3*i+a, 3*j+b, v)
				}
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false, graphoptim.NumericalFailure("sdp: certificate eigendecomposition")
	}
	values := eig.Values(nil)
	maxEig := values[len(values)-1]
	return maxEig <= s.opts.Tolerance, nil
}
