package sdp

import (
	"context"
	"time"

	graphoptim "github.com/PeterZs/GraphOptim"
	"gonum.org/v1/gonum/mat"
)

// SolverType selects one of the three interchangeable SDP backends.
type SolverType int

const (
	// RBRBCM is row-by-row block coordinate descent at full rank 3.
	RBRBCM SolverType = iota
	// RankDeficientBCM is the same BCM skeleton restricted to a
	// configurable rank d < 3V.
	RankDeficientBCM
	// RiemannianStaircase escalates rank from 3 upward, running Riemannian
	// gradient descent at each rank and stopping once a dual certificate
	// proves optimality.
	RiemannianStaircase
)

// Summary reports solver progress, returned alongside the solution.
type Summary struct {
	Iterations int
	Converged  bool
	Elapsed    time.Duration
}

// Solver is the capability set shared by every SDP backend: install the
// problem (SetCovariance, SetAdjacentEdges), run it (Solve), and retrieve
// the result (GetSolution, Summary).
type Solver interface {
	// SetCovariance installs the 3V×3V block covariance matrix R whose
	// tr(R YᵀY) the backend maximizes (block (i,j) = R_ijᵀ, block
	// (j,i) = R_ij, zero diagonal blocks).
	SetCovariance(r *mat.SymDense)
	// SetAdjacentEdges installs, for each view's dense index, the dense
	// indices of its neighbors — the same adjacency viewgraph.Adjacency
	// assembles.
	SetAdjacentEdges(adj [][]int)
	// Solve runs the backend to convergence or its iteration cap.
	Solve(ctx context.Context) error
	// GetSolution returns the d×3V solution matrix Y from the most recent
	// Solve call.
	GetSolution() *mat.Dense
	// Summary reports iteration count, convergence, and elapsed time for
	// the most recent Solve call.
	Summary() Summary
}

// Options configures construction of any backend via New.
type Options struct {
	SolverType SolverType
	// Rank is the factor dimension d for RankDeficientBCM (ignored by
	// RBRBCM, which is always rank 3, and by RiemannianStaircase, which
	// always starts at rank 3). Default 5 if < 3.
	Rank int
	// MaxRank caps RiemannianStaircase's rank escalation. Default Rank+10
	// if <= 0.
	MaxRank       int
	MaxIterations int
	Tolerance     float64
	Logger        graphoptim.Logger
}

// DefaultOptions returns RBRBCM with MaxIterations=200, Tolerance=1e-6.
func DefaultOptions() Options {
	return Options{
		SolverType:    RBRBCM,
		MaxIterations: 200,
		Tolerance:     1e-6,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.Rank < 3 {
		o.Rank = 5
	}
	if o.MaxRank <= 0 {
		o.MaxRank = o.Rank + 10
	}
	return o
}

// New constructs the backend named by opts.SolverType.
func New(opts Options) (Solver, error) {
	opts = opts.withDefaults()
	switch opts.SolverType {
	case RBRBCM:
		return newBCM(opts, 3), nil
	case RankDeficientBCM:
		return newBCM(opts, opts.Rank), nil
	case RiemannianStaircase:
		return newStaircase(opts), nil
	default:
		return nil, graphoptim.InvalidInputf("sdp: unknown solver type %d", opts.SolverType)
	}
}

// block extracts the 3×3 submatrix of r at block-row i, block-col j.
func block(r mat.Symmetric, i, j int) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			d.Set(a, b, r.At(3*i+a, 3*j+b))
		}
	}
	return d
}

// setColumnBlock writes a d×3 block into y's columns [3*i, 3*i+3).
func setColumnBlock(y *mat.Dense, i int, col *mat.Dense) {
	rank, _ := col.Dims()
	for a := 0; a < rank; a++ {
		for b := 0; b < 3; b++ {
			y.Set(a, 3*i+b, col.At(a, b))
		}
	}
}

// columnBlock reads the d×3 block at columns [3*i, 3*i+3) of y.
func columnBlock(y *mat.Dense, i int) *mat.Dense {
	rank, _ := y.Dims()
	d := mat.NewDense(rank, 3, nil)
	for a := 0; a < rank; a++ {
		for b := 0; b < 3; b++ {
			d.Set(a, b, y.At(a, 3*i+b))
		}
	}
	return d
}

func frobeniusDiff(a, b *mat.Dense) float64 {
	var diff mat.Dense
	diff.Sub(a, b)
	return mat.Norm(&diff, 2)
}
