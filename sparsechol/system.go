package sparsechol

import (
	"math"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Status is the outcome of a factorization or solve.
type Status int

const (
	// StatusSuccess means the operation completed normally.
	StatusSuccess Status = iota
	// StatusNumericalFailure means the underlying matrix was singular or
	// indefinite; the caller must abort the enclosing solve.
	StatusNumericalFailure
)

// System is a sparse SPD-normal-equations system with a fixed nonzero
// pattern: A is built once from the view graph's topology, AnalyzePattern
// is called once, and Factorize is called once per outer iteration to
// refresh numeric values (edge weights change; the graph does not).
type System struct {
	a        *sparse.CSR
	rows     int
	cols     int
	analyzed bool
	chol     mat.Cholesky
	factored bool
}

// NewSystem wraps a sparse A matrix (rows = 3E, cols = 3(V-1)) assembled
// from the view graph. The matrix is not copied; callers must not mutate
// the underlying COO triplets after conversion.
func NewSystem(a *sparse.CSR) *System {
	r, c := a.Dims()
	return &System{a: a, rows: r, cols: c}
}

// Dims reports the dimensions of the wrapped A matrix.
func (s *System) Dims() (rows, cols int) { return s.rows, s.cols }

// AnalyzePattern checks that A is non-empty and marks the system ready for
// Factorize. It must be called once before the first Factorize. It stores
// no sparsity pattern or elimination order: every Factorize call forms the
// dense AᵀWA and factors it from scratch.
func (s *System) AnalyzePattern() error {
	if s.rows == 0 || s.cols == 0 {
		return graphoptim.InvalidInputf("sparsechol: empty system (%d x %d)", s.rows, s.cols)
	}
	s.analyzed = true
	return nil
}

// MulA computes A*x.
func (s *System) MulA(x mat.Vector) *mat.VecDense {
	dst := mat.NewVecDense(s.rows, nil)
	dst.MulVec(s.a, x)
	return dst
}

// MulAT computes Aᵀ*y.
func (s *System) MulAT(y mat.Vector) *mat.VecDense {
	dst := mat.NewVecDense(s.cols, nil)
	dst.MulVec(s.a.T(), y)
	return dst
}

// Factorize refreshes the numeric Cholesky factor of the weighted normal
// equations AᵀWA, where W = diag(weights). A nil weights slice is treated
// as the identity weight (plain AᵀA, the ADMM use case); IRLS passes the
// current per-row robust weights.
//
// AnalyzePattern must have been called first; Factorize panics otherwise,
// the same contract violation gonum's own mat.Cholesky enforces for use
// before a successful Factorize.
func (s *System) Factorize(weights []float64) (Status, error) {
	if !s.analyzed {
		panic("sparsechol: Factorize called before AnalyzePattern")
	}

	gram := s.weightedGram(weights)
	ok := s.chol.Factorize(gram)
	if !ok {
		s.factored = false
		return StatusNumericalFailure, graphoptim.NumericalFailure("sparse Cholesky factorize")
	}
	s.factored = true
	return StatusSuccess, nil
}

// weightedGram computes AᵀWA as a dense symmetric matrix by row-scaling A
// with sqrt(weights) and forming BᵀB, so a single non-negative weight
// vector is enough to keep the Gram matrix symmetric positive
// semi-definite without materializing a diagonal weight matrix.
func (s *System) weightedGram(weights []float64) *mat.SymDense {
	dense := mat.NewDense(s.rows, s.cols, nil)
	dense.CloneFrom(s.a)
	if weights != nil {
		for i := 0; i < s.rows; i++ {
			scale := sqrtNonNeg(weights[i])
			for j := 0; j < s.cols; j++ {
				dense.Set(i, j, dense.At(i, j)*scale)
			}
		}
	}

	gram := mat.NewSymDense(s.cols, nil)
	gram.SymOuterK(1, dense.T())
	return gram
}

func sqrtNonNeg(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Solve returns the solution x of (AᵀWA) x = b against the most recent
// successful Factorize.
func (s *System) Solve(b *mat.VecDense) (*mat.VecDense, Status, error) {
	if !s.factored {
		panic("sparsechol: Solve called before a successful Factorize")
	}
	x := mat.NewVecDense(s.cols, nil)
	if err := s.chol.SolveVecTo(x, b); err != nil {
		return nil, StatusNumericalFailure, graphoptim.NumericalFailure("sparse Cholesky solve")
	}
	return x, StatusSuccess, nil
}
