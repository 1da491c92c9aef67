package admm

import (
	"math"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/sparsechol"
	"gonum.org/v1/gonum/mat"
)

// Options configures one ADMM run. Zero-value fields are replaced by
// DefaultOptions' defaults in New.
type Options struct {
	MaxIterations int
	Rho           float64
	Alpha         float64
	AbsTol        float64
	RelTol        float64
	Logger        graphoptim.Logger
}

// DefaultOptions returns MaxIterations=1000, Rho=1, Alpha=1 (no
// over-relaxation), AbsTol=1e-4, RelTol=1e-2.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 1000,
		Rho:           1.0,
		Alpha:         1.0,
		AbsTol:        1e-4,
		RelTol:        1e-2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Rho <= 0 {
		o.Rho = d.Rho
	}
	if o.Alpha <= 0 {
		o.Alpha = d.Alpha
	}
	if o.AbsTol <= 0 {
		o.AbsTol = d.AbsTol
	}
	if o.RelTol <= 0 {
		o.RelTol = d.RelTol
	}
	return o
}

// Solver solves min_x ‖Ax − b‖₁ for the fixed sparse A wrapped by sys.
type Solver struct {
	sys  *sparsechol.System
	opts Options
	rows int
	cols int
}

// New constructs a Solver over sys, pre-computing and factorizing AᵀA
// once. It fails if the factor is singular.
func New(sys *sparsechol.System, opts Options) (*Solver, error) {
	if err := sys.AnalyzePattern(); err != nil {
		return nil, err
	}
	if status, err := sys.Factorize(nil); status != sparsechol.StatusSuccess {
		return nil, err
	}
	rows, cols := sys.Dims()
	return &Solver{sys: sys, opts: opts.withDefaults(), rows: rows, cols: cols}, nil
}

// Solve runs ADMM to approximately minimize ‖Ax − b‖₁ and overwrites x
// with the result. x's incoming contents are not read: z and u start at
// zero and the first x-update depends only on b, z and u. It returns
// whether the iteration converged within the
// configured tolerances; reaching MaxIterations without converging is not
// an error, the last iterate is still returned in x.
func (s *Solver) Solve(b *mat.VecDense, x *mat.VecDense) (converged bool, err error) {
	z := mat.NewVecDense(s.rows, nil)
	u := mat.NewVecDense(s.rows, nil)

	rho := s.opts.Rho
	alpha := s.opts.Alpha
	epsAbs := s.opts.AbsTol
	epsRel := s.opts.RelTol

	for iter := 0; iter < s.opts.MaxIterations; iter++ {
		rhs := mat.NewVecDense(s.rows, nil)
		rhs.AddVec(b, z)
		rhs.SubVec(rhs, u)
		atRhs := s.sys.MulAT(rhs)

		xNew, status, ferr := s.sys.Solve(atRhs)
		if status != sparsechol.StatusSuccess {
			return false, ferr
		}
		x.CopyVec(xNew)

		ax := s.sys.MulA(x)

		zb := mat.NewVecDense(s.rows, nil)
		zb.AddVec(z, b)

		yhat := mat.NewVecDense(s.rows, nil)
		yhat.ScaleVec(1-alpha, zb)
		yhat.AddScaledVec(yhat, alpha, ax)

		zOld := mat.VecDenseCopyOf(z)

		arg := mat.NewVecDense(s.rows, nil)
		arg.SubVec(yhat, b)
		arg.AddVec(arg, u)
		shrink(z, arg, 1/rho)

		du := mat.NewVecDense(s.rows, nil)
		du.SubVec(yhat, z)
		du.SubVec(du, b)
		u.AddVec(u, du)

		primalRes := mat.NewVecDense(s.rows, nil)
		primalRes.SubVec(ax, z)
		primalRes.SubVec(primalRes, b)
		primalNorm := vecNorm(primalRes)

		dz := mat.NewVecDense(s.rows, nil)
		dz.SubVec(z, zOld)
		dualRes := s.sys.MulAT(dz)
		dualRes.ScaleVec(rho, dualRes)
		dualNorm := vecNorm(dualRes)

		epsPrimal := math.Sqrt(float64(s.rows))*epsAbs + epsRel*maxNorm(ax, z, b)
		atU := s.sys.MulAT(u)
		atU.ScaleVec(rho, atU)
		epsDual := math.Sqrt(float64(s.cols))*epsAbs + epsRel*vecNorm(atU)

		graphoptim.LogInfo(s.opts.Logger, "admm iter=%d primal=%g dual=%g", iter, primalNorm, dualNorm)

		if primalNorm < epsPrimal && dualNorm < epsDual {
			return true, nil
		}
	}
	return false, nil
}

// shrink applies the elementwise soft-threshold shrink(v, kappa) =
// sign(v)*max(|v|-kappa, 0) from arg into dst.
func shrink(dst, arg *mat.VecDense, kappa float64) {
	n := arg.Len()
	for i := 0; i < n; i++ {
		v := arg.AtVec(i)
		mag := math.Abs(v) - kappa
		if mag < 0 {
			dst.SetVec(i, 0)
			continue
		}
		if v < 0 {
			dst.SetVec(i, -mag)
		} else {
			dst.SetVec(i, mag)
		}
	}
}

func vecNorm(v mat.Vector) float64 {
	sum := 0.0
	for i := 0; i < v.Len(); i++ {
		a := v.AtVec(i)
		sum += a * a
	}
	return math.Sqrt(sum)
}

func maxNorm(vs ...mat.Vector) float64 {
	max := 0.0
	for _, v := range vs {
		if n := vecNorm(v); n > max {
			max = n
		}
	}
	return max
}
