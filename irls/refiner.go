package irls

import (
	"context"
	"math"
	"runtime"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/sparsechol"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Options configures the IRLS refiner.
type Options struct {
	MaxIterations            int
	Sigma                    float64
	StepConvergenceThreshold float64
	NumThreads               int
	Logger                   graphoptim.Logger
}

// DefaultOptions returns MaxIterations=100, Sigma=5° (in radians),
// StepConvergenceThreshold=1e-3, NumThreads=runtime.NumCPU().
func DefaultOptions() Options {
	return Options{
		MaxIterations:            100,
		Sigma:                    5 * math.Pi / 180,
		StepConvergenceThreshold: 1e-3,
		NumThreads:               runtime.NumCPU(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Sigma <= 0 {
		o.Sigma = d.Sigma
	}
	if o.StepConvergenceThreshold <= 0 {
		o.StepConvergenceThreshold = d.StepConvergenceThreshold
	}
	if o.NumThreads <= 0 {
		o.NumThreads = d.NumThreads
	}
	return o
}

// Refiner is the IRLS local refiner.
type Refiner struct {
	opts Options

	ix        *viewgraph.Index
	sys       *sparsechol.System
	edgeOrder []graphoptim.ViewPairKey
}

// New constructs a Refiner.
func New(opts Options) *Refiner {
	return &Refiner{opts: opts.withDefaults()}
}

// SetViewIDToIndex installs a pre-built view index, used by the hybrid
// driver to reuse state from the initializing estimator.
func (r *Refiner) SetViewIDToIndex(ix *viewgraph.Index) { r.ix = ix }

// SetSparseMatrix installs a pre-built sparse system and its edge
// ordering, used by the hybrid driver to reuse state from the
// initializing estimator.
func (r *Refiner) SetSparseMatrix(sys *sparsechol.System, edgeOrder []graphoptim.ViewPairKey) {
	r.sys = sys
	r.edgeOrder = edgeOrder
}

// EstimateRotations refines global in place by IRLS. It returns
// (converged, nil) on success — converged is false, with no error, if
// MaxIterations is reached before the average step size drops below
// StepConvergenceThreshold — and (false, err) on numerical failure.
func (r *Refiner) EstimateRotations(ctx context.Context, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, global graphoptim.GlobalRotations) (bool, error) {
	if len(pairs) == 0 {
		return false, graphoptim.InvalidInputf("view_pairs is empty")
	}

	if r.ix == nil {
		ix, err := viewgraph.BuildIndex(pairs)
		if err != nil {
			return false, err
		}
		r.ix = ix
	}
	if err := validateGlobalRotations(r.ix, global); err != nil {
		return false, err
	}

	if r.sys == nil {
		edgeOrder, aCSR, _, err := sparsechol.BuildRelativeRotationA(r.ix, pairs)
		if err != nil {
			return false, err
		}
		r.edgeOrder = edgeOrder
		r.sys = sparsechol.NewSystem(aCSR)
		if err := r.sys.AnalyzePattern(); err != nil {
			return false, err
		}
	}

	measurements := make([]graphoptim.RelativeRotation, len(r.edgeOrder))
	for i, k := range r.edgeOrder {
		measurements[i] = pairs[k]
	}

	nEdges := len(r.edgeOrder)
	sigma2 := r.opts.Sigma * r.opts.Sigma

	for iter := 0; iter < r.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		residual := mat.NewVecDense(3*nEdges, nil)
		weights := make([]float64, 3*nEdges)

		if err := computeResidualsAndWeights(ctx, r.ix, r.edgeOrder, measurements, global, r.opts.NumThreads, sigma2, residual, weights); err != nil {
			return false, err
		}

		status, err := r.sys.Factorize(weights)
		if status != sparsechol.StatusSuccess {
			return false, err
		}

		weightedResidual := mat.NewVecDense(3*nEdges, nil)
		for i := 0; i < 3*nEdges; i++ {
			weightedResidual.SetVec(i, weights[i]*residual.AtVec(i))
		}
		rhs := r.sys.MulAT(weightedResidual)

		delta, status, err := r.sys.Solve(rhs)
		if status != sparsechol.StatusSuccess {
			return false, err
		}

		stepSum := applyDeltas(r.ix, global, delta)
		avgStep := stepSum / float64(r.ix.NumViews())

		graphoptim.LogInfo(r.opts.Logger, "irls iter=%d avg_step=%g", iter, avgStep)

		if avgStep < r.opts.StepConvergenceThreshold {
			return true, nil
		}
	}
	return false, nil
}

// computeResidualsAndWeights fills residual and weights for every edge in
// parallel; each edge writes to a disjoint 3-slice of both, so no
// synchronization beyond the fan-out/fan-in is needed.
func computeResidualsAndWeights(ctx context.Context, ix *viewgraph.Index, edgeOrder []graphoptim.ViewPairKey, measurements []graphoptim.RelativeRotation, global graphoptim.GlobalRotations, numThreads int, sigma2 float64, residual *mat.VecDense, weights []float64) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(numThreads)

	for e := range edgeOrder {
		e := e
		g.Go(func() error {
			key := edgeOrder[e]
			meas := measurements[e]

			ri := global[key.I]
			rj := global[key.J]

			// e_ij = (-r_j) ∘ r_ij ∘ r_i
			resid := rotation.Compose(rotation.Compose(rotation.Inverse(rj), meas.Rotation), ri)

			base := 3 * e
			residual.SetVec(base+0, resid.X)
			residual.SetVec(base+1, resid.Y)
			residual.SetVec(base+2, resid.Z)

			normSq := resid.X*resid.X + resid.Y*resid.Y + resid.Z*resid.Z
			weight := sigmaWeight(normSq, sigma2)
			weights[base+0] = weight
			weights[base+1] = weight
			weights[base+2] = weight
			return nil
		})
	}
	return g.Wait()
}

// sigmaWeight implements w_e = σ / (‖e‖² + σ²)², the soft-ℓ½ robust
// loss weight, kept as-is rather than swapped for a Huber or
// Geman-McClure derivative.
func sigmaWeight(normSq, sigma2 float64) float64 {
	sigma := math.Sqrt(sigma2)
	denom := normSq + sigma2
	return sigma / (denom * denom)
}

func validateGlobalRotations(ix *viewgraph.Index, global graphoptim.GlobalRotations) error {
	for i := 0; i < ix.NumViews(); i++ {
		id := ix.ViewAt(i)
		if _, ok := global[id]; !ok {
			return graphoptim.InvalidInputf("global_rotations missing entry for view %d", id)
		}
	}
	return nil
}

// applyDeltas composes each non-anchor view's solved tangent increment
// onto its current rotation and returns the sum (not yet averaged) of
// increment magnitudes.
func applyDeltas(ix *viewgraph.Index, global graphoptim.GlobalRotations, delta *mat.VecDense) float64 {
	sum := 0.0
	for i := 0; i < ix.NumViews(); i++ {
		if i == ix.Anchor {
			continue
		}
		col := i
		if i > ix.Anchor {
			col = i - 1
		}
		d := rotation.Vector{
			X: delta.AtVec(3 * col),
			Y: delta.AtVec(3*col + 1),
			Z: delta.AtVec(3*col + 2),
		}
		id := ix.ViewAt(i)
		global[id] = rotation.ApplyIncrement(global[id], d)
		sum += math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
	}
	return sum
}
