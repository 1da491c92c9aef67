package l1rotation

import (
	"context"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/admm"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/sparsechol"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"gonum.org/v1/gonum/mat"
)

// Options configures the L1 global estimator.
type Options struct {
	ADMM   admm.Options
	Logger graphoptim.Logger
}

// Estimator is the L1 global rotation estimator. A zero-value Estimator is
// not usable; construct with New.
type Estimator struct {
	opts Options

	ix        *viewgraph.Index
	sys       *sparsechol.System
	edgeOrder []graphoptim.ViewPairKey
	lastB     *mat.VecDense
}

// New constructs an L1 Estimator.
func New(opts Options) *Estimator {
	return &Estimator{opts: opts}
}

// SetViewIDToIndex installs a pre-built view index, skipping the index
// build step in EstimateRotations, so a caller can reuse an index built
// by an earlier stage.
func (e *Estimator) SetViewIDToIndex(ix *viewgraph.Index) { e.ix = ix }

// SetSparseMatrix installs a pre-built sparse system (and the edge
// ordering it was assembled with), skipping the assembly step in
// EstimateRotations.
func (e *Estimator) SetSparseMatrix(sys *sparsechol.System, edgeOrder []graphoptim.ViewPairKey) {
	e.sys = sys
	e.edgeOrder = edgeOrder
}

// Index returns the view index built (or installed) by the most recent
// EstimateRotations call, for reuse by a subsequent refinement stage.
func (e *Estimator) Index() *viewgraph.Index { return e.ix }

// System returns the sparse system built (or installed) by the most
// recent EstimateRotations call, for reuse by a subsequent refinement
// stage.
func (e *Estimator) System() *sparsechol.System { return e.sys }

// EdgeOrder returns the deterministic edge ordering used to assemble the
// sparse system.
func (e *Estimator) EdgeOrder() []graphoptim.ViewPairKey { return e.edgeOrder }

// EstimateRotations solves the L1 relative-rotation system and updates
// global in place. It returns (false, err) on numerical failure and
// (converged, nil) otherwise; a false converged with a nil error means
// ADMM hit its iteration cap without meeting tolerance, which is not an
// error (see the package error-handling design).
func (e *Estimator) EstimateRotations(ctx context.Context, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, global graphoptim.GlobalRotations) (bool, error) {
	if len(pairs) == 0 {
		return false, graphoptim.InvalidInputf("view_pairs is empty")
	}

	if e.ix == nil {
		ix, err := viewgraph.BuildIndex(pairs)
		if err != nil {
			return false, err
		}
		e.ix = ix
	}
	if err := validateGlobalRotations(e.ix, global); err != nil {
		return false, err
	}

	if e.sys == nil {
		edgeOrder, aCSR, b, err := sparsechol.BuildRelativeRotationA(e.ix, pairs)
		if err != nil {
			return false, err
		}
		e.edgeOrder = edgeOrder
		e.sys = sparsechol.NewSystem(aCSR)
		e.lastB = b
	}
	if e.lastB == nil {
		_, _, b, err := sparsechol.BuildRelativeRotationA(e.ix, pairs)
		if err != nil {
			return false, err
		}
		e.lastB = b
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	solver, err := admm.New(e.sys, e.opts.ADMM)
	if err != nil {
		return false, err
	}

	_, cols := e.sys.Dims()
	x := mat.NewVecDense(cols, nil)
	converged, err := solver.Solve(e.lastB, x)
	if err != nil {
		graphoptim.LogError(e.opts.Logger, "l1rotation: admm solve failed: %v", err)
		return false, err
	}
	if !converged {
		graphoptim.LogInfo(e.opts.Logger, "l1rotation: admm reached iteration cap without converging")
	}

	applyUpdate(e.ix, global, x)
	return converged, nil
}

// validateGlobalRotations checks that global has an entry for every view
// named in ix.
func validateGlobalRotations(ix *viewgraph.Index, global graphoptim.GlobalRotations) error {
	for i := 0; i < ix.NumViews(); i++ {
		id := ix.ViewAt(i)
		if _, ok := global[id]; !ok {
			return graphoptim.InvalidInputf("global_rotations missing entry for view %d", id)
		}
	}
	return nil
}

// applyUpdate writes the solved reduced vector x back into global: each
// non-anchor view's column block of x is composed on-manifold onto its
// current rotation.
func applyUpdate(ix *viewgraph.Index, global graphoptim.GlobalRotations, x *mat.VecDense) {
	for i := 0; i < ix.NumViews(); i++ {
		if i == ix.Anchor {
			continue
		}
		col := i
		if i > ix.Anchor {
			col = i - 1
		}
		delta := rotation.Vector{
			X: x.AtVec(3 * col),
			Y: x.AtVec(3*col + 1),
			Z: x.AtVec(3*col + 2),
		}
		id := ix.ViewAt(i)
		global[id] = rotation.ApplyIncrement(global[id], delta)
	}
}
