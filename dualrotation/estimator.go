package dualrotation

import (
	"context"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/sdp"
	"github.com/PeterZs/GraphOptim/viewgraph"
)

// Options configures the Lagrange-dual estimator.
type Options struct {
	SDP    sdp.Options
	Logger graphoptim.Logger
}

// Estimator is the Lagrange-dual (SDP) global rotation estimator.
type Estimator struct {
	opts Options

	ix  *viewgraph.Index
	adj *viewgraph.Adjacency

	lastErrorBound float64
}

// New constructs a dual-rotation Estimator.
func New(opts Options) *Estimator {
	return &Estimator{opts: opts}
}

// SetViewIDToIndex installs a pre-built view index, used by the hybrid
// driver to reuse state across stages.
func (e *Estimator) SetViewIDToIndex(ix *viewgraph.Index) { e.ix = ix }

// Index returns the view index built (or installed) by the most recent
// EstimateRotations call, for reuse by a subsequent refinement stage.
func (e *Estimator) Index() *viewgraph.Index { return e.ix }

// ErrorBound returns the a-posteriori α_max bound computed by the most
// recent EstimateRotations call.
func (e *Estimator) ErrorBound() float64 { return e.lastErrorBound }

// EstimateRotations solves the SDP relaxation and updates global in
// place with the recovered, gauge-fixed rotations. It returns
// (false, err) on numerical failure and (converged, nil) otherwise;
// converged reflects the underlying sdp.Solver's Summary.Converged.
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
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e.adj = viewgraph.BuildAdjacency(e.ix, pairs)

	cov := buildCovariance(e.ix, pairs)
	solver, err := sdp.New(e.opts.SDP)
	if err != nil {
		return false, err
	}
	solver.SetCovariance(cov)
	solver.SetAdjacentEdges(e.adj.AdjacencyList())

	if err := solver.Solve(ctx); err != nil {
		graphoptim.LogError(e.opts.Logger, "dualrotation: sdp solve failed: %v", err)
		return false, err
	}

	recovered := retrieveRotations(solver.GetSolution())
	applyGaugeFixedRotations(e.ix, global, recovered)

	bound, err := computeErrorBound(e.adj, e.ix.NumViews())
	if err != nil {
		graphoptim.LogError(e.opts.Logger, "dualrotation: error bound failed: %v", err)
		return false, err
	}
	e.lastErrorBound = bound
	graphoptim.LogInfo(e.opts.Logger, "dualrotation: alpha_max=%g", bound)

	return solver.Summary().Converged, nil
}

// applyGaugeFixedRotations re-anchors the solver's raw recovered
// rotations (an arbitrary common rotation away from the caller's frame,
// since the SDP relaxation has no gauge constraint) to agree exactly
// with global's current anchor rotation. The recovered rotations carry
// the solver's common rotation on the right (recovered[i] = R_i∘Qᵀ), so
// for each non-anchor view it first forms the anchor-relative rotation
// recovered[i]∘recovered[anchor]⁻¹, in which that common rotation
// cancels, then composes the caller's anchor value
// on the right of that relative rotation. Composing on the right rather
// than prefixing a left correction keeps this exact for a non-identity
// anchor value too: it's the same right-multiplicative gauge freedom
// (R_i ↦ R_i∘H for a common H) that the on-manifold refiners use, so a
// warm-started anchor composes correctly regardless of whether the
// recovered rotations commute with it. The anchor's entry in global is
// never rewritten, preserving gauge fixity bit-for-bit.
func applyGaugeFixedRotations(ix *viewgraph.Index, global graphoptim.GlobalRotations, recovered []rotation.Vector) {
	anchorID := ix.ViewAt(ix.Anchor)
	anchorInverse := rotation.Inverse(recovered[ix.Anchor])

	for i := 0; i < ix.NumViews(); i++ {
		if i == ix.Anchor {
			continue
		}
		id := ix.ViewAt(i)
		relative := rotation.Compose(recovered[i], anchorInverse)
		global[id] = rotation.Compose(relative, global[anchorID])
	}
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
