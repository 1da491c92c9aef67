package hybrid

import (
	"context"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/dualrotation"
	"github.com/PeterZs/GraphOptim/irls"
	"github.com/PeterZs/GraphOptim/l1rotation"
)

// Initializer selects which global estimator produces the starting
// point IRLS refines.
type Initializer int

const (
	// InitL1 uses the L1 ADMM global estimator.
	InitL1 Initializer = iota
	// InitSDP uses the Lagrange-dual (SDP) global estimator.
	InitSDP
)

// Options configures a Driver.
type Options struct {
	Initializer Initializer
	L1          l1rotation.Options
	SDP         dualrotation.Options
	IRLS        irls.Options
	Logger      graphoptim.Logger
}

// Driver composes an initializer with IRLS refinement. On SDP failure
// the driver does not fall back to L1, and on L1/SDP non-convergence it
// still proceeds to IRLS refinement against the initializer's last
// iterate — the caller chooses the composition explicitly by
// Options.Initializer.
type Driver struct {
	opts Options
}

// New constructs a Driver.
func New(opts Options) *Driver {
	return &Driver{opts: opts}
}

// EstimateRotations runs the configured initializer, then IRLS, updating
// global in place. It returns the refiner's (converged, err): a failure
// at either stage aborts and returns immediately without running the
// other stage.
func (d *Driver) EstimateRotations(ctx context.Context, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, global graphoptim.GlobalRotations) (bool, error) {
	refiner := irls.New(d.opts.IRLS)

	switch d.opts.Initializer {
	case InitL1:
		est := l1rotation.New(d.opts.L1)
		if _, err := est.EstimateRotations(ctx, pairs, global); err != nil {
			return false, err
		}
		refiner.SetViewIDToIndex(est.Index())
		refiner.SetSparseMatrix(est.System(), est.EdgeOrder())

	case InitSDP:
		est := dualrotation.New(d.opts.SDP)
		if _, err := est.EstimateRotations(ctx, pairs, global); err != nil {
			return false, err
		}
		// dualrotation builds the SDP block covariance, not the sparse
		// relative-rotation system irls needs; only the view index
		// carries over.
		refiner.SetViewIDToIndex(est.Index())

	default:
		return false, graphoptim.InvalidInputf("hybrid: unknown initializer %d", d.opts.Initializer)
	}

	return refiner.EstimateRotations(ctx, pairs, global)
}
