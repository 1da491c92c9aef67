package sparsechol

import (
	"testing"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

func triangleSystem(t *testing.T) (*viewgraph.Index, map[graphoptim.ViewPairKey]graphoptim.RelativeRotation) {
	t.Helper()
	pairs := map[graphoptim.ViewPairKey]graphoptim.RelativeRotation{
		graphoptim.NewViewPairKey(0, 1): {Rotation: rotation.Vector{X: 0.1}, VisibilityScore: 1},
		graphoptim.NewViewPairKey(1, 2): {Rotation: rotation.Vector{X: 0.2}, VisibilityScore: 1},
		graphoptim.NewViewPairKey(0, 2): {Rotation: rotation.Vector{X: 0.3}, VisibilityScore: 1},
	}
	ix, err := viewgraph.BuildIndex(pairs)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return ix, pairs
}

func TestBuildRelativeRotationADims(t *testing.T) {
	ix, pairs := triangleSystem(t)
	edgeOrder, a, b, err := BuildRelativeRotationA(ix, pairs)
	if err != nil {
		t.Fatalf("BuildRelativeRotationA: %v", err)
	}
	if len(edgeOrder) != 3 {
		t.Fatalf("edgeOrder length = %d, want 3", len(edgeOrder))
	}
	rows, cols := a.Dims()
	if rows != 9 {
		t.Errorf("A rows = %d, want 9 (3 edges * 3)", rows)
	}
	if cols != 6 {
		t.Errorf("A cols = %d, want 6 (2 non-anchor views * 3)", cols)
	}
	if n := b.Len(); n != 9 {
		t.Errorf("b length = %d, want 9", n)
	}
}

func TestBuildRelativeRotationAOmitsAnchorColumn(t *testing.T) {
	ix, pairs := triangleSystem(t)
	_, a, _, err := BuildRelativeRotationA(ix, pairs)
	if err != nil {
		t.Fatalf("BuildRelativeRotationA: %v", err)
	}
	rows, cols := a.Dims()
	dense := mat.NewDense(rows, cols, nil)
	dense.CloneFrom(a)

	// Every row touching the anchor view (dense index 0) must have no
	// nonzero entries in columns beyond the two non-anchor column blocks;
	// more directly, the anchor's own column block (columns 0..2 owned by
	// view index 1 here since the anchor has none) must never be written
	// by a -I or -R^T block meant for the anchor itself. Instead assert
	// the well-formed invariant that every row has at most two nonzero
	// 3x3 blocks (identity for the larger endpoint, -R^T for the smaller,
	// with the anchor's block simply omitted).
	for r := 0; r < rows; r++ {
		nonzero := 0
		for c := 0; c < cols; c++ {
			if dense.At(r, c) != 0 {
				nonzero++
			}
		}
		if nonzero == 0 {
			t.Errorf("row %d has no nonzero entries", r)
		}
		if nonzero > 6 {
			t.Errorf("row %d has %d nonzero entries, want at most 6 (two 3x3 blocks)", r, nonzero)
		}
	}
}

func TestSystemFactorizeAndSolveIdentityWeights(t *testing.T) {
	ix, pairs := triangleSystem(t)
	_, a, b, err := BuildRelativeRotationA(ix, pairs)
	if err != nil {
		t.Fatalf("BuildRelativeRotationA: %v", err)
	}

	sys := NewSystem(a)
	if err := sys.AnalyzePattern(); err != nil {
		t.Fatalf("AnalyzePattern: %v", err)
	}

	status, err := sys.Factorize(nil)
	if status != StatusSuccess {
		t.Fatalf("Factorize: status=%v err=%v", status, err)
	}

	rhs := sys.MulAT(b)
	x, status, err := sys.Solve(rhs)
	if status != StatusSuccess {
		t.Fatalf("Solve: status=%v err=%v", status, err)
	}
	if n := x.Len(); n != 6 {
		t.Errorf("solution length = %d, want 6", n)
	}

	// A consistent cycle (0.1+0.2 == 0.3) solved against AᵀA x = Aᵀb
	// should recover the measured relative rotations on the two
	// non-anchor views.
	if got := x.AtVec(0); absDiff(got, 0.1) > 1e-6 {
		t.Errorf("view 1 x-component = %v, want ~0.1", got)
	}
	if got := x.AtVec(3); absDiff(got, 0.3) > 1e-6 {
		t.Errorf("view 2 x-component = %v, want ~0.3", got)
	}
}

func TestAnalyzePatternRejectsEmptySystem(t *testing.T) {
	empty := sparse.NewCOO(0, 0, nil, nil, nil).ToCSR()
	sys := NewSystem(empty)
	if err := sys.AnalyzePattern(); err == nil {
		t.Fatalf("expected error for a 0x0 system")
	}
}

func TestFactorizePanicsBeforeAnalyzePattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when Factorize precedes AnalyzePattern")
		}
	}()
	ix, pairs := triangleSystem(t)
	_, a, _, err := BuildRelativeRotationA(ix, pairs)
	if err != nil {
		t.Fatalf("BuildRelativeRotationA: %v", err)
	}
	sys := NewSystem(a)
	sys.Factorize(nil)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
