package admm

import (
	"math"
	"testing"

	"github.com/PeterZs/GraphOptim/sparsechol"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

func identitySystem(n int) *sparsechol.System {
	rows := make([]int, n)
	cols := make([]int, n)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		rows[i], cols[i], vals[i] = i, i, 1
	}
	coo := sparse.NewCOO(n, n, rows, cols, vals)
	return sparsechol.NewSystem(coo.ToCSR())
}

func TestSolveIdentityRecoversB(t *testing.T) {
	const n = 6
	sys := identitySystem(n)
	solver, err := New(sys, DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := mat.NewVecDense(n, []float64{1, -2, 0.5, 3, -1.5, 0.25})
	x := mat.NewVecDense(n, nil)

	converged, err := solver.Solve(b, x)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !converged {
		t.Fatalf("expected convergence on identity system")
	}

	for i := 0; i < n; i++ {
		if math.Abs(x.AtVec(i)-b.AtVec(i)) > 1e-3 {
			t.Errorf("x[%d] = %v, want %v", i, x.AtVec(i), b.AtVec(i))
		}
	}
}
