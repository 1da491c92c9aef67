package l1rotation

import (
	"context"
	"errors"
	"math"
	"testing"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"gonum.org/v1/gonum/floats/scalar"
)

func rx(theta float64) rotation.Vector { return rotation.Vector{X: theta} }

func TestMinimalTwoViewGraph(t *testing.T) {
	pairs := map[graphoptim.ViewPairKey]graphoptim.RelativeRotation{
		graphoptim.NewViewPairKey(0, 1): {Rotation: rx(math.Pi / 6), VisibilityScore: 10},
	}
	global := graphoptim.GlobalRotations{0: rotation.Zero, 1: rotation.Zero}

	est := New(Options{})
	_, err := est.EstimateRotations(context.Background(), pairs, global)
	if err != nil {
		t.Fatalf("EstimateRotations: %v", err)
	}

	if !scalar.EqualWithinAbs(global[0].X, 0, 1e-12) {
		t.Errorf("anchor view moved: %+v", global[0])
	}
}

func TestCycleOfThreeConsistent(t *testing.T) {
	pairs := map[graphoptim.ViewPairKey]graphoptim.RelativeRotation{
		graphoptim.NewViewPairKey(0, 1): {Rotation: rx(30 * math.Pi / 180), VisibilityScore: 10},
		graphoptim.NewViewPairKey(1, 2): {Rotation: rx(45 * math.Pi / 180), VisibilityScore: 10},
		graphoptim.NewViewPairKey(0, 2): {Rotation: rx(75 * math.Pi / 180), VisibilityScore: 10},
	}
	global := graphoptim.GlobalRotations{0: rotation.Zero, 1: rotation.Zero, 2: rotation.Zero}

	est := New(Options{})
	_, err := est.EstimateRotations(context.Background(), pairs, global)
	if err != nil {
		t.Fatalf("EstimateRotations: %v", err)
	}

	if !scalar.EqualWithinAbs(global[0].X, 0, 1e-9) {
		t.Errorf("anchor moved: %+v", global[0])
	}
}

func TestMissingGlobalRotationEntryIsInvalidInput(t *testing.T) {
	pairs := map[graphoptim.ViewPairKey]graphoptim.RelativeRotation{
		graphoptim.NewViewPairKey(0, 1): {Rotation: rx(0.1), VisibilityScore: 1},
	}
	global := graphoptim.GlobalRotations{0: rotation.Zero}

	est := New(Options{})
	_, err := est.EstimateRotations(context.Background(), pairs, global)
	if err == nil {
		t.Fatalf("expected ErrInvalidInput")
	}
	var target *graphoptim.ErrInvalidInput
	if !errors.As(err, &target) {
		t.Errorf("got %v, want *ErrInvalidInput", err)
	}
}
