package rotavgtest

import (
	"math"
	"math/rand"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
)

// Scenario bundles a synthetic view-pair graph with its known ground
// truth rotations, for use as a table-driven test fixture.
type Scenario struct {
	Name        string
	Pairs       map[graphoptim.ViewPairKey]graphoptim.RelativeRotation
	GroundTruth graphoptim.GlobalRotations
}

// InitialGuess returns a fresh cold-start global rotation map: identity
// for every view named in s.GroundTruth.
func (s Scenario) InitialGuess() graphoptim.GlobalRotations {
	global := make(graphoptim.GlobalRotations, len(s.GroundTruth))
	for id := range s.GroundTruth {
		global[id] = rotation.Zero
	}
	return global
}

func rx(deg float64) rotation.Vector { return rotation.Vector{X: deg * math.Pi / 180} }

func ry(deg float64) rotation.Vector { return rotation.Vector{Y: deg * math.Pi / 180} }

func scaleVec(v rotation.Vector, s float64) rotation.Vector {
	return rotation.Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func randomUnitAxis(rng *rand.Rand) rotation.Vector {
	for {
		v := rotation.Vector{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		n := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if n > 1e-6 {
			return scaleVec(v, 1/n)
		}
	}
}

// CycleOfThree is scenario S1: views {0,1,2}; edges (0,1)→30°,
// (1,2)→45°, (0,2)→75° about the x-axis, noise-free and
// cycle-consistent.
func CycleOfThree() Scenario {
	pairs := map[graphoptim.ViewPairKey]graphoptim.RelativeRotation{
		graphoptim.NewViewPairKey(0, 1): {Rotation: rx(30), VisibilityScore: 10},
		graphoptim.NewViewPairKey(1, 2): {Rotation: rx(45), VisibilityScore: 10},
		graphoptim.NewViewPairKey(0, 2): {Rotation: rx(75), VisibilityScore: 10},
	}
	return Scenario{
		Name:  "cycle-of-three",
		Pairs: pairs,
		GroundTruth: graphoptim.GlobalRotations{
			0: rotation.Zero,
			1: rx(30),
			2: rx(75),
		},
	}
}

// InconsistentTriangle is scenario S2: CycleOfThree with the (0,2) edge
// perturbed to 70°, a 5° cycle error that cannot be satisfied exactly by
// any global assignment.
func InconsistentTriangle() Scenario {
	s := CycleOfThree()
	pairs := make(map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, len(s.Pairs))
	for k, v := range s.Pairs {
		pairs[k] = v
	}
	pairs[graphoptim.NewViewPairKey(0, 2)] = graphoptim.RelativeRotation{Rotation: rx(70), VisibilityScore: 10}
	s.Name = "inconsistent-triangle"
	s.Pairs = pairs
	return s
}

// ChainOfTen is scenario S3: 10 views joined by 9 sequential edges, each
// a 10° rotation about a deterministic pseudo-random axis, noise-free.
func ChainOfTen() Scenario {
	const n = 10
	rng := rand.New(rand.NewSource(42))

	pairs := make(map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, n-1)
	groundTruth := graphoptim.GlobalRotations{0: rotation.Zero}

	cur := rotation.Zero
	for i := 0; i < n-1; i++ {
		step := scaleVec(randomUnitAxis(rng), 10*math.Pi/180)
		pairs[graphoptim.NewViewPairKey(graphoptim.ViewID(i), graphoptim.ViewID(i+1))] = graphoptim.RelativeRotation{
			Rotation:        step,
			VisibilityScore: 10,
		}
		cur = rotation.Compose(step, cur)
		groundTruth[graphoptim.ViewID(i+1)] = cur
	}
	return Scenario{Name: "chain-of-ten", Pairs: pairs, GroundTruth: groundTruth}
}

// StarGraph is the star-graph boundary case (property 10 in SPEC_FULL.md
// §8): a central anchor (view 0) with k leaves, each connected only to
// the anchor, noise-free.
func StarGraph(k int) Scenario {
	pairs := make(map[graphoptim.ViewPairKey]graphoptim.RelativeRotation, k)
	groundTruth := graphoptim.GlobalRotations{0: rotation.Zero}
	for i := 1; i <= k; i++ {
		leaf := ry(float64(i) * 15)
		pairs[graphoptim.NewViewPairKey(0, graphoptim.ViewID(i))] = graphoptim.RelativeRotation{
			Rotation:        leaf,
			VisibilityScore: 10,
		}
		groundTruth[graphoptim.ViewID(i)] = leaf
	}
	return Scenario{Name: "star", Pairs: pairs, GroundTruth: groundTruth}
}

// NoisyCompleteGraph is scenario S4: numViews ground-truth rotations,
// view 0 the identity and every other view a random rotation (axis from a
// normalized point drawn uniformly in the cube [-1, 1]³, angle uniform in
// [0, π)), with every pairwise edge present and perturbed by Gaussian
// noise (axis-angle, std-dev noiseSigmaDeg degrees) on top of the
// ground-truth-consistent measurement. The rotations are not drawn from
// the uniform (Haar) distribution on SO(3).
func NoisyCompleteGraph(numViews int, noiseSigmaDeg float64, seed int64) Scenario {
	rng := rand.New(rand.NewSource(seed))

	groundTruth := make(graphoptim.GlobalRotations, numViews)
	groundTruth[0] = rotation.Zero
	for i := 1; i < numViews; i++ {
		angle := rng.Float64() * math.Pi
		groundTruth[graphoptim.ViewID(i)] = scaleVec(randomUnitAxis(rng), angle)
	}

	sigma := noiseSigmaDeg * math.Pi / 180
	pairs := make(map[graphoptim.ViewPairKey]graphoptim.RelativeRotation)
	for i := 0; i < numViews; i++ {
		for j := i + 1; j < numViews; j++ {
			ri := groundTruth[graphoptim.ViewID(i)]
			rj := groundTruth[graphoptim.ViewID(j)]
			consistent := rotation.Compose(rj, rotation.Inverse(ri))
			noise := scaleVec(randomUnitAxis(rng), rng.NormFloat64()*sigma)
			noisy := rotation.Compose(noise, consistent)
			pairs[graphoptim.NewViewPairKey(graphoptim.ViewID(i), graphoptim.ViewID(j))] = graphoptim.RelativeRotation{
				Rotation:        noisy,
				VisibilityScore: 10,
			}
		}
	}
	return Scenario{Name: "noisy-complete", Pairs: pairs, GroundTruth: groundTruth}
}
