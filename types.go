package graphoptim

import "github.com/PeterZs/GraphOptim/rotation"

// ViewID is the caller-supplied opaque identifier for a camera view.
type ViewID uint32

// ViewPairKey identifies an unordered edge between two views. I is always
// the smaller of the two ids so that a pair and its reverse hash to the
// same key; the graph is undirected, an edge (I, J) implies the inverse
// rotation on the reverse direction.
type ViewPairKey struct {
	I, J ViewID
}

// NewViewPairKey builds the canonical (smaller, larger) key for an edge
// between a and b. It panics if a == b: self-edges have no meaning for
// rotation averaging.
func NewViewPairKey(a, b ViewID) ViewPairKey {
	if a == b {
		panic("graphoptim: self-edge is not allowed")
	}
	if a < b {
		return ViewPairKey{I: a, J: b}
	}
	return ViewPairKey{I: b, J: a}
}

// RelativeRotation is the measurement carried by one edge of the view
// graph: the axis-angle rotation taking the frame of the edge's smaller
// view id to the frame of its larger view id, plus a visibility score. The
// score is carried with the measurement; no estimator reads it.
type RelativeRotation struct {
	Rotation        rotation.Vector
	VisibilityScore int
}

// GlobalRotations is the mapping from view-id to its current axis-angle
// rotation estimate in the common world frame. It is owned by the caller:
// every estimator updates it in place and never replaces the map value.
type GlobalRotations map[ViewID]rotation.Vector

// Clone returns a shallow copy of g, useful for keeping the caller's
// pre-solve rotations around for comparison (e.g. in tests asserting gauge
// equivariance).
func (g GlobalRotations) Clone() GlobalRotations {
	out := make(GlobalRotations, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}
