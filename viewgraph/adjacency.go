package viewgraph

import (
	"strconv"

	graphoptim "github.com/PeterZs/GraphOptim"
	lvgraph "github.com/katalvlaran/lvlath/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Adjacency is the undirected view-graph adjacency, keyed by dense index.
// It backs the per-view degree sequence and the graph Laplacian the
// Lagrange-dual estimator's error bound is computed from.
type Adjacency struct {
	ix *Index
	g  *lvgraph.Graph
}

// BuildAdjacency builds the undirected adjacency for ix from pairs. Every
// dense index present in ix gets a vertex even if (degenerately) it has no
// incident edges within pairs, so degree queries never need a presence
// check.
func BuildAdjacency(ix *Index, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation) *Adjacency {
	g := lvgraph.NewGraph(false, false)
	for i := 0; i < ix.NumViews(); i++ {
		g.AddVertex(&lvgraph.Vertex{ID: strconv.Itoa(i), Metadata: map[string]interface{}{}})
	}
	for k := range pairs {
		i, _ := ix.IndexOf(k.I)
		j, _ := ix.IndexOf(k.J)
		g.AddEdge(strconv.Itoa(i), strconv.Itoa(j), 1)
	}
	return &Adjacency{ix: ix, g: g}
}

// Degree returns the number of distinct neighbors of the view at dense
// index i.
func (a *Adjacency) Degree(i int) int {
	return len(a.g.Neighbors(strconv.Itoa(i)))
}

// NeighborIndices returns the dense indices of the view at index i's
// neighbors, in no particular order. Used to hand the SDP solvers an
// adjacency list keyed the same way as every other per-view slice in
// this package.
func (a *Adjacency) NeighborIndices(i int) []int {
	neighbors := a.g.Neighbors(strconv.Itoa(i))
	out := make([]int, 0, len(neighbors))
	for _, nbr := range neighbors {
		j, err := strconv.Atoi(nbr.ID)
		if err != nil {
			continue
		}
		out = append(out, j)
	}
	return out
}

// AdjacencyList returns the full per-view neighbor-index list, indexed by
// dense index, suitable for sdp.Solver.SetAdjacentEdges.
func (a *Adjacency) AdjacencyList() [][]int {
	out := make([][]int, a.ix.NumViews())
	for i := range out {
		out[i] = a.NeighborIndices(i)
	}
	return out
}

// MaxDegree returns the maximum vertex degree over the whole graph (d_max
// in the error-bound formula).
func (a *Adjacency) MaxDegree() int {
	max := 0
	for i := 0; i < a.ix.NumViews(); i++ {
		if d := a.Degree(i); d > max {
			max = d
		}
	}
	return max
}

// ToGonumUndirected builds a gonum/graph/simple.UndirectedGraph with the
// same adjacency, for use with gonum/graph/spectral's Laplacian
// construction.
func (a *Adjacency) ToGonumUndirected() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < a.ix.NumViews(); i++ {
		ug.AddNode(simple.Node(int64(i)))
	}
	for i := 0; i < a.ix.NumViews(); i++ {
		for _, nbr := range a.g.Neighbors(strconv.Itoa(i)) {
			j, err := strconv.Atoi(nbr.ID)
			if err != nil {
				continue
			}
			if int64(i) < int64(j) && !ug.HasEdgeBetween(int64(i), int64(j)) {
				ug.SetEdge(ug.NewEdge(simple.Node(int64(i)), simple.Node(int64(j))))
			}
		}
	}
	return ug
}
