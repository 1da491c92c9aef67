package sparsechol

import (
	"sort"

	graphoptim "github.com/PeterZs/GraphOptim"
	"github.com/PeterZs/GraphOptim/rotation"
	"github.com/PeterZs/GraphOptim/viewgraph"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// BuildRelativeRotationA assembles the sparse relative-rotation system
// shared by the L1 global estimator and the IRLS refiner: A has one 3×3
// row block per edge, −R_ij^T in the column block of the edge's smaller
// view and I in the column block of its larger view (the anchor's column
// is omitted), and b stacks the measured relative rotations in the same
// edge order.
//
// edgeOrder is the deterministic (sorted by ViewPairKey) edge ordering
// used to index both A's row blocks and b; callers that need to map a row
// block back to an edge should index edgeOrder, not pairs.
func BuildRelativeRotationA(ix *viewgraph.Index, pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation) (edgeOrder []graphoptim.ViewPairKey, a *sparse.CSR, b *mat.VecDense, err error) {
	edgeOrder = make([]graphoptim.ViewPairKey, 0, len(pairs))
	for k := range pairs {
		edgeOrder = append(edgeOrder, k)
	}
	sort.Slice(edgeOrder, func(x, y int) bool {
		if edgeOrder[x].I != edgeOrder[y].I {
			return edgeOrder[x].I < edgeOrder[y].I
		}
		return edgeOrder[x].J < edgeOrder[y].J
	})

	nCols := 3 * (ix.NumViews() - 1)
	nRows := 3 * len(edgeOrder)

	rows := make([]int, 0, nRows*6)
	cols := make([]int, 0, nRows*6)
	vals := make([]float64, 0, nRows*6)
	b = mat.NewVecDense(nRows, nil)

	colBlock := func(denseIdx int) (int, bool) {
		if denseIdx == ix.Anchor {
			return 0, false
		}
		if denseIdx < ix.Anchor {
			return denseIdx, true
		}
		return denseIdx - 1, true
	}

	for e, key := range edgeOrder {
		meas := pairs[key]
		i, _ := ix.IndexOf(key.I)
		j, _ := ix.IndexOf(key.J)

		rowBase := 3 * e
		rt := rotation.ToMatrix(meas.Rotation).T()
		if ci, ok := colBlock(i); ok {
			addBlockNegT(&rows, &cols, &vals, rowBase, 3*ci, rt)
		}
		if cj, ok := colBlock(j); ok {
			addIdentityBlock(&rows, &cols, &vals, rowBase, 3*cj)
		}

		b.SetVec(rowBase+0, meas.Rotation.X)
		b.SetVec(rowBase+1, meas.Rotation.Y)
		b.SetVec(rowBase+2, meas.Rotation.Z)
	}

	coo := sparse.NewCOO(nRows, nCols, rows, cols, vals)
	return edgeOrder, coo.ToCSR(), b, nil
}

func addBlockNegT(rows, cols *[]int, vals *[]float64, rowBase, colBase int, rt mat.Matrix) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := -rt.At(r, c)
			if v == 0 {
				continue
			}
			*rows = append(*rows, rowBase+r)
			*cols = append(*cols, colBase+c)
			*vals = append(*vals, v)
		}
	}
}

func addIdentityBlock(rows, cols *[]int, vals *[]float64, rowBase, colBase int) {
	for d := 0; d < 3; d++ {
		*rows = append(*rows, rowBase+d)
		*cols = append(*cols, colBase+d)
		*vals = append(*vals, 1)
	}
}
