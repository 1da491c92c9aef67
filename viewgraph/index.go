package viewgraph

import (
	"sort"

	graphoptim "github.com/PeterZs/GraphOptim"
)

// Index is the dense-index bijection for one batch solve. Construction is
// deterministic: views are sorted by ascending ViewID and assigned
// ascending dense indices, so the numerically smallest ViewID present in
// the input always becomes the anchor at index 0.
type Index struct {
	// Anchor is the dense index whose rotation is held fixed. It is
	// always 0; the field exists so callers and estimators assert the
	// convention explicitly instead of hard-coding it.
	Anchor int

	viewToIndex map[graphoptim.ViewID]int
	indexToView []graphoptim.ViewID
}

// NumViews reports the number of distinct views in the index.
func (ix *Index) NumViews() int {
	return len(ix.indexToView)
}

// IndexOf returns the dense index of id and whether id is known to ix.
func (ix *Index) IndexOf(id graphoptim.ViewID) (int, bool) {
	i, ok := ix.viewToIndex[id]
	return i, ok
}

// ViewAt returns the ViewID at dense index i. It panics if i is out of
// range, the same contract as slice indexing.
func (ix *Index) ViewAt(i int) graphoptim.ViewID {
	return ix.indexToView[i]
}

// BuildIndex builds the view-id ↔ dense-index bijection from the set of
// input view pairs. It returns *graphoptim.ErrInvalidInput if pairs is
// empty or names fewer than two distinct views.
func BuildIndex(pairs map[graphoptim.ViewPairKey]graphoptim.RelativeRotation) (*Index, error) {
	if len(pairs) == 0 {
		return nil, graphoptim.InvalidInputf("view_pairs is empty")
	}

	seen := make(map[graphoptim.ViewID]struct{})
	for k := range pairs {
		seen[k.I] = struct{}{}
		seen[k.J] = struct{}{}
	}
	if len(seen) < 2 {
		return nil, graphoptim.InvalidInputf("fewer than 2 views (%d)", len(seen))
	}

	ids := make([]graphoptim.ViewID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ix := &Index{
		Anchor:      0,
		viewToIndex: make(map[graphoptim.ViewID]int, len(ids)),
		indexToView: ids,
	}
	for i, id := range ids {
		ix.viewToIndex[id] = i
	}
	return ix, nil
}
