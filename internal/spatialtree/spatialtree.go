// Package spatialtree indexes closed coastline regions by bounding
// rectangle over an R-tree, the way beetlebugorg's chart index wraps
// the same library for bounding-box chart lookups. The tree is mutated
// only while land is being ingested; Seal hands back a read-only view
// safe for concurrent use by the splitter's worker pool.
package spatialtree

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/wegman-software/coastline-tiler/internal/region"
)

// entry wraps one indexed Region with the insertion sequence number
// needed to make ForEachInRect's visit order deterministic.
type entry struct {
	region *region.Region
	rect   region.Rect
	seq    int
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	r := e.rect
	pt := rtreego.Point{float64(r.MinX), float64(r.MinY)}
	lengths := []float64{float64(r.MaxX - r.MinX) + 1, float64(r.MaxY - r.MinY) + 1}
	rect, err := rtreego.NewRect(pt, lengths)
	if err != nil {
		// Only a degenerate (zero-length) rectangle triggers this, which
		// Add never constructs: every indexed region has a non-empty rect.
		panic("spatialtree: degenerate rectangle: " + err.Error())
	}
	return rect
}

// Tree is the mutable build-time handle: regions are inserted as the
// ring merger and façade discover closed land. Not safe for concurrent
// use; all inserts happen before Seal.
type Tree struct {
	rt   *rtreego.Rtree
	next int
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{rt: rtreego.NewTree(2, 25, 50)}
}

// Add inserts a region, keyed by its bounding rectangle.
func (t *Tree) Add(r *region.Region) {
	t.rt.Insert(&entry{region: r, rect: r.Rect(), seq: t.next})
	t.next++
}

// Len returns the number of indexed regions.
func (t *Tree) Len() int { return t.rt.Size() }

// Seal returns a read-only view over the tree's current contents.
// Callers must not call Add on t again once workers hold the sealed
// view; the spec's contract is that indexing completes before the
// splitter phase begins, and Seal marks that handoff explicitly rather
// than relying on convention alone.
func (t *Tree) Seal() *ReadOnly {
	return &ReadOnly{rt: t.rt}
}

// ReadOnly is a sealed, concurrency-safe view over an indexed set of
// regions. rtreego's read path (SearchIntersect) takes no locks and
// mutates no shared state, so any number of splitter workers may call
// ForEachInRect concurrently.
type ReadOnly struct {
	rt *rtreego.Rtree
}

// ForEachInRect visits every region whose bounding rectangle
// intersects query, in ascending insertion-sequence order: rtreego's
// SearchIntersect makes no ordering guarantee, and the cell splitter's
// fold step needs visit order to be deterministic given a fixed
// insertion order, per the reproducibility requirement.
func (ro *ReadOnly) ForEachInRect(query region.Rect, visit func(*region.Region)) {
	pt := rtreego.Point{float64(query.MinX), float64(query.MinY)}
	lengths := []float64{float64(query.MaxX-query.MinX) + 1, float64(query.MaxY-query.MinY) + 1}
	rect, err := rtreego.NewRect(pt, lengths)
	if err != nil {
		panic("spatialtree: degenerate query rectangle: " + err.Error())
	}

	hits := ro.rt.SearchIntersect(rect)
	entries := make([]*entry, len(hits))
	for i, h := range hits {
		entries[i] = h.(*entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	for _, e := range entries {
		visit(e.region)
	}
}

// Len returns the number of indexed regions.
func (ro *ReadOnly) Len() int { return ro.rt.Size() }
