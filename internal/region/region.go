// Package region implements the integer-lattice simple polygon type the
// geometry core operates on, its bounding rectangle, and the polygon
// boolean intersection primitive the cell splitter folds land regions
// through.
package region

import "github.com/wegman-software/coastline-tiler/internal/lattice"

// Point is a lattice-space coordinate.
type Point = lattice.Point

// Rect is an axis-aligned integer rectangle. An empty Rect (no points
// ever added) has MinX > MaxX.
type Rect struct {
	MinX, MinY, MaxX, MaxY int32
}

// Empty reports whether the rectangle has no extent.
func (r Rect) Empty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// IsInside reports whether r is fully contained within outer.
func (r Rect) IsInside(outer Rect) bool {
	if r.Empty() || outer.Empty() {
		return false
	}
	return r.MinX >= outer.MinX && r.MinY >= outer.MinY &&
		r.MaxX <= outer.MaxX && r.MaxY <= outer.MaxY
}

// Intersects reports whether r and o share any area or edge.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return !(r.MaxX < o.MinX || o.MaxX < r.MinX || r.MaxY < o.MinY || o.MaxY < r.MinY)
}

// Region is an ordered sequence of lattice points forming a simple
// closed polygon; the closing edge (last point back to the first) is
// implicit and not stored. It carries its bounding rectangle, updated
// incrementally as points are appended.
type Region struct {
	points []Point
	rect   Rect
}

// Empty returns a zero-point Region whose bounding rectangle is empty.
func Empty() *Region {
	return &Region{rect: Rect{MinX: 1, MaxX: 0}}
}

// New returns an empty Region ready for AddPoint calls.
func New() *Region {
	return Empty()
}

// NewFromPoints builds a Region from a complete point list, in order.
func NewFromPoints(pts []Point) *Region {
	r := New()
	for _, p := range pts {
		r.AddPoint(p)
	}
	return r
}

// AddPoint appends a point and extends the bounding rectangle.
func (r *Region) AddPoint(p Point) {
	if r.rect.Empty() {
		r.rect = Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	} else {
		if p.X < r.rect.MinX {
			r.rect.MinX = p.X
		}
		if p.X > r.rect.MaxX {
			r.rect.MaxX = p.X
		}
		if p.Y < r.rect.MinY {
			r.rect.MinY = p.Y
		}
		if p.Y > r.rect.MaxY {
			r.rect.MaxY = p.Y
		}
	}
	r.points = append(r.points, p)
}

// Rect returns the cached bounding rectangle.
func (r *Region) Rect() Rect { return r.rect }

// PointCount returns the number of stored points.
func (r *Region) PointCount() int { return len(r.points) }

// Points returns the underlying point slice; callers must not mutate it.
func (r *Region) Points() []Point { return r.points }

// ForEachPoint visits points in insertion order.
func (r *Region) ForEachPoint(visit func(Point)) {
	for _, p := range r.points {
		visit(p)
	}
}

// IsRectInside reports whether this region's bounding rectangle is
// fully contained within other.
func (r *Region) IsRectInside(other Rect) bool {
	return r.rect.IsInside(other)
}

// Validate checks the minimal simple-polygon invariant (at least three
// points). Self-intersection is not checked here — that contract is
// the caller's (the region is assumed simple on construction, per the
// core's error taxonomy treating violations as assertion failures in
// the boolean-op layer, not here).
func (r *Region) Validate() error {
	if len(r.points) < 3 {
		return &InvariantError{Msg: "region must have at least three points"}
	}
	return nil
}

// InvariantError marks a geometric assertion failure: a logic bug in
// the core or in the data it was handed, not a recoverable condition.
type InvariantError struct{ Msg string }

func (e *InvariantError) Error() string { return "region: " + e.Msg }
