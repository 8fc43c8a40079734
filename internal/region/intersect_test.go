package region

import "testing"

func pointSet(r *Region) map[Point]bool {
	set := make(map[Point]bool)
	r.ForEachPoint(func(p Point) { set[p] = true })
	return set
}

func TestIntersectRegionsOverlappingSquaresYieldsOverlapRect(t *testing.T) {
	a := square(0, 0, 20, 20)
	b := square(10, 10, 30, 30)

	results := IntersectRegions(a, b)
	if len(results) != 1 {
		t.Fatalf("expected exactly one overlap region, got %d", len(results))
	}

	got := results[0]
	if got.PointCount() != 4 {
		t.Fatalf("expected a 4-point overlap rectangle, got %d points", got.PointCount())
	}
	want := map[Point]bool{
		{X: 10, Y: 10}: true, {X: 10, Y: 20}: true,
		{X: 20, Y: 20}: true, {X: 20, Y: 10}: true,
	}
	gotSet := pointSet(got)
	for p := range want {
		if !gotSet[p] {
			t.Fatalf("expected overlap rectangle to contain %v, got points %v", p, got.Points())
		}
	}
}

func TestIntersectRegionsOneFullyInsideOtherReturnsInner(t *testing.T) {
	outer := square(0, 0, 100, 100)
	inner := square(40, 40, 60, 60)

	results := IntersectRegions(outer, inner)
	if len(results) != 1 {
		t.Fatalf("expected one region, got %d", len(results))
	}
	if results[0].Rect() != inner.Rect() {
		t.Fatalf("expected intersection to equal the fully-contained inner rect, got %+v", results[0].Rect())
	}
}

func TestIntersectRegionsDisjointSquaresYieldNothing(t *testing.T) {
	a := square(0, 0, 10, 10)
	b := square(100, 100, 110, 110)

	if results := IntersectRegions(a, b); len(results) != 0 {
		t.Fatalf("expected no intersection for disjoint squares, got %d regions", len(results))
	}
}

func TestIntersectRegionsEdgeAdjacentSquaresYieldNothing(t *testing.T) {
	a := square(0, 0, 10, 10)
	b := square(10, 0, 20, 10)

	if results := IntersectRegions(a, b); len(results) != 0 {
		t.Fatalf("expected zero-area shared-edge squares to yield no region, got %d", len(results))
	}
}

func TestIntersectRegionsEmptyInputYieldsNothing(t *testing.T) {
	if results := IntersectRegions(New(), square(0, 0, 10, 10)); results != nil {
		t.Fatalf("expected nil for an empty region operand, got %v", results)
	}
}
