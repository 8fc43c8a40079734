package spatialtree

import (
	"testing"

	"github.com/wegman-software/coastline-tiler/internal/region"
)

func square(minX, minY, maxX, maxY int32) *region.Region {
	return region.NewFromPoints([]region.Point{
		{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY},
	})
}

func TestForEachInRectFindsIntersecting(t *testing.T) {
	tr := New()
	tr.Add(square(0, 0, 10, 10))
	tr.Add(square(100, 100, 110, 110))
	ro := tr.Seal()

	var hits int
	ro.ForEachInRect(region.Rect{MinX: 5, MinY: 5, MaxX: 20, MaxY: 20}, func(r *region.Region) {
		hits++
	})
	if hits != 1 {
		t.Fatalf("expected 1 intersecting region, got %d", hits)
	}
}

func TestForEachInRectVisitsInInsertionOrder(t *testing.T) {
	tr := New()
	for i := int32(0); i < 20; i++ {
		tr.Add(square(i*100, i*100, i*100+10, i*100+10))
	}
	ro := tr.Seal()

	var seen []*region.Region
	ro.ForEachInRect(region.Rect{MinX: 0, MinY: 0, MaxX: 2000, MaxY: 2000}, func(r *region.Region) {
		seen = append(seen, r)
	})
	if len(seen) != 20 {
		t.Fatalf("expected 20 regions, got %d", len(seen))
	}
	for i := 0; i < len(seen)-1; i++ {
		if seen[i].Rect().MinX > seen[i+1].Rect().MinX {
			t.Fatalf("visit order not monotonic in insertion order at index %d", i)
		}
	}
}

func TestLenTracksInsertions(t *testing.T) {
	tr := New()
	if tr.Len() != 0 {
		t.Fatal("new tree should be empty")
	}
	tr.Add(square(0, 0, 1, 1))
	tr.Add(square(2, 2, 3, 3))
	if tr.Len() != 2 {
		t.Fatalf("expected len 2, got %d", tr.Len())
	}
	if tr.Seal().Len() != 2 {
		t.Fatal("sealed view should report same length")
	}
}
