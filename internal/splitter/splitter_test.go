package splitter

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"github.com/wegman-software/coastline-tiler/internal/lattice"
	"github.com/wegman-software/coastline-tiler/internal/region"
	"github.com/wegman-software/coastline-tiler/internal/spatialtree"
)

// quadConverter recursively subdivides the quantizer's mercator bounds
// into quadrants, matching how cellid.ID.Children() packs two bits per
// level into the path (quadrant 0 = lower-left, 1 = lower-right, 2 =
// upper-left, 3 = upper-right).
type quadConverter struct {
	world orb.Bound
}

func (c quadConverter) CellBounds(path int64, level uint) orb.Bound {
	p := uint64(path)
	minX, minY := c.world.Min[0], c.world.Min[1]
	maxX, maxY := c.world.Max[0], c.world.Max[1]

	for i := uint(0); i < level; i++ {
		shift := 2 * (level - 1 - i)
		q := (p >> shift) & 0x3
		midX, midY := (minX+maxX)/2, (minY+maxY)/2
		switch q {
		case 0:
			maxX, maxY = midX, midY
		case 1:
			minX, maxY = midX, midY
		case 2:
			maxX, minY = midX, midY
		case 3:
			minX, minY = midX, midY
		}
	}
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func collectingCallback() (Callback, func() []Result) {
	var mu sync.Mutex
	var results []Result
	cb := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}
	get := func() []Result {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Result, len(results))
		copy(out, results)
		return out
	}
	return cb, get
}

func TestEmptyPlanetEmitsFourToThePowerBaseLevel(t *testing.T) {
	quant := lattice.New(8)
	conv := quadConverter{world: quant.Bounds()}
	tree := spatialtree.New().Seal()

	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.BaseLevel = 2
	cfg.MaxLevel = 2

	cb, get := collectingCallback()
	s := New(cfg, tree, conv, quant, cb)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	results := get()
	if len(results) != 16 {
		t.Fatalf("expected 16 emitted cells (4^2), got %d", len(results))
	}
	for _, r := range results {
		if len(r.Regions) != 1 || r.Regions[0].PointCount() != 4 {
			t.Fatalf("expected single 4-point rectangle for empty planet, got %d regions, %d points",
				len(r.Regions), r.Regions[0].PointCount())
		}
	}
}

func TestSingleIslandProducesHoleInOneCell(t *testing.T) {
	quant := lattice.New(8)
	conv := quadConverter{world: quant.Bounds()}

	tree := spatialtree.New()
	island := region.NewFromPoints([]region.Point{{X: 10, Y: 10}, {X: 10, Y: 40}, {X: 40, Y: 40}, {X: 40, Y: 10}})
	tree.Add(island)
	ro := tree.Seal()

	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.BaseLevel = 1
	cfg.MaxLevel = 1

	cb, get := collectingCallback()
	s := New(cfg, ro, conv, quant, cb)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	results := get()
	if len(results) != 4 {
		t.Fatalf("expected 4 emitted cells (4^1), got %d", len(results))
	}

	withHole := 0
	for _, r := range results {
		if len(r.Regions) == 2 {
			withHole++
		} else if len(r.Regions) != 1 {
			t.Fatalf("unexpected region count %d", len(r.Regions))
		}
	}
	if withHole != 1 {
		t.Fatalf("expected exactly one cell with a hole, got %d", withHole)
	}
}

func TestOverBudgetCellSubdivides(t *testing.T) {
	quant := lattice.New(8)
	conv := quadConverter{world: quant.Bounds()}

	tree := spatialtree.New()
	island := region.NewFromPoints([]region.Point{
		{X: 10, Y: 10}, {X: 10, Y: 50}, {X: 30, Y: 60}, {X: 50, Y: 50},
		{X: 50, Y: 10}, {X: 30, Y: 5},
	})
	tree.Add(island)
	ro := tree.Seal()

	cfg := Config{Workers: 1, BaseLevel: 1, MaxLevel: 2, PointBudget: 5}
	cb, get := collectingCallback()
	s := New(cfg, ro, conv, quant, cb)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	results := get()
	if len(results) != 7 {
		t.Fatalf("expected 3 untouched level-1 cells plus 4 level-2 children, got %d", len(results))
	}

	for _, r := range results {
		total := 0
		for _, reg := range r.Regions {
			total += reg.PointCount()
		}
		if total >= cfg.PointBudget && r.Cell.Level() != cfg.MaxLevel {
			t.Fatalf("cell at level %d exceeds point budget without reaching level cap", r.Cell.Level())
		}
	}
}

func TestWorkerCountDoesNotChangeResultSet(t *testing.T) {
	quant := lattice.New(8)
	conv := quadConverter{world: quant.Bounds()}

	buildTree := func() *spatialtree.ReadOnly {
		tree := spatialtree.New()
		tree.Add(region.NewFromPoints([]region.Point{{X: 10, Y: 10}, {X: 10, Y: 50}, {X: 50, Y: 50}, {X: 50, Y: 10}}))
		tree.Add(region.NewFromPoints([]region.Point{{X: 150, Y: 150}, {X: 150, Y: 200}, {X: 200, Y: 200}, {X: 200, Y: 150}}))
		return tree.Seal()
	}

	run := func(workers int) []Result {
		cfg := Config{Workers: workers, BaseLevel: 2, MaxLevel: 3, PointBudget: 5}
		cb, get := collectingCallback()
		s := New(cfg, buildTree(), conv, quant, cb)
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		results := get()
		sort.Slice(results, func(i, j int) bool {
			if results[i].Cell.Level() != results[j].Cell.Level() {
				return results[i].Cell.Level() < results[j].Cell.Level()
			}
			return results[i].Cell.Path() < results[j].Cell.Path()
		})
		return results
	}

	single := run(1)
	parallel := run(8)

	if len(single) != len(parallel) {
		t.Fatalf("result count differs: T=1 got %d, T=8 got %d", len(single), len(parallel))
	}
	for i := range single {
		a, b := single[i], parallel[i]
		if a.Cell.Level() != b.Cell.Level() || a.Cell.Path() != b.Cell.Path() {
			t.Fatalf("cell mismatch at index %d: %v vs %v", i, a.Cell, b.Cell)
		}
		if len(a.Regions) != len(b.Regions) {
			t.Fatalf("region count mismatch at cell %v: %d vs %d", a.Cell, len(a.Regions), len(b.Regions))
		}
	}
}
