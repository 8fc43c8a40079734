// Package splitter implements the parallel cell splitter: the central
// algorithm that recursively subdivides the quad grid and computes,
// for each accepted cell, the ocean geometry obtained by differencing
// the cell's rectangle against every indexed land region it overlaps.
package splitter

import (
	"context"
	"runtime"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/coastline-tiler/internal/cellid"
	"github.com/wegman-software/coastline-tiler/internal/feature"
	"github.com/wegman-software/coastline-tiler/internal/lattice"
	"github.com/wegman-software/coastline-tiler/internal/logger"
	"github.com/wegman-software/coastline-tiler/internal/metrics"
	"github.com/wegman-software/coastline-tiler/internal/region"
	"github.com/wegman-software/coastline-tiler/internal/spatialtree"
)

// Config tunes the splitter. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Workers     int
	BaseLevel   uint
	MaxLevel    uint
	PointBudget int
}

// DefaultConfig mirrors the splitter's documented defaults: base level
// 4, level cap 10, a 20000-point budget per cell, one worker per
// logical CPU.
func DefaultConfig() Config {
	return Config{
		Workers:     runtime.NumCPU(),
		BaseLevel:   4,
		MaxLevel:    10,
		PointBudget: 20000,
	}
}

// Result is one accepted cell's difference against indexed land: the
// ordered list of output regions (an outer boundary plus any holes).
type Result struct {
	Cell    cellid.ID
	Regions []*region.Region
}

// Callback receives one accepted Result per cell. It is invoked
// concurrently from every worker and must be safe for concurrent use;
// the façade wraps it with its own output mutex.
type Callback func(Result)

// Splitter runs the parallel quad-cell differencing pass over a sealed
// spatial tree.
type Splitter struct {
	cfg       Config
	tree      *spatialtree.ReadOnly
	converter feature.CellBoundsConverter
	quant     lattice.Quantizer
	callback  Callback
	q         *queue
}

// New builds a Splitter seeded with all cells at cfg.BaseLevel.
func New(cfg Config, tree *spatialtree.ReadOnly, converter feature.CellBoundsConverter, quant lattice.Quantizer, callback Callback) *Splitter {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Splitter{
		cfg:       cfg,
		tree:      tree,
		converter: converter,
		quant:     quant,
		callback:  callback,
		q:         newQueue(cellid.AllAtLevel(cfg.BaseLevel)),
	}
}

// Run spawns cfg.Workers workers and blocks until the work queue
// reaches quiescence. There is no cancellation: the splitter always
// runs to completion once started, per its batch contract.
func (s *Splitter) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			s.worker()
			return gctx.Err()
		})
	}
	return g.Wait()
}

// Progress satisfies metrics.ProgressSource.
func (s *Splitter) Progress() metrics.Progress {
	depth, inFlight, emitted := s.q.snapshot()
	return metrics.Progress{QueueDepth: depth, InFlight: inFlight, CellsEmitted: emitted}
}

func (s *Splitter) worker() {
	for {
		cell, ok := s.q.pop()
		if !ok {
			return
		}

		results, subdivide := s.processCell(cell)
		if subdivide {
			logger.Named("splitter").Debug("subdividing over-budget cell",
				zap.Uint("level", cell.Level()), zap.String("cell", cell.String()))
			children := cell.Children()
			s.q.push(children[0], children[1], children[2], children[3])
			s.q.done(false)
			continue
		}

		if len(results) == 0 {
			// Zero-area cell fully covered by indexed land: acceptable,
			// nothing to emit.
			s.q.done(false)
			continue
		}

		for _, r := range results {
			if r.PointCount() < 3 {
				panic(&region.InvariantError{Msg: "splitter: emitted region has fewer than three points"})
			}
		}

		s.callback(Result{Cell: cell, Regions: results})
		s.q.done(true)
	}
}

// processCell computes the cell's rectangle, folds every indexed land
// region intersecting it into a running difference, and decides
// whether the result should be emitted or the cell subdivided.
func (s *Splitter) processCell(cell cellid.ID) (results []*region.Region, subdivide bool) {
	bound := cell.Bounds(s.converter)
	rectR := region.NewFromPoints([]region.Point{
		s.quant.Encode(bound.Min),
		s.quant.Encode(orb.Point{bound.Max[0], bound.Min[1]}),
		s.quant.Encode(bound.Max),
		s.quant.Encode(orb.Point{bound.Min[0], bound.Max[1]}),
	})

	results = []*region.Region{rectR}

	s.tree.ForEachInRect(rectR.Rect(), func(r *region.Region) {
		if r.IsRectInside(rectR.Rect()) {
			results = append(results, r)
			return
		}
		if len(results) == 0 {
			// Envelope already fully consumed by an earlier clip; nothing
			// left for this land region to subtract from.
			return
		}
		pieces := region.IntersectRegions(results[0], r)
		results = append(pieces, results[1:]...)
	})

	total := 0
	for _, r := range results {
		total += r.PointCount()
	}

	if cell.Level() < s.cfg.MaxLevel && total >= s.cfg.PointBudget {
		return nil, true
	}
	return results, false
}
