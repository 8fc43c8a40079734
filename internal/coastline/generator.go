// Package coastline is the façade orchestrating quantization, ring
// merging, spatial indexing, and cell splitting into the two
// operations the surrounding program drives: Process (absorb one
// input feature) and EmitFeatures (run the splitter and produce
// output feature builders).
package coastline

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/wegman-software/coastline-tiler/internal/feature"
	"github.com/wegman-software/coastline-tiler/internal/lattice"
	"github.com/wegman-software/coastline-tiler/internal/logger"
	"github.com/wegman-software/coastline-tiler/internal/merger"
	"github.com/wegman-software/coastline-tiler/internal/metrics"
	"github.com/wegman-software/coastline-tiler/internal/region"
	"github.com/wegman-software/coastline-tiler/internal/spatialtree"
	"github.com/wegman-software/coastline-tiler/internal/splitter"
	"github.com/wegman-software/coastline-tiler/internal/wkb"
)

// Generator owns the quantizer, ring merger, and spatial tree across
// the ingestion phase, then drives the cell splitter to produce output
// features. Not safe for concurrent Process calls; EmitFeatures must
// not overlap any Process call, per the tree's build-then-seal
// contract.
type Generator struct {
	quant  lattice.Quantizer
	merger *merger.Merger
	tree   *spatialtree.Tree
}

// New builds a Generator at the given lattice precision.
func New(bits uint) *Generator {
	return &Generator{
		quant:  lattice.New(bits),
		merger: merger.New(),
		tree:   spatialtree.New(),
	}
}

// Process absorbs one input feature: closed geometry is quantized and
// indexed directly; open geometry is handed to the ring merger, and
// any ring the merger closes as a result is indexed immediately.
func (g *Generator) Process(fb feature.Builder) {
	if fb.IsGeometryClosed() {
		fb.ForEachPolygon(func(points []orb.Point) {
			g.tree.Add(region.NewFromPoints(g.quantizeClosed(points)))
		})
		return
	}

	fb.ForEachPolygon(func(points []orb.Point) {
		g.merger.Add(g.quantizePoints(points), fb.FirstOSMID(), fb.LastOSMID())
	})
	for _, ring := range g.merger.Closed() {
		g.tree.Add(region.NewFromPoints(ring))
	}
}

// quantizeClosed drops the trailing vertex, which repeats the first on
// a closed input ring, before quantizing the rest.
func (g *Generator) quantizeClosed(points []orb.Point) []region.Point {
	if len(points) > 0 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	return g.quantizePoints(points)
}

func (g *Generator) quantizePoints(points []orb.Point) []region.Point {
	out := make([]region.Point, len(points))
	for i, p := range points {
		out[i] = g.quant.Encode(p)
	}
	return out
}

// Finish flushes the merger and reports whether every open coastline
// closed into a ring. The returned boolean is the only recoverable,
// user-visible outcome; everything else is a programming error.
func (g *Generator) Finish() bool {
	_, allClosed := g.merger.Finish()
	for _, ring := range g.merger.Closed() {
		g.tree.Add(region.NewFromPoints(ring))
	}
	return allClosed
}

// EmitFeatures seals the tree and runs the cell splitter, converting
// each accepted cell result into a new feature builder via newBuilder
// (the core has no way to default-construct the caller's opaque
// Builder type, so construction is injected). Each builder receives its
// polygons, total area, coastline type tag, cell id, and an EWKB-encoded
// copy of the same geometry. Results are appended under an internal
// mutex; their order is nondeterministic. Callers requiring
// deterministic output must sort by cell id afterward.
//
// When metricsInterval is positive, a metrics.Collector polls the
// splitter's queue depth, in-flight count, and emitted-cell count
// alongside process resource usage for the duration of the run. Pass
// zero to disable progress metrics entirely.
func (g *Generator) EmitFeatures(
	ctx context.Context,
	cfg splitter.Config,
	metricsInterval time.Duration,
	converter feature.CellBoundsConverter,
	classifier feature.Classifier,
	newBuilder func() feature.Builder,
) ([]feature.Builder, error) {
	ro := g.tree.Seal()
	typeID := classifier.TypeID(feature.CoastlinePath...)
	refLevel := cfg.MaxLevel + 1

	var mu sync.Mutex
	var out []feature.Builder

	callback := func(res splitter.Result) {
		b := newBuilder()
		var area float64
		rings := make([][]orb.Point, 0, len(res.Regions))
		for _, r := range res.Regions {
			pts := make([]orb.Point, r.PointCount())
			for i, p := range r.Points() {
				pts[i] = g.quant.Decode(p)
			}
			b.AddPolygon(pts)
			rings = append(rings, pts)
			area += ringArea(pts)
		}
		b.SetArea(area)
		b.AddType(typeID)
		b.SetCoastCell(res.Cell.ToInt64(refLevel))

		// A fresh encoder per call: the splitter's workers run this
		// callback concurrently, and Encoder reuses one buffer across
		// calls.
		enc := wkb.NewEncoderWithSRID(256, wkb.SRID3857)
		b.SetWKB(enc.EncodePolygonFromRings(rings))

		mu.Lock()
		out = append(out, b)
		mu.Unlock()
	}

	s := splitter.New(cfg, ro, converter, g.quant, callback)

	if metricsInterval > 0 {
		metricsCtx, stop := context.WithCancel(ctx)
		defer stop()
		collector := metrics.NewCollector(metricsInterval, logger.Named("metrics")).WithProgressSource(s)
		go collector.Start(metricsCtx)
	}

	if err := s.Run(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// ringArea computes the absolute area of a closed ring (closing edge
// implicit) via the shoelace formula. Kept local rather than reaching
// for an orb helper: orb ships geometry types, not a planar-area
// utility whose exact surface could be grounded from the retrieved
// examples.
func ringArea(points []orb.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p[0]*q[1] - q[0]*p[1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
