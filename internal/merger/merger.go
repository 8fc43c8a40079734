// Package merger splices fragmented open coastline polylines end to end
// into closed rings, keyed by an endpoint-hash index over active
// chains, mirroring the source pipeline's coastline ring-assembly pass.
package merger

import (
	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/wegman-software/coastline-tiler/internal/lattice"
	"github.com/wegman-software/coastline-tiler/internal/logger"
)

// Point is a lattice-space endpoint.
type Point = lattice.Point

// chain is one open polyline under assembly: a sequence of points with
// two free endpoints (head and tail), plus the OSM way id range of the
// ways spliced into it so far, tracked at the matching end.
type chain struct {
	points     []Point
	firstOSMID osm.WayID
	lastOSMID  osm.WayID
}

func (c *chain) head() Point { return c.points[0] }
func (c *chain) tail() Point { return c.points[len(c.points)-1] }

func (c *chain) reverse() {
	for i, j := 0, len(c.points)-1; i < j; i, j = i+1, j-1 {
		c.points[i], c.points[j] = c.points[j], c.points[i]
	}
	c.firstOSMID, c.lastOSMID = c.lastOSMID, c.firstOSMID
}

// Residue describes one chain that remained open when Finish was
// called, for diagnostic reporting.
type Residue struct {
	FirstOSMID osm.WayID
	LastOSMID  osm.WayID
	PointCount int
}

// Merger holds the active-chain index. The zero value is not usable;
// construct with New.
type Merger struct {
	// byEndpoint maps a free endpoint to the chain it belongs to. Both
	// of a chain's endpoints appear as keys.
	byEndpoint map[Point]*chain
	closed     [][]Point
}

// New returns an empty Merger ready for Add calls.
func New() *Merger {
	return &Merger{byEndpoint: make(map[Point]*chain)}
}

// Add ingests one open polyline. points must have at least two
// elements and must not already be a closed ring (callers route closed
// geometry directly to the spatial tree, per the façade's contract).
// firstID/lastID are the OSM way id range the polyline's source way(s)
// belong to, carried through for unmergeable-residue diagnostics.
func (m *Merger) Add(points []Point, firstID, lastID osm.WayID) {
	log := logger.Named("merger")
	if len(points) < 2 {
		log.Info("ignoring degenerate polyline", zap.Int("points", len(points)))
		return
	}
	if points[0] == points[len(points)-1] {
		log.Info("ignoring polyline with coincident endpoints",
			zap.Uint64("first_osm_id", uint64(firstID)), zap.Uint64("last_osm_id", uint64(lastID)))
		return
	}

	c := &chain{points: append([]Point(nil), points...), firstOSMID: firstID, lastOSMID: lastID}
	m.absorb(c)
}

// absorb repeatedly splices any indexed chain onto c's free ends,
// always trying the head before the tail, until no further splice is
// possible or c closes into a ring.
func (m *Merger) absorb(c *chain) {
	for {
		if merged, ok := m.extendAtHead(c); ok {
			c = merged
		} else if merged, ok := m.extendAtTail(c); ok {
			c = merged
		} else {
			break
		}
		if c.head() == c.tail() {
			m.closeRing(c)
			return
		}
	}
	m.index(c)
}

// extendAtHead looks up c.head() in the index; if a chain is found
// there, it is popped out of the index and spliced onto c's head, with
// the shared vertex dropped.
func (m *Merger) extendAtHead(c *chain) (*chain, bool) {
	other, otherAtHead, ok := m.pop(c.head())
	if !ok {
		return c, false
	}
	if otherAtHead {
		other.reverse()
	}
	points := make([]Point, 0, len(other.points)+len(c.points)-1)
	points = append(points, other.points[:len(other.points)-1]...)
	points = append(points, c.points...)
	return &chain{points: points, firstOSMID: other.firstOSMID, lastOSMID: c.lastOSMID}, true
}

// extendAtTail is extendAtHead's mirror for c's tail endpoint.
func (m *Merger) extendAtTail(c *chain) (*chain, bool) {
	other, otherAtHead, ok := m.pop(c.tail())
	if !ok {
		return c, false
	}
	if !otherAtHead {
		other.reverse()
	}
	points := make([]Point, 0, len(c.points)+len(other.points)-1)
	points = append(points, c.points...)
	points = append(points, other.points[1:]...)
	return &chain{points: points, firstOSMID: c.firstOSMID, lastOSMID: other.lastOSMID}, true
}

// pop removes and returns the chain indexed at endpoint p, along with
// whether p is that chain's head (as opposed to its tail).
func (m *Merger) pop(p Point) (c *chain, atHead bool, ok bool) {
	c, ok = m.byEndpoint[p]
	if !ok {
		return nil, false, false
	}
	atHead = c.head() == p
	delete(m.byEndpoint, c.head())
	delete(m.byEndpoint, c.tail())
	return c, atHead, true
}

func (m *Merger) index(c *chain) {
	m.byEndpoint[c.head()] = c
	m.byEndpoint[c.tail()] = c
}

func (m *Merger) closeRing(c *chain) {
	m.closed = append(m.closed, c.points[:len(c.points)-1])
}

// Closed drains and returns the rings closed so far, as point slices
// with the closing vertex omitted (head == tail is implicit).
func (m *Merger) Closed() [][]Point {
	out := m.closed
	m.closed = nil
	return out
}

// Finish reports every chain still open, for diagnostic logging, and
// whether the merger's input fully closed (no residue). Residue chains
// remain indexed; Finish does not discard them, in case the caller
// wants to inspect state further, but no caller is expected to retry a
// splice after this point.
func (m *Merger) Finish() (residue []Residue, allClosed bool) {
	seen := make(map[*chain]bool)
	for _, c := range m.byEndpoint {
		if seen[c] {
			continue
		}
		seen[c] = true
		residue = append(residue, Residue{FirstOSMID: c.firstOSMID, LastOSMID: c.lastOSMID, PointCount: len(c.points)})
	}

	log := logger.Named("merger")
	for _, r := range residue {
		log.Info("unmergeable coastline residue",
			zap.Uint64("first_osm_id", uint64(r.FirstOSMID)),
			zap.Uint64("last_osm_id", uint64(r.LastOSMID)),
			zap.Int("points", r.PointCount))
	}
	return residue, len(residue) == 0
}
