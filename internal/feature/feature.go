// Package feature declares the external collaborator interfaces the
// geometry core consumes: the feature container the surrounding program
// owns, the type classifier, and the cell-to-mercator-bounds lookup. The
// core compiles and tests standalone against fakes of these interfaces;
// it never implements them itself.
package feature

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Builder is the feature container the surrounding program owns. The
// core treats it as opaque beyond these operations: it appends
// polygons, reads way ids and point counts off already-parsed input,
// and tags the finished feature with area, type, and cell id.
type Builder interface {
	// IsGeometryClosed reports whether the input geometry arrived
	// already closed (a ring) versus open (a polyline needing splicing).
	IsGeometryClosed() bool

	// ForEachPolygon visits each polygon ring (or, for open geometry,
	// each polyline) of the input geometry, in mercator-space points.
	// A closed ring may repeat its first vertex as the last.
	ForEachPolygon(visit func(points []orb.Point))

	// PointsCount returns the total vertex count across all polygons.
	PointsCount() int

	// FirstOSMID and LastOSMID bound the range of OSM way ids that
	// contributed to this builder's geometry, used in unmergeable-chain
	// diagnostics.
	FirstOSMID() osm.WayID
	LastOSMID() osm.WayID

	// AddPolygon appends one output ring, in mercator-space points with
	// the closing vertex omitted.
	AddPolygon(points []orb.Point)

	// PolygonsCount returns the number of polygons added via AddPolygon
	// so far.
	PolygonsCount() int

	// SetArea records the total area of the emitted polygons: the sum of
	// each polygon's absolute area.
	SetArea(area float64)

	// AddType tags the feature with a classifier type id.
	AddType(typeID int)

	// SetCoastCell records the cell id (serialized at the splitter's
	// reference level) the feature belongs to.
	SetCoastCell(cellID int64)

	// SetWKB records the EWKB-encoded geometry of the emitted polygons,
	// for builders that store or forward a wire-ready blob rather than
	// re-deriving it from the points added via AddPolygon.
	SetWKB(data []byte)
}

// Classifier resolves the integer type id for a tag path, e.g.
// ["natural", "coastline"]. The core only ever looks up the coastline
// type, but the interface is general because the surrounding program's
// classifier usually is.
type Classifier interface {
	TypeID(path ...string) int
}

// CellBoundsConverter maps a cell, given as its raw bit-packed quadrant
// path and its level, to its mercator-space bounding rectangle. The core never
// computes cell bounds itself — levels 0 and above are a pure
// subdivision of the mercator square, and the exact corner values are
// the surrounding program's responsibility to define consistently with
// its own tiling scheme.
type CellBoundsConverter interface {
	CellBounds(cellID int64, level uint) orb.Bound
}

// CoastlinePath is the tag path the classifier is queried with to
// obtain the coastline type id, matching the original pipeline's
// natural=coastline convention.
var CoastlinePath = []string{"natural", "coastline"}
