package wkb

import "github.com/paulmach/orb"

// EncodePolygonFromRings flattens orb.Point rings (outer ring first,
// any remaining rings are holes) into the coordinate arrays
// EncodePolygonWithRings expects and encodes them as a single EWKB
// polygon. Each ring is assumed closed implicitly; the caller must not
// repeat the first vertex as the last.
func (e *Encoder) EncodePolygonFromRings(rings [][]orb.Point) []byte {
	flat := make([][]float64, len(rings))
	for i, ring := range rings {
		flat[i] = flattenClosed(ring)
	}
	return e.EncodePolygonWithRings(flat)
}

// flattenClosed lays out a ring as [x0,y0,x1,y1,...,xn,yn,x0,y0],
// re-closing it since the region package's rings omit the repeated
// closing vertex that WKB requires.
func flattenClosed(points []orb.Point) []float64 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		out = append(out, p[0], p[1])
	}
	out = append(out, points[0][0], points[0][1])
	return out
}
