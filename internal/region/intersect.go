package region

import (
	"math"

	"github.com/akavel/polyclip-go"
)

// IntersectRegions computes a ∩ b and returns the resulting simple
// regions, delegating to polyclip-go's Weiler-Atherton-style polygon
// clipper: lattice points are handed to it as float64 and rounded back
// to int32 on the way out. polyclip-go is needed here, rather than
// paulmach/orb's bound-only clip package, because after the first fold
// in the splitter the clip subject is itself already a clipped,
// non-rectangular polygon.
//
// Degenerate cases — shared edges, zero-area overlaps — fall out of
// polyclip-go's own general-position handling and surface here as an
// empty or short contour, which is dropped.
func IntersectRegions(a, b *Region) []*Region {
	if a.PointCount() == 0 || b.PointCount() == 0 {
		return nil
	}

	subj := dedupe(a.Points())
	clip := dedupe(b.Points())
	if len(subj) < 3 || len(clip) < 3 {
		return nil
	}

	result := toPolygon(subj).Construct(polyclip.INTERSECTION, toPolygon(clip))

	out := make([]*Region, 0, len(result))
	for _, contour := range result {
		pts := fromContour(contour)
		if len(pts) < 3 {
			continue
		}
		out = append(out, NewFromPoints(pts))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toPolygon(pts []Point) polyclip.Polygon {
	contour := make(polyclip.Contour, len(pts))
	for i, p := range pts {
		contour[i] = polyclip.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return polyclip.Polygon{contour}
}

func fromContour(c polyclip.Contour) []Point {
	out := make([]Point, len(c))
	for i, p := range c {
		out[i] = Point{X: int32(math.Round(p.X)), Y: int32(math.Round(p.Y))}
	}
	return out
}

// dedupe drops consecutive duplicate points and a trailing point that
// repeats the first (an explicit closing vertex some inputs carry).
func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
