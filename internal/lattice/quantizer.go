// Package lattice converts between mercator space and the fixed
// precision integer lattice the geometry core operates on. Encode and
// decode are pure functions, ported from the uniform-scaling approach
// used by the source pipeline's point_coding utilities.
package lattice

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/wegman-software/coastline-tiler/internal/proj"
)

// DefaultBits is the coordinate precision used when no override is
// supplied, matching kPointCoordBits in the source pipeline.
const DefaultBits uint = 30

// WorldBounds is the fixed extent of Web Mercator space the lattice is
// stretched across.
var WorldBounds = orb.Bound{
	Min: orb.Point{-proj.WebMercatorExtent, -proj.WebMercatorExtent},
	Max: orb.Point{proj.WebMercatorExtent, proj.WebMercatorExtent},
}

// Point is a lattice-space coordinate: a pair of signed 32-bit integers
// produced by quantizing a mercator point to B bits per axis.
type Point struct {
	X, Y int32
}

// Quantizer is a stateless, construction-time-configured mapping
// between mercator points and the B-bit integer lattice.
type Quantizer struct {
	bits   uint
	bounds orb.Bound
	scale  float64
}

// New builds a Quantizer for the given bit depth over WorldBounds.
func New(bits uint) Quantizer {
	return NewWithBounds(bits, WorldBounds)
}

// NewWithBounds builds a Quantizer over an explicit mercator bound.
// Panics if bits is out of [1,31] or bounds is degenerate — both are
// construction-time programming errors, not recoverable conditions.
func NewWithBounds(bits uint, bounds orb.Bound) Quantizer {
	if bits == 0 || bits > 31 {
		panic(fmt.Sprintf("lattice: invalid precision %d bits", bits))
	}
	if bounds.Max[0] <= bounds.Min[0] || bounds.Max[1] <= bounds.Min[1] {
		panic("lattice: degenerate bounds")
	}
	return Quantizer{
		bits:   bits,
		bounds: bounds,
		scale:  float64(uint64(1)<<bits) - 1,
	}
}

// Bits returns the configured precision.
func (q Quantizer) Bits() uint { return q.bits }

// Bounds returns the mercator bound the lattice spans.
func (q Quantizer) Bounds() orb.Bound { return q.bounds }

// Encode maps a mercator point onto the lattice, rounding to nearest.
// Panics if the point falls measurably outside the configured bounds —
// spec treats lattice-range overflow as a programming error, not a
// value to silently clamp.
func (q Quantizer) Encode(p orb.Point) Point {
	return Point{
		X: encodeAxis(p[0], q.bounds.Min[0], q.bounds.Max[0], q.scale),
		Y: encodeAxis(p[1], q.bounds.Min[1], q.bounds.Max[1], q.scale),
	}
}

// Decode is the inverse of Encode; exact on the image of Encode.
func (q Quantizer) Decode(p Point) orb.Point {
	return orb.Point{
		decodeAxis(p.X, q.bounds.Min[0], q.bounds.Max[0], q.scale),
		decodeAxis(p.Y, q.bounds.Min[1], q.bounds.Max[1], q.scale),
	}
}

const overflowEpsilon = 1e-6

func encodeAxis(v, lo, hi, scale float64) int32 {
	t := (v - lo) / (hi - lo)
	if t < -overflowEpsilon || t > 1+overflowEpsilon {
		panic(fmt.Sprintf("lattice: coordinate %.3f outside bounds [%.3f, %.3f]", v, lo, hi))
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return int32(math.Round(t * scale))
}

func decodeAxis(v int32, lo, hi, scale float64) float64 {
	t := float64(v) / scale
	return lo + t*(hi-lo)
}
