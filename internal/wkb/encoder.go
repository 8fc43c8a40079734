// Package wkb encodes polygon geometry as little-endian EWKB, the wire
// format the façade attaches to emitted features alongside their raw
// point lists.
package wkb

import (
	"encoding/binary"
	"math"
)

// WKB type constants (ISO SQL/MM specification)
const (
	wkbPolygon = 3

	// SRID flag for EWKB (PostGIS extended WKB)
	wkbSRIDFlag = 0x20000000
)

// SRID3857 is the Web Mercator SRID; it is the only one this package's
// callers ever encode against.
const SRID3857 = 3857

// Encoder encodes geometries to WKB format
// Uses little-endian byte order and includes SRID (EWKB format)
type Encoder struct {
	buf  []byte
	srid uint32
}

// NewEncoderWithSRID creates a new WKB encoder with specified SRID
func NewEncoderWithSRID(initialSize int, srid int) *Encoder {
	return &Encoder{
		buf:  make([]byte, 0, initialSize),
		srid: uint32(srid),
	}
}

// SRID returns the encoder's current SRID
func (e *Encoder) SRID() int {
	return int(e.srid)
}

// Reset clears the buffer for reuse
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded WKB bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// EncodePolygonWithRings encodes a polygon with outer ring and optional inner rings (holes)
// Each ring is a flat array of [x1, y1, x2, y2, ...] in the encoder's SRID
// rings[0] is outer ring, rings[1:] are inner rings (holes)
func (e *Encoder) EncodePolygonWithRings(rings [][]float64) []byte {
	e.Reset()
	if len(rings) == 0 {
		return nil
	}

	// Calculate total size
	totalPoints := 0
	for _, ring := range rings {
		totalPoints += len(ring) / 2
	}
	// Size: 1 + 4 + 4 + 4 (num rings) + len(rings)*4 (ring sizes) + (totalPoints * 16)
	e.ensureCapacity(13 + len(rings)*4 + totalPoints*16)

	// Byte order (little-endian)
	e.buf = append(e.buf, 0x01)

	// Type with SRID flag
	e.appendUint32(wkbPolygon | wkbSRIDFlag)

	// SRID
	e.appendUint32(e.srid)

	// Number of rings
	e.appendUint32(uint32(len(rings)))

	// Each ring
	for _, ring := range rings {
		numPoints := len(ring) / 2
		e.appendUint32(uint32(numPoints))
		for i := 0; i < len(ring); i += 2 {
			e.appendFloat64(ring[i])   // x
			e.appendFloat64(ring[i+1]) // y
		}
	}

	return e.buf
}

func (e *Encoder) ensureCapacity(n int) {
	if cap(e.buf) < n {
		e.buf = make([]byte, 0, n)
	}
}

func (e *Encoder) appendUint32(v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	e.buf = append(e.buf, b...)
}

func (e *Encoder) appendFloat64(v float64) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	e.buf = append(e.buf, b...)
}
