// Package cellid implements the quad-tree cell identifier the splitter
// schedules work by: a level and a bit-packed path from the root,
// mirroring the original pipeline's RectId.
package cellid

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/wegman-software/coastline-tiler/internal/feature"
)

// ID identifies one quad-tree cell: level 0 is the whole world, and
// each additional level quarters every cell at the level above. Path
// packs two bits per level (the child quadrant chosen at each step,
// 0..3): the root's choice is the most significant pair and the
// deepest level's choice the least significant.
type ID struct {
	level uint
	path  uint64
}

// Root returns the single level-0 cell covering the whole world.
func Root() ID { return ID{} }

// Level returns the cell's depth.
func (id ID) Level() uint { return id.level }

// Path returns the raw bit-packed quadrant path.
func (id ID) Path() uint64 { return id.path }

// Children returns the four cells one level deeper, in quadrant order.
func (id ID) Children() [4]ID {
	var out [4]ID
	for q := uint64(0); q < 4; q++ {
		out[q] = ID{level: id.level + 1, path: id.path<<2 | q}
	}
	return out
}

// AllAtLevel enumerates every cell at the given level, in path order
// (4^level cells total).
func AllAtLevel(level uint) []ID {
	n := uint64(1) << (2 * level)
	out := make([]ID, n)
	for i := uint64(0); i < n; i++ {
		out[i] = ID{level: level, path: i}
	}
	return out
}

// ToInt64 serializes the cell to a 64-bit integer keyed to refLevel,
// for use as an output feature tag: cells at a coarser level than
// refLevel have their path expanded with trailing zero quadrant
// choices, so two cells sharing a reference level compare consistently
// regardless of which depth they were actually emitted at. Panics if
// id.level exceeds refLevel, which would mean the cell is already
// deeper than the reference — a caller error.
func (id ID) ToInt64(refLevel uint) int64 {
	if id.level > refLevel {
		panic(fmt.Sprintf("cellid: level %d exceeds reference level %d", id.level, refLevel))
	}
	shift := 2 * (refLevel - id.level)
	expanded := id.path << shift
	return int64(uint64(refLevel)<<58 | expanded)
}

// Bounds returns the cell's mercator-space bounding rectangle, via the
// externally supplied converter. The core never computes cell corners
// itself.
func (id ID) Bounds(conv feature.CellBoundsConverter) orb.Bound {
	return conv.CellBounds(int64(id.path), id.level)
}

func (id ID) String() string {
	return fmt.Sprintf("cell(level=%d,path=%d)", id.level, id.path)
}
