// Package partition splits a grid into contiguous row-blocks, one per worker.
//
// Blocks are ordered by first row and never overlap. Every block gets
// height/workers rows; the remainder goes entirely to the last block, the same
// way edge tiles absorb the leftover pixels of a tile grid.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when a grid cannot be split across the requested
// number of workers.
var ErrInvalid = errors.New("partition: invalid worker count")

// Partition is the row-block owned by one worker for the lifetime of a run.
type Partition struct {
	// Owner is the worker (rank) that owns this block.
	Owner int

	// FirstRow is the global index of the first row in the block.
	FirstRow int

	// RowCount is the number of rows in the block (always >= 1).
	RowCount int
}

// LastRow returns the global index of the last row in the block.
func (p Partition) LastRow() int {
	return p.FirstRow + p.RowCount - 1
}

// HasAbove reports whether a block exists above this one.
// The block at row 0 sits on the top image boundary.
func (p Partition) HasAbove() bool {
	return p.FirstRow > 0
}

// HasBelow reports whether a block exists below this one in a grid of the
// given height.
func (p Partition) HasBelow(height int) bool {
	return p.LastRow() < height-1
}

// Span returns the half-open element range [lo, hi) covered by the block in a
// row-major buffer of the given width.
func (p Partition) Span(width int) (lo, hi int) {
	return p.FirstRow * width, (p.FirstRow + p.RowCount) * width
}

// Split divides height rows across workers.
//
// The returned slice has exactly workers entries whose RowCount values sum to
// height. Split fails if workers < 1, height < 1, or workers > height (no
// worker may own zero rows).
func Split(height, workers int) ([]Partition, error) {
	if height < 1 {
		return nil, fmt.Errorf("%w: empty grid (height %d)", ErrInvalid, height)
	}
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d workers", ErrInvalid, workers)
	}
	if workers > height {
		return nil, fmt.Errorf("%w: %d workers for %d rows", ErrInvalid, workers, height)
	}

	base := height / workers
	parts := make([]Partition, workers)
	for i := range workers {
		parts[i] = Partition{
			Owner:    i,
			FirstRow: i * base,
			RowCount: base,
		}
	}
	// Remainder rows go to the last block.
	parts[workers-1].RowCount += height % workers

	return parts, nil
}

// Counts returns the per-owner element counts for a row-major buffer of the
// given width, in owner order. It is the send-count vector of a scatter.
func Counts(parts []Partition, width int) []int {
	counts := make([]int, len(parts))
	for i, p := range parts {
		counts[i] = p.RowCount * width
	}
	return counts
}
