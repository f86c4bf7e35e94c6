// Package assemble rebuilds a full grid from the row-blocks gathered from the
// workers of a distributed blur run.
package assemble

import (
	"errors"
	"fmt"

	"github.com/gogpu/boxblur/internal/partition"
)

// ErrIncomplete is returned when the gathered blocks do not tile the grid
// exactly as the partition plan says.
var ErrIncomplete = errors.New("assemble: incomplete gather")

// Block is one worker's final rows.
type Block struct {
	Owner    int
	FirstRow int
	RowCount int
	Pixels   []int
}

// Assemble copies blocks into a new width*height buffer following parts.
//
// Every partition must have exactly one block from its owner, starting at the
// same row, with the same row count and RowCount*width pixels. Blocks may
// arrive in any order; placement always follows FirstRow.
func Assemble(width, height int, parts []partition.Partition, blocks []Block) ([]int, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrIncomplete, width, height)
	}

	byOwner := make(map[int]Block, len(blocks))
	for _, b := range blocks {
		if _, dup := byOwner[b.Owner]; dup {
			return nil, fmt.Errorf("%w: duplicate block from worker %d", ErrIncomplete, b.Owner)
		}
		byOwner[b.Owner] = b
	}
	if len(byOwner) != len(parts) {
		return nil, fmt.Errorf("%w: %d blocks for %d partitions", ErrIncomplete, len(byOwner), len(parts))
	}

	out := make([]int, width*height)
	rows := 0
	next := 0
	for _, p := range parts {
		b, ok := byOwner[p.Owner]
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: missing block from worker %d", ErrIncomplete, p.Owner)
		case p.FirstRow != next:
			return nil, fmt.Errorf("%w: partition %d starts at row %d, want %d", ErrIncomplete, p.Owner, p.FirstRow, next)
		case b.FirstRow != p.FirstRow:
			return nil, fmt.Errorf("%w: worker %d block starts at row %d, want %d", ErrIncomplete, p.Owner, b.FirstRow, p.FirstRow)
		case b.RowCount != p.RowCount:
			return nil, fmt.Errorf("%w: worker %d sent %d rows, want %d", ErrIncomplete, p.Owner, b.RowCount, p.RowCount)
		case len(b.Pixels) != p.RowCount*width:
			return nil, fmt.Errorf("%w: worker %d sent %d pixels, want %d", ErrIncomplete, p.Owner, len(b.Pixels), p.RowCount*width)
		}

		lo, hi := p.Span(width)
		if hi > len(out) {
			return nil, fmt.Errorf("%w: worker %d rows end past row %d", ErrIncomplete, p.Owner, height-1)
		}
		copy(out[lo:hi], b.Pixels)

		rows += p.RowCount
		next = p.FirstRow + p.RowCount
	}

	if rows != height {
		return nil, fmt.Errorf("%w: assembled %d rows, want %d", ErrIncomplete, rows, height)
	}
	return out, nil
}
