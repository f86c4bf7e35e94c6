// Package halo keeps the boundary rows of neighbouring row-blocks consistent
// between passes of the distributed blur model.
//
// Before pass k every block sends its first row to the block above and its
// last row to the block below, then waits for the matching rows of its
// neighbours. Both rows are snapshots of generation k (the output of pass
// k-1), so no kernel read can race a neighbour's write. Blocks on the image
// boundary skip the missing side.
package halo

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/boxblur/internal/comm"
	"github.com/gogpu/boxblur/internal/partition"
)

// ErrExchange is returned when a neighbour row is unavailable, stale or
// malformed. A run that hits it must be abandoned.
var ErrExchange = errors.New("halo: exchange failed")

// Halo holds the neighbour rows a block needs for one pass. A nil side means
// the block sits on the image boundary there.
type Halo struct {
	Above []int
	Below []int
}

// Exchange swaps boundary rows of block p with its neighbours for the given
// pass. src holds the block's current generation (p.RowCount*width values).
//
// Rank p.Owner-1 is the block above and p.Owner+1 the block below.
func Exchange(ctx context.Context, c comm.Communicator, p partition.Partition, height, width, pass int, src []int) (Halo, error) {
	var h Halo

	above := p.HasAbove()
	below := p.HasBelow(height)

	if len(src) != p.RowCount*width {
		return h, fmt.Errorf("%w: rank %d holds %d values, want %d", ErrExchange, p.Owner, len(src), p.RowCount*width)
	}

	// Sends first: links are buffered, so both neighbours can send before
	// either receives.
	if above {
		m := comm.Message{Tag: comm.TagHaloUp, Pass: pass, FirstRow: p.FirstRow, Rows: src[:width]}
		if err := c.Send(ctx, p.Owner-1, m); err != nil {
			return h, fmt.Errorf("%w: rank %d pass %d send up: %w", ErrExchange, p.Owner, pass, err)
		}
	}
	if below {
		m := comm.Message{Tag: comm.TagHaloDown, Pass: pass, FirstRow: p.LastRow(), Rows: src[len(src)-width:]}
		if err := c.Send(ctx, p.Owner+1, m); err != nil {
			return h, fmt.Errorf("%w: rank %d pass %d send down: %w", ErrExchange, p.Owner, pass, err)
		}
	}

	if above {
		row, err := receive(ctx, c, p.Owner-1, comm.TagHaloDown, pass, p.FirstRow-1, width)
		if err != nil {
			return h, fmt.Errorf("rank %d upper halo: %w", p.Owner, err)
		}
		h.Above = row
	}
	if below {
		row, err := receive(ctx, c, p.Owner+1, comm.TagHaloUp, pass, p.LastRow()+1, width)
		if err != nil {
			return h, fmt.Errorf("rank %d lower halo: %w", p.Owner, err)
		}
		h.Below = row
	}

	return h, nil
}

// receive waits for one halo row and checks that it is the expected one.
func receive(ctx context.Context, c comm.Communicator, src int, tag comm.Tag, pass, row, width int) ([]int, error) {
	m, err := c.Recv(ctx, src, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: pass %d from rank %d: %w", ErrExchange, pass, src, err)
	}

	switch {
	case m.Source != src:
		return nil, fmt.Errorf("%w: pass %d expected rank %d, got rank %d", ErrExchange, pass, src, m.Source)
	case m.Pass != pass:
		return nil, fmt.Errorf("%w: stale row from rank %d (pass %d, want %d)", ErrExchange, src, m.Pass, pass)
	case m.FirstRow != row:
		return nil, fmt.Errorf("%w: rank %d sent row %d, want %d", ErrExchange, src, m.FirstRow, row)
	case len(m.Rows) != width:
		return nil, fmt.Errorf("%w: rank %d sent %d values, want %d", ErrExchange, src, len(m.Rows), width)
	}
	return m.Rows, nil
}
