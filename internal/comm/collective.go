package comm

import (
	"context"
	"errors"
	"fmt"
)

// ErrCollective is returned when a collective receives a message that does not
// fit the operation (wrong length or unexpected sender).
var ErrCollective = errors.New("comm: collective mismatch")

// Bcast sends data from root to every other rank. Every rank, root included,
// returns its own copy of the broadcast values.
func Bcast(ctx context.Context, c Communicator, root int, tag Tag, data []int) ([]int, error) {
	if c.Rank() != root {
		m, err := c.Recv(ctx, root, tag)
		if err != nil {
			return nil, err
		}
		return m.Rows, nil
	}

	for dst := range c.Size() {
		if dst == root {
			continue
		}
		if err := c.Send(ctx, dst, Message{Tag: tag, Rows: data}); err != nil {
			return nil, err
		}
	}
	return append([]int(nil), data...), nil
}

// Scatterv splits data on root into consecutive pieces of counts[i] values and
// delivers piece i to rank i. firstRows[i] is stamped on piece i so receivers
// know where their block starts. Non-root ranks ignore data, counts and
// firstRows.
func Scatterv(ctx context.Context, c Communicator, root int, data []int, counts, firstRows []int) (Message, error) {
	if c.Rank() != root {
		return c.Recv(ctx, root, TagScatter)
	}

	if len(counts) != c.Size() || len(firstRows) != c.Size() {
		return Message{}, fmt.Errorf("%w: %d counts for %d ranks", ErrCollective, len(counts), c.Size())
	}

	var own Message
	offset := 0
	for dst, n := range counts {
		if offset+n > len(data) {
			return Message{}, fmt.Errorf("%w: scatter needs %d values, have %d", ErrCollective, offset+n, len(data))
		}
		m := Message{Tag: TagScatter, FirstRow: firstRows[dst], Rows: data[offset : offset+n]}
		offset += n

		if dst == root {
			m.Source = root
			m.Rows = append([]int(nil), m.Rows...)
			own = m
			continue
		}
		if err := c.Send(ctx, dst, m); err != nil {
			return Message{}, err
		}
	}
	return own, nil
}

// Gather collects one message from every rank on root. The result on root is
// indexed by source rank; other ranks get nil.
func Gather(ctx context.Context, c Communicator, root int, m Message) ([]Message, error) {
	m.Tag = TagGather
	if c.Rank() != root {
		return nil, c.Send(ctx, root, m)
	}

	out := make([]Message, c.Size())
	m.Source = root
	out[root] = m
	for src := range c.Size() {
		if src == root {
			continue
		}
		got, err := c.Recv(ctx, src, TagGather)
		if err != nil {
			return nil, err
		}
		if got.Source != src {
			return nil, fmt.Errorf("%w: gather slot %d filled by rank %d", ErrCollective, src, got.Source)
		}
		out[src] = got
	}
	return out, nil
}
