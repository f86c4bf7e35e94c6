package comm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork_SendRecv(t *testing.T) {
	net := NewNetwork(2, 1)
	defer net.Close()
	ctx := context.Background()

	a, b := net.Comm(0), net.Comm(1)
	assert.Equal(t, 0, a.Rank())
	assert.Equal(t, 2, b.Size())

	rows := []int{1, 2, 3}
	require.NoError(t, a.Send(ctx, 1, Message{Tag: TagHaloDown, Pass: 4, Rows: rows}))

	// The sender may reuse its buffer once Send returns.
	rows[0] = 99

	m, err := b.Recv(ctx, 0, TagHaloDown)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Source)
	assert.Equal(t, 4, m.Pass)
	assert.Equal(t, []int{1, 2, 3}, m.Rows)
}

func TestNetwork_TagsAreIndependent(t *testing.T) {
	net := NewNetwork(2, 2)
	defer net.Close()
	ctx := context.Background()

	a, b := net.Comm(0), net.Comm(1)
	require.NoError(t, a.Send(ctx, 1, Message{Tag: TagHaloUp, Pass: 1}))
	require.NoError(t, a.Send(ctx, 1, Message{Tag: TagHaloDown, Pass: 2}))

	down, err := b.Recv(ctx, 0, TagHaloDown)
	require.NoError(t, err)
	assert.Equal(t, 2, down.Pass)

	up, err := b.Recv(ctx, 0, TagHaloUp)
	require.NoError(t, err)
	assert.Equal(t, 1, up.Pass)
}

func TestNetwork_FIFOPerLink(t *testing.T) {
	net := NewNetwork(2, 8)
	defer net.Close()
	ctx := context.Background()

	for pass := range 5 {
		require.NoError(t, net.Comm(0).Send(ctx, 1, Message{Tag: TagHaloDown, Pass: pass}))
	}
	for pass := range 5 {
		m, err := net.Comm(1).Recv(ctx, 0, TagHaloDown)
		require.NoError(t, err)
		assert.Equal(t, pass, m.Pass)
	}
}

func TestNetwork_RankOutOfRange(t *testing.T) {
	net := NewNetwork(2, 1)
	defer net.Close()
	ctx := context.Background()

	err := net.Comm(0).Send(ctx, 2, Message{})
	assert.True(t, errors.Is(err, ErrRank), "Send error = %v", err)

	_, err = net.Comm(0).Recv(ctx, -1, TagGather)
	assert.True(t, errors.Is(err, ErrRank), "Recv error = %v", err)
}

func TestNetwork_CloseUnblocksRecv(t *testing.T) {
	net := NewNetwork(2, 1)

	errc := make(chan error, 1)
	go func() {
		_, err := net.Comm(1).Recv(context.Background(), 0, TagHaloDown)
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	net.Close()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, ErrClosed), "Recv error = %v, want ErrClosed", err)
	case <-time.After(time.Second):
		t.Fatal("Recv did not return after Close")
	}

	// Closed network rejects sends too.
	err := net.Comm(0).Send(context.Background(), 1, Message{Tag: TagHaloDown})
	assert.True(t, errors.Is(err, ErrClosed), "Send error = %v, want ErrClosed", err)
}

func TestNetwork_ContextCancel(t *testing.T) {
	net := NewNetwork(2, 1)
	defer net.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := net.Comm(0).Recv(ctx, 1, TagGather)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTag_String(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{TagHeader, "Header"},
		{TagScatter, "Scatter"},
		{TagHaloDown, "HaloDown"},
		{TagHaloUp, "HaloUp"},
		{TagGather, "Gather"},
		{Tag(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("Tag(%d).String() = %q, want %q", int(tt.tag), got, tt.want)
		}
	}
}

// runRanks runs fn once per rank concurrently and returns the per-rank errors.
func runRanks(net *Network, fn func(c Communicator) error) []error {
	errs := make([]error, net.Size())
	var wg sync.WaitGroup
	for r := range net.Size() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[r] = fn(net.Comm(r))
		}()
	}
	wg.Wait()
	return errs
}

func TestBcast(t *testing.T) {
	net := NewNetwork(4, 1)
	defer net.Close()

	got := make([][]int, 4)
	errs := runRanks(net, func(c Communicator) error {
		var data []int
		if c.Rank() == 0 {
			data = []int{640, 480, 255}
		}
		out, err := Bcast(context.Background(), c, 0, TagHeader, data)
		got[c.Rank()] = out
		return err
	})

	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
		assert.Equal(t, []int{640, 480, 255}, got[r], "rank %d", r)
	}
}

func TestScatterv_Gather(t *testing.T) {
	net := NewNetwork(3, 1)
	defer net.Close()

	data := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	counts := []int{2, 2, 6}
	firstRows := []int{0, 1, 2}

	var gathered []Message
	errs := runRanks(net, func(c Communicator) error {
		ctx := context.Background()
		m, err := Scatterv(ctx, c, 0, data, counts, firstRows)
		if err != nil {
			return err
		}
		if m.FirstRow != firstRows[c.Rank()] || len(m.Rows) != counts[c.Rank()] {
			return errors.New("wrong piece")
		}

		// Double every value before sending it back.
		for i := range m.Rows {
			m.Rows[i] *= 2
		}
		out, err := Gather(ctx, c, 0, m)
		if c.Rank() == 0 {
			gathered = out
		} else if out != nil {
			return errors.New("non-root received gather result")
		}
		return err
	})

	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}
	require.Len(t, gathered, 3)
	assert.Equal(t, []int{0, 2}, gathered[0].Rows)
	assert.Equal(t, []int{4, 6}, gathered[1].Rows)
	assert.Equal(t, []int{8, 10, 12, 14, 16, 18}, gathered[2].Rows)
	for r, m := range gathered {
		assert.Equal(t, r, m.Source)
		assert.Equal(t, TagGather, m.Tag)
	}

	// Root's own piece must not alias the input.
	assert.Equal(t, 0, data[0])
	assert.Equal(t, 1, data[1])
}

func TestScatterv_BadCounts(t *testing.T) {
	net := NewNetwork(2, 1)
	defer net.Close()
	ctx := context.Background()

	_, err := Scatterv(ctx, net.Comm(0), 0, []int{1, 2}, []int{2}, []int{0})
	assert.ErrorIs(t, err, ErrCollective)

	_, err = Scatterv(ctx, net.Comm(0), 0, []int{1, 2}, []int{2, 2}, []int{0, 1})
	assert.ErrorIs(t, err, ErrCollective)
}
