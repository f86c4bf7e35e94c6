// Package comm is the message-passing layer of the distributed blur model.
//
// Ranks 0..Size()-1 share no memory: every value that crosses a rank boundary
// travels inside a Message through a Communicator. The interface is a small
// MPI-like subset (point-to-point Send/Recv plus a few collectives built on
// top of them). Network is the in-process implementation, one buffered link
// per (source, destination, tag).
package comm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Errors reported by communicators.
var (
	// ErrClosed is returned when the network was shut down before a message
	// could be delivered or received.
	ErrClosed = errors.New("comm: link closed")

	// ErrRank is returned when a rank is outside [0, Size()).
	ErrRank = errors.New("comm: rank out of range")
)

// Tag distinguishes independent message streams between the same two ranks.
type Tag int

const (
	// TagHeader carries the grid header broadcast by the root.
	TagHeader Tag = iota

	// TagScatter carries a rank's initial row-block.
	TagScatter

	// TagHaloDown carries a block's last row to the rank below it.
	TagHaloDown

	// TagHaloUp carries a block's first row to the rank above it.
	TagHaloUp

	// TagGather carries a rank's final row-block back to the root.
	TagGather
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagHeader:
		return "Header"
	case TagScatter:
		return "Scatter"
	case TagHaloDown:
		return "HaloDown"
	case TagHaloUp:
		return "HaloUp"
	case TagGather:
		return "Gather"
	default:
		return "Unknown"
	}
}

// Message is the unit of transfer between ranks.
type Message struct {
	Tag      Tag
	Source   int
	Pass     int
	FirstRow int
	Rows     []int
}

// Communicator is one rank's endpoint on a network.
//
// Send and Recv block until the message is handed over, the network is
// closed, or ctx is done. Messages on the same (source, destination, tag)
// link are delivered in order.
type Communicator interface {
	Rank() int
	Size() int
	Send(ctx context.Context, dst int, m Message) error
	Recv(ctx context.Context, src int, tag Tag) (Message, error)
}

type linkKey struct {
	src, dst int
	tag      Tag
}

// Network is an in-process message-passing network of Size() ranks.
//
// Thread safety: Network and the communicators it hands out are safe for
// concurrent use.
type Network struct {
	size  int
	depth int

	mu    sync.Mutex
	links map[linkKey]chan Message

	closeOnce sync.Once
	closed    chan struct{}
}

// NewNetwork creates a network of size ranks. depth is the number of messages
// a link buffers before Send blocks; values below 1 are raised to 1.
func NewNetwork(size, depth int) *Network {
	return &Network{
		size:   size,
		depth:  max(depth, 1),
		links:  make(map[linkKey]chan Message),
		closed: make(chan struct{}),
	}
}

// Size returns the number of ranks.
func (n *Network) Size() int {
	return n.size
}

// Comm returns the endpoint of the given rank.
func (n *Network) Comm(rank int) Communicator {
	return &endpoint{net: n, rank: rank}
}

// Close shuts the network down. Pending and future Send and Recv calls fail
// with ErrClosed. Close is safe to call multiple times.
func (n *Network) Close() {
	n.closeOnce.Do(func() { close(n.closed) })
}

// link returns the channel for a (src, dst, tag) triple, creating it on first
// use.
func (n *Network) link(src, dst int, tag Tag) chan Message {
	key := linkKey{src: src, dst: dst, tag: tag}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.links[key]
	if !ok {
		ch = make(chan Message, n.depth)
		n.links[key] = ch
	}
	return ch
}

func (n *Network) checkRank(rank int) error {
	if rank < 0 || rank >= n.size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrRank, rank, n.size)
	}
	return nil
}

// endpoint implements Communicator for one rank of a Network.
type endpoint struct {
	net  *Network
	rank int
}

func (e *endpoint) Rank() int { return e.rank }
func (e *endpoint) Size() int { return e.net.size }

// Send copies m.Rows and delivers the message to dst. Source is stamped with
// the sender's rank.
func (e *endpoint) Send(ctx context.Context, dst int, m Message) error {
	if err := e.net.checkRank(dst); err != nil {
		return err
	}

	m.Source = e.rank
	if m.Rows != nil {
		m.Rows = append([]int(nil), m.Rows...)
	}

	select {
	case <-e.net.closed:
		return fmt.Errorf("%w: send %s %d->%d", ErrClosed, m.Tag, e.rank, dst)
	default:
	}

	select {
	case e.net.link(e.rank, dst, m.Tag) <- m:
		return nil
	case <-e.net.closed:
		return fmt.Errorf("%w: send %s %d->%d", ErrClosed, m.Tag, e.rank, dst)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv waits for the next message from src on tag.
func (e *endpoint) Recv(ctx context.Context, src int, tag Tag) (Message, error) {
	if err := e.net.checkRank(src); err != nil {
		return Message{}, err
	}

	select {
	case <-e.net.closed:
		return Message{}, fmt.Errorf("%w: recv %s %d<-%d", ErrClosed, tag, e.rank, src)
	default:
	}

	select {
	case m := <-e.net.link(src, e.rank, tag):
		return m, nil
	case <-e.net.closed:
		return Message{}, fmt.Errorf("%w: recv %s %d<-%d", ErrClosed, tag, e.rank, src)
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
