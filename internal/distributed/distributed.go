// Package distributed runs the blur as a set of ranks that share no memory.
//
// Rank 0 owns the input grid. It broadcasts the header, scatters one row-block
// to every rank, and after the last pass gathers the blocks back and
// assembles the output. In between, each rank only ever talks to the ranks
// directly above and below it, once per pass, through the halo exchange.
package distributed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/boxblur/internal/assemble"
	"github.com/gogpu/boxblur/internal/bufpool"
	"github.com/gogpu/boxblur/internal/comm"
	"github.com/gogpu/boxblur/internal/filter"
	"github.com/gogpu/boxblur/internal/halo"
	"github.com/gogpu/boxblur/internal/iterate"
	"github.com/gogpu/boxblur/internal/partition"
)

// ErrTransfer is returned when the header broadcast or the initial scatter
// does not deliver what the partition plan expects.
var ErrTransfer = errors.New("distributed: block transfer failed")

// root is the rank that owns the input and the output.
const root = 0

// linkDepth is the number of messages buffered per link. Two lets a rank
// queue its pass k+1 rows while a slower neighbour still holds pass k.
const linkDepth = 2

// Config controls a distributed run.
type Config struct {
	// Workers is the number of ranks. It must not exceed the grid height.
	Workers int

	// Iterations is the number of blur passes.
	Iterations int

	// Logger receives per-rank diagnostics. Nil disables logging.
	Logger *slog.Logger

	// passHook, when set, runs before every halo exchange and can fail a rank.
	passHook func(rank, pass int) error
}

// Run blurs a width*height grid and returns the assembled result. pixels is
// only read; the result is a new buffer.
func Run(ctx context.Context, cfg Config, width, height, maxval int, pixels []int) ([]int, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	parts, err := partition.Split(height, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if width < 1 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrTransfer, len(pixels), width, height)
	}

	net := comm.NewNetwork(len(parts), linkDepth)
	defer net.Close()

	g, gctx := errgroup.WithContext(ctx)

	var result []int
	for rank := range net.Size() {
		r := &rankRunner{
			comm:       net.Comm(rank),
			iterations: cfg.Iterations,
			log:        log.With("rank", rank),
			passHook:   cfg.passHook,
		}
		if rank == root {
			r.header = []int{width, height, maxval}
			r.input = pixels
		}

		g.Go(func() error {
			// A failing rank cancels gctx, which unblocks neighbours waiting on
			// its halo rows.
			out, err := r.run(gctx)
			if err != nil {
				return err
			}
			if rank == root {
				result = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// rankRunner is the state private to one rank.
type rankRunner struct {
	comm       comm.Communicator
	iterations int
	log        *slog.Logger
	passHook   func(rank, pass int) error

	// Root only.
	header []int
	input  []int
}

func (r *rankRunner) run(ctx context.Context) ([]int, error) {
	rank := r.comm.Rank()

	header, err := comm.Bcast(ctx, r.comm, root, comm.TagHeader, r.header)
	if err != nil {
		return nil, fmt.Errorf("%w: rank %d header: %w", ErrTransfer, rank, err)
	}
	if len(header) != 3 {
		return nil, fmt.Errorf("%w: rank %d got %d header values", ErrTransfer, rank, len(header))
	}
	width, height := header[0], header[1]

	// Every rank derives the same plan from the header.
	parts, err := partition.Split(height, r.comm.Size())
	if err != nil {
		return nil, err
	}
	p := parts[rank]

	firstRows := make([]int, len(parts))
	for i, part := range parts {
		firstRows[i] = part.FirstRow
	}
	block, err := comm.Scatterv(ctx, r.comm, root, r.input, partition.Counts(parts, width), firstRows)
	if err != nil {
		return nil, fmt.Errorf("%w: rank %d scatter: %w", ErrTransfer, rank, err)
	}
	if block.FirstRow != p.FirstRow || len(block.Rows) != p.RowCount*width {
		return nil, fmt.Errorf("%w: rank %d got rows %d+%d values, want %d+%d",
			ErrTransfer, rank, block.FirstRow, len(block.Rows), p.FirstRow, p.RowCount*width)
	}
	r.log.Debug("block received", "first_row", p.FirstRow, "rows", p.RowCount)

	final, err := r.iterate(ctx, p, width, height, block.Rows)
	if err != nil {
		return nil, err
	}

	msgs, err := comm.Gather(ctx, r.comm, root, comm.Message{FirstRow: p.FirstRow, Rows: final})
	if err != nil {
		return nil, fmt.Errorf("%w: rank %d gather: %w", assemble.ErrIncomplete, rank, err)
	}
	if rank != root {
		bufpool.Put(final)
		return nil, nil
	}

	blocks := make([]assemble.Block, len(msgs))
	for i, m := range msgs {
		blocks[i] = assemble.Block{
			Owner:    m.Source,
			FirstRow: m.FirstRow,
			RowCount: len(m.Rows) / width,
			Pixels:   m.Rows,
		}
	}
	out, err := assemble.Assemble(width, height, parts, blocks)
	if err != nil {
		return nil, err
	}
	r.log.Debug("gathered", "blocks", len(blocks))
	return out, nil
}

// iterate runs the pass loop for block p and returns its final generation.
func (r *rankRunner) iterate(ctx context.Context, p partition.Partition, width, height int, src []int) ([]int, error) {
	dst := bufpool.Get(len(src))
	var h halo.Halo

	ctrl := &iterate.Controller{
		Passes: r.iterations,
		Sync: func(ctx context.Context, pass int, src []int) error {
			if r.passHook != nil {
				if err := r.passHook(p.Owner, pass); err != nil {
					return err
				}
			}
			var err error
			h, err = halo.Exchange(ctx, r.comm, p, height, width, pass, src)
			if err != nil {
				return err
			}
			r.log.Debug("halo exchanged", "pass", pass, "above", h.Above != nil, "below", h.Below != nil)
			return nil
		},
		Apply: func(pass int, dst, src []int) error {
			w := filter.Window{Width: width, Above: h.Above, Rows: src, Below: h.Below}
			if err := filter.Apply(dst, w); err != nil {
				return fmt.Errorf("rank %d pass %d: %w", p.Owner, pass, err)
			}
			r.log.Debug("pass applied", "pass", pass, "rows", p.RowCount)
			return nil
		},
	}

	final, err := ctrl.Run(ctx, src, dst)
	if err != nil {
		return nil, err
	}

	// Hand the spare generation back; the final one moves on to the gather.
	if &final[0] == &src[0] {
		bufpool.Put(dst)
	} else {
		bufpool.Put(src)
	}
	return final, nil
}
