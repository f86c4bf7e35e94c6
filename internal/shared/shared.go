// Package shared runs the blur on goroutines that share one pair of buffers.
//
// Each pass reads only the source buffer and writes only the destination
// buffer, so the row-blocks of a pass need no locking. The worker pool's
// ParallelFor returns only after every block is written, and the buffers swap
// roles only after that barrier.
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/boxblur/internal/bufpool"
	"github.com/gogpu/boxblur/internal/filter"
	"github.com/gogpu/boxblur/internal/iterate"
	"github.com/gogpu/boxblur/internal/parallel"
	"github.com/gogpu/boxblur/internal/partition"
)

// Config controls a shared-memory run.
type Config struct {
	// Workers is the number of goroutines. Values above the grid height are
	// clamped; values below 1 are rejected.
	Workers int

	// Iterations is the number of blur passes.
	Iterations int

	// Logger receives per-pass diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Run blurs a width*height grid and returns the result in a new buffer.
// pixels is only read.
func Run(ctx context.Context, cfg Config, width, height int, pixels []int) ([]int, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: %d workers", partition.ErrInvalid, cfg.Workers)
	}
	if height < 1 || width < 1 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", filter.ErrInput, len(pixels), width, height)
	}

	pool := parallel.NewWorkerPool(min(cfg.Workers, height))
	defer pool.Close()

	parts, err := partition.Split(height, pool.Workers())
	if err != nil {
		return nil, err
	}
	log.Debug("blocks planned", "blocks", len(parts), "rows", parts[0].RowCount, "last_rows", parts[len(parts)-1].RowCount)

	src := bufpool.Get(len(pixels))
	copy(src, pixels)
	dst := bufpool.Get(len(pixels))

	errs := make([]error, len(parts))
	ctrl := &iterate.Controller{
		Passes: cfg.Iterations,
		Apply: func(pass int, dst, src []int) error {
			pool.ParallelFor(len(parts), func(start, end int) {
				for i := start; i < end; i++ {
					lo, hi := parts[i].Span(width)
					errs[i] = filter.Apply(dst[lo:hi], filter.SharedWindow(src, width, height, parts[i]))
				}
			})

			if err := errors.Join(errs...); err != nil {
				return fmt.Errorf("pass %d: %w", pass, err)
			}
			log.Debug("pass applied", "pass", pass, "blocks", len(parts))
			return nil
		},
	}

	final, err := ctrl.Run(ctx, src, dst)
	if err != nil {
		bufpool.Put(src)
		bufpool.Put(dst)
		return nil, err
	}

	if &final[0] == &src[0] {
		bufpool.Put(dst)
	} else {
		bufpool.Put(src)
	}
	return final, nil
}
