package boxblur

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/boxblur/internal/distributed"
	"github.com/gogpu/boxblur/internal/shared"
)

// Blur applies the 3x3 box blur to g the configured number of times and
// returns the result as a new grid with the same header. g is not modified.
//
// Both models return the same pixels for the same input and iteration count,
// whatever the worker count. Cancelling ctx stops the run at the next pass
// boundary and returns ctx.Err().
func Blur(ctx context.Context, g *Grid, opts ...Option) (*Grid, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		log = Logger()
	}
	log = log.With("run", uuid.NewString(), "model", o.model.String())

	log.Info("blur started",
		"width", g.Width, "height", g.Height,
		"iterations", o.iterations, "workers", o.workers)
	start := time.Now()

	pixels, err := run(ctx, o, g, log)
	if err != nil {
		log.Error("blur failed", "err", err)
		return nil, err
	}

	log.Info("blur finished", "elapsed", time.Since(start))
	return &Grid{Width: g.Width, Height: g.Height, MaxVal: g.MaxVal, Pixels: pixels}, nil
}

// run dispatches to the selected model and maps its errors.
func run(ctx context.Context, o options, g *Grid, log *slog.Logger) ([]int, error) {
	var (
		pixels []int
		err    error
	)
	switch o.model {
	case ModelDistributed:
		pixels, err = distributed.Run(ctx, distributed.Config{
			Workers:    o.workers,
			Iterations: o.iterations,
			Logger:     log,
		}, g.Width, g.Height, g.MaxVal, g.Pixels)
	default:
		if o.workers > g.Height {
			log.Warn("workers clamped to grid height", "requested", o.workers, "height", g.Height)
		}
		pixels, err = shared.Run(ctx, shared.Config{
			Workers:    o.workers,
			Iterations: o.iterations,
			Logger:     log,
		}, g.Width, g.Height, g.Pixels)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classify(err)
	}
	return pixels, nil
}

// BlurBoth runs g through both models with the same options and returns the
// shared-model result. It fails with ErrModelMismatch if the two results
// differ in any pixel. Any WithModel option is ignored.
func BlurBoth(ctx context.Context, g *Grid, opts ...Option) (*Grid, error) {
	opts = slices.Clip(opts)
	sharedOut, err := Blur(ctx, g, append(opts, WithModel(ModelShared))...)
	if err != nil {
		return nil, fmt.Errorf("shared model: %w", err)
	}
	distOut, err := Blur(ctx, g, append(opts, WithModel(ModelDistributed))...)
	if err != nil {
		return nil, fmt.Errorf("distributed model: %w", err)
	}

	if !sharedOut.Equal(distOut) {
		for i, v := range sharedOut.Pixels {
			if distOut.Pixels[i] != v {
				return nil, fmt.Errorf("%w: pixel (%d,%d) shared=%d distributed=%d",
					ErrModelMismatch, i/g.Width, i%g.Width, v, distOut.Pixels[i])
			}
		}
		return nil, ErrModelMismatch
	}
	return sharedOut, nil
}
