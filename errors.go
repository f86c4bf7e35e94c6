package boxblur

import (
	"errors"
	"fmt"

	"github.com/gogpu/boxblur/internal/assemble"
	"github.com/gogpu/boxblur/internal/comm"
	"github.com/gogpu/boxblur/internal/distributed"
	"github.com/gogpu/boxblur/internal/filter"
	"github.com/gogpu/boxblur/internal/halo"
	"github.com/gogpu/boxblur/internal/partition"
)

// Errors returned by Blur. A run that fails with any of them produced no
// output; none of them is retried.
var (
	// ErrInvalidPartition is returned when the worker count does not fit the
	// grid (fewer than one worker, or more workers than rows in the
	// distributed model).
	ErrInvalidPartition = errors.New("boxblur: invalid partition")

	// ErrHaloExchange is returned when a worker could not obtain its
	// neighbours' boundary rows, or received stale or malformed ones.
	ErrHaloExchange = errors.New("boxblur: halo exchange failed")

	// ErrAssembly is returned when the final gather is missing a block or a
	// block has the wrong shape.
	ErrAssembly = errors.New("boxblur: assembly failed")

	// ErrKernelInput is returned for a malformed Grid.
	ErrKernelInput = errors.New("boxblur: invalid kernel input")

	// ErrInvalidConfig is returned for option values that cannot be used.
	ErrInvalidConfig = errors.New("boxblur: invalid configuration")

	// ErrModelMismatch is returned by BlurBoth when the two models disagree.
	ErrModelMismatch = errors.New("boxblur: models disagree")
)

// classify maps an error from the internal packages onto the public kinds.
// The internal error stays in the chain so callers can still inspect it.
func classify(err error) error {
	var kind error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, partition.ErrInvalid):
		kind = ErrInvalidPartition
	case errors.Is(err, halo.ErrExchange), errors.Is(err, distributed.ErrTransfer), errors.Is(err, comm.ErrClosed):
		kind = ErrHaloExchange
	case errors.Is(err, assemble.ErrIncomplete):
		kind = ErrAssembly
	case errors.Is(err, filter.ErrInput):
		kind = ErrKernelInput
	default:
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
