// Package boxblur applies an iterated 3x3 box blur to integer grayscale
// images in parallel.
//
// # Overview
//
// Each pass replaces every pixel with the truncated integer mean of itself
// and its in-bounds neighbours: 9 pixels in the interior, 6 along an edge and
// 4 at a corner. Passes are repeated a fixed number of times, each reading
// only the result of the previous one.
//
// # Quick Start
//
//	g, _ := boxblur.NewGrid(640, 480, 255)
//	// ... fill g.Pixels ...
//	out, err := boxblur.Blur(ctx, g, boxblur.WithIterations(20))
//
// # Parallel Models
//
// The grid is split into contiguous row-blocks, one per worker. Two models
// run the same computation:
//
//   - ModelShared: goroutines read and write one pair of shared buffers. A
//     barrier separates passes and the buffers swap roles after it.
//   - ModelDistributed: ranks own private copies of their blocks and share
//     nothing. Rank 0 scatters the blocks, the ranks exchange one boundary
//     row with each neighbour per pass, and rank 0 gathers and assembles the
//     result.
//
// For a given input and iteration count the output does not depend on the
// model or on the number of workers. BlurBoth runs both models and checks
// that.
//
// # Errors
//
// Failures are reported with the sentinel errors in this package
// (ErrInvalidPartition, ErrHaloExchange, ErrAssembly, ErrKernelInput,
// ErrInvalidConfig) and can be tested with errors.Is. Cancellation returns
// the context's error.
//
// # Logging
//
// boxblur is silent by default. Use SetLogger or WithLogger to receive
// structured log/slog output; every record of a run carries a run ID.
package boxblur
