// Package iterate drives a fixed number of blur passes over a pair of buffers.
//
// Every pass walks the same stages:
//
//	Idle -> (HaloSync -> Apply -> Swap) x N -> Done
//
// HaloSync refreshes whatever neighbour data the pass needs, Apply writes the
// next generation into the destination buffer, and Swap exchanges the roles of
// the two buffers without copying. The controller never stops early.
package iterate

import (
	"context"
	"errors"
	"fmt"
)

// ErrBuffers is returned when the source and destination buffers cannot hold
// alternating generations.
var ErrBuffers = errors.New("iterate: invalid buffer pair")

// Stage is a state of the per-worker iteration state machine.
type Stage int

const (
	// StageIdle is the state before the first pass.
	StageIdle Stage = iota

	// StageHaloSync refreshes neighbour rows for the coming pass.
	StageHaloSync

	// StageApply computes the next generation.
	StageApply

	// StageSwap exchanges the source and destination buffers.
	StageSwap

	// StageDone is the terminal state after the last pass.
	StageDone
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageHaloSync:
		return "HaloSync"
	case StageApply:
		return "Apply"
	case StageSwap:
		return "Swap"
	case StageDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Controller runs Passes iterations of Sync followed by Apply.
type Controller struct {
	// Passes is the number of passes to run. Zero leaves the source as is.
	Passes int

	// Sync prepares pass number pass, reading the current generation from src.
	// A nil Sync is a no-op.
	Sync func(ctx context.Context, pass int, src []int) error

	// Apply writes generation pass+1 into dst from src. It is required.
	Apply func(pass int, dst, src []int) error

	// Observe, if set, is called on every stage transition.
	Observe func(stage Stage, pass int)

	stage Stage
}

// Stage returns the current state.
func (c *Controller) Stage() Stage {
	return c.stage
}

func (c *Controller) enter(stage Stage, pass int) {
	c.stage = stage
	if c.Observe != nil {
		c.Observe(stage, pass)
	}
}

// Run executes all passes. It returns the buffer that holds the final
// generation, which is src when Passes is zero and otherwise whichever of the
// two buffers the last Swap left in the source role.
//
// ctx is checked once per pass boundary; a cancelled run returns ctx.Err()
// and no buffer.
func (c *Controller) Run(ctx context.Context, src, dst []int) ([]int, error) {
	if c.Apply == nil {
		return nil, fmt.Errorf("%w: no apply function", ErrBuffers)
	}
	if c.Passes < 0 {
		return nil, fmt.Errorf("%w: %d passes", ErrBuffers, c.Passes)
	}
	if c.Passes > 0 && len(src) != len(dst) {
		return nil, fmt.Errorf("%w: source has %d values, destination %d", ErrBuffers, len(src), len(dst))
	}

	c.enter(StageIdle, 0)

	for pass := range c.Passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.enter(StageHaloSync, pass)
		if c.Sync != nil {
			if err := c.Sync(ctx, pass, src); err != nil {
				return nil, err
			}
		}

		c.enter(StageApply, pass)
		if err := c.Apply(pass, dst, src); err != nil {
			return nil, err
		}

		c.enter(StageSwap, pass)
		src, dst = dst, src
	}

	c.enter(StageDone, c.Passes)
	return src, nil
}
