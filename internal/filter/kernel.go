package filter

import (
	"errors"
	"fmt"

	"github.com/gogpu/boxblur/internal/partition"
)

// ErrInput is returned when a window or destination buffer is malformed.
var ErrInput = errors.New("filter: malformed kernel input")

// Radius is the kernel half-size; the neighbourhood is (2*Radius+1) square.
const Radius = 1

// Window is the read-only view a kernel pass works on.
//
// Rows holds RowCount()*Width source values in row-major order. Above and
// Below are single rows of Width values taken from the previous generation of
// the neighbouring blocks, or nil when the block touches the image boundary.
type Window struct {
	Width int
	Above []int
	Rows  []int
	Below []int
}

// RowCount returns the number of rows owned by the window.
func (w Window) RowCount() int {
	if w.Width <= 0 {
		return 0
	}
	return len(w.Rows) / w.Width
}

// row returns local row i, where -1 is the upper halo and RowCount() the
// lower halo.
func (w Window) row(i int) []int {
	switch {
	case i < 0:
		return w.Above
	case i >= w.RowCount():
		return w.Below
	default:
		return w.Rows[i*w.Width : (i+1)*w.Width]
	}
}

// rowRange returns the inclusive range of local rows that are valid
// neighbours of local row i.
func (w Window) rowRange(i int) (lo, hi int) {
	lo, hi = i-Radius, i+Radius
	if lo < 0 && w.Above == nil {
		lo = 0
	}
	if last := w.RowCount() - 1; hi > last && w.Below == nil {
		hi = last
	}
	return lo, hi
}

// Validate checks the window against a destination buffer of dstLen elements.
func (w Window) Validate(dstLen int) error {
	if w.Width <= 0 {
		return fmt.Errorf("%w: width %d", ErrInput, w.Width)
	}
	if len(w.Rows) == 0 || len(w.Rows)%w.Width != 0 {
		return fmt.Errorf("%w: %d source values for width %d", ErrInput, len(w.Rows), w.Width)
	}
	if w.Above != nil && len(w.Above) != w.Width {
		return fmt.Errorf("%w: upper halo has %d values, want %d", ErrInput, len(w.Above), w.Width)
	}
	if w.Below != nil && len(w.Below) != w.Width {
		return fmt.Errorf("%w: lower halo has %d values, want %d", ErrInput, len(w.Below), w.Width)
	}
	if dstLen != len(w.Rows) {
		return fmt.Errorf("%w: destination has %d values, want %d", ErrInput, dstLen, len(w.Rows))
	}
	return nil
}

// SharedWindow builds the window for block p over a full-grid buffer.
//
// The halos are the rows directly above and below the block in src itself,
// which is how the shared-memory model reads its neighbours.
func SharedWindow(src []int, width, height int, p partition.Partition) Window {
	lo, hi := p.Span(width)
	w := Window{Width: width, Rows: src[lo:hi]}
	if p.HasAbove() {
		w.Above = src[lo-width : lo]
	}
	if p.HasBelow(height) {
		w.Below = src[hi : hi+width]
	}
	return w
}

// Neighbours returns how many pixels the kernel averages for a pixel whose
// valid rows span rows and which sits in column col of a row of the given
// width.
func Neighbours(rows, col, width int) int {
	c0 := max(col-Radius, 0)
	c1 := min(col+Radius, width-1)
	return rows * (c1 - c0 + 1)
}
