package filter

import "sync"

// Apply runs one box-blur pass over w and writes the result to dst.
//
// Every output pixel is the sum of its valid 3x3 neighbours divided by their
// count, truncated toward zero. dst must not alias w.Rows or the halos; it
// receives exactly len(w.Rows) values. The pass works in two steps per row:
//  1. Vertical: sum the valid rows of every column into a scratch buffer
//  2. Horizontal: sum up to three adjacent column sums and divide
func Apply(dst []int, w Window) error {
	if err := w.Validate(len(dst)); err != nil {
		return err
	}

	width := w.Width
	colSum := getScratch(width)
	defer putScratch(colSum)

	for i := range w.RowCount() {
		lo, hi := w.rowRange(i)
		rows := hi - lo + 1

		// Pass 1: column sums over the valid rows
		copy(colSum, w.row(lo))
		for r := lo + 1; r <= hi; r++ {
			for c, v := range w.row(r) {
				colSum[c] += v
			}
		}

		// Pass 2: horizontal window over the column sums
		out := dst[i*width : (i+1)*width]
		for c := range width {
			c0 := max(c-Radius, 0)
			c1 := min(c+Radius, width-1)

			sum := 0
			for x := c0; x <= c1; x++ {
				sum += colSum[x]
			}
			out[c] = sum / Neighbours(rows, c, width)
		}
	}

	return nil
}

// intBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type intBuffer struct {
	data []int
}

// Scratch pool for column sums.
var scratchPool = sync.Pool{
	New: func() interface{} {
		return &intBuffer{data: make([]int, 4096)}
	},
}

// getScratch retrieves a column-sum buffer with at least width elements.
// Contents are overwritten by the caller before use.
func getScratch(width int) []int {
	wrapper := scratchPool.Get().(*intBuffer)
	if len(wrapper.data) < width {
		scratchPool.Put(wrapper)
		return make([]int, width)
	}
	return wrapper.data[:width]
}

// putScratch returns a column-sum buffer to the pool.
func putScratch(buf []int) {
	// Only pool reasonably-sized buffers
	if cap(buf) <= 1<<20 {
		scratchPool.Put(&intBuffer{data: buf[:cap(buf)]})
	}
}
