package filter

// Test helper functions shared across filter tests.

// uniformGrid creates a width*height buffer filled with v.
func uniformGrid(width, height, v int) []int {
	buf := make([]int, width*height)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

// rampGrid creates a buffer whose values vary in both directions and stay
// within [0, maxval].
func rampGrid(width, height, maxval int) []int {
	buf := make([]int, width*height)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			buf[r*width+c] = (r*37 + c*11 + r*c*7) % (maxval + 1)
		}
	}
	return buf
}

// referenceBlur is a direct, unpartitioned 3x3 average over the whole grid.
func referenceBlur(src []int, width, height int) []int {
	dst := make([]int, len(src))
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			sum, count := 0, 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					nr, nc := r+dr, c+dc
					if nr >= 0 && nr < height && nc >= 0 && nc < width {
						sum += src[nr*width+nc]
						count++
					}
				}
			}
			dst[r*width+c] = sum / count
		}
	}
	return dst
}
