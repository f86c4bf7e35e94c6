package boxblur

import "fmt"

// MaxSampleValue is the largest MaxVal a Grid may declare. It matches the
// 16-bit limit of the PGM format.
const MaxSampleValue = 65535

// Grid is a single-channel integer image stored row-major.
//
// The pixel at row r, column c is Pixels[r*Width+c]. A valid Grid has
// positive dimensions, a MaxVal in [1, MaxSampleValue] and every pixel in
// [0, MaxVal].
type Grid struct {
	Width  int
	Height int
	MaxVal int
	Pixels []int
}

// NewGrid creates a zero-filled grid.
func NewGrid(width, height, maxval int) (*Grid, error) {
	g := &Grid{Width: width, Height: height, MaxVal: maxval}
	if width <= 0 || height <= 0 || maxval <= 0 || maxval > MaxSampleValue {
		return nil, fmt.Errorf("%w: %dx%d grid with maxval %d", ErrKernelInput, width, height, maxval)
	}
	g.Pixels = make([]int, width*height)
	return g, nil
}

// Validate reports ErrKernelInput if the grid is malformed.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrKernelInput)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrKernelInput, g.Width, g.Height)
	}
	if g.MaxVal <= 0 || g.MaxVal > MaxSampleValue {
		return fmt.Errorf("%w: maxval %d outside [1, %d]", ErrKernelInput, g.MaxVal, MaxSampleValue)
	}
	if len(g.Pixels) != g.Width*g.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrKernelInput, len(g.Pixels), g.Width, g.Height)
	}
	for i, v := range g.Pixels {
		if v < 0 || v > g.MaxVal {
			return fmt.Errorf("%w: pixel (%d,%d) = %d outside [0, %d]",
				ErrKernelInput, i/g.Width, i%g.Width, v, g.MaxVal)
		}
	}
	return nil
}

// At returns the pixel at row r, column c.
func (g *Grid) At(r, c int) int {
	return g.Pixels[r*g.Width+c]
}

// Set stores v at row r, column c.
func (g *Grid) Set(r, c, v int) {
	g.Pixels[r*g.Width+c] = v
}

// Row returns row r as a slice sharing the grid's storage.
func (g *Grid) Row(r int) []int {
	return g.Pixels[r*g.Width : (r+1)*g.Width]
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{
		Width:  g.Width,
		Height: g.Height,
		MaxVal: g.MaxVal,
		Pixels: append([]int(nil), g.Pixels...),
	}
}

// Equal reports whether two grids have the same header and pixels.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.Width != other.Width || g.Height != other.Height || g.MaxVal != other.MaxVal {
		return false
	}
	if len(g.Pixels) != len(other.Pixels) {
		return false
	}
	for i, v := range g.Pixels {
		if other.Pixels[i] != v {
			return false
		}
	}
	return true
}
