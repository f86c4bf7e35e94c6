// Package filter implements the 3x3 integer box kernel applied by every
// worker of a blur run.
//
// The kernel reads a Window: a block of source rows plus at most one halo row
// above and below. A missing halo marks a true image boundary, so the
// averaging window shrinks there instead of wrapping or padding with zeros:
//   - corners average 4 pixels
//   - edges average 6 pixels
//   - everything else averages 9 pixels
//
// Rows at a block seam always see their neighbour through the halo, which
// makes the output of Apply independent of how the grid was partitioned.
package filter
