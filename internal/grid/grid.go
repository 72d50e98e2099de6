// Package grid implements the rectangular occupancy raster that robots
// navigate. A cell's code is 0 for accessible, any non-zero code for
// blocked; dimensions are fixed at construction.
package grid

import "github.com/orangedot/fleetctl/internal/fleeterr"

// Grid is a W x H raster of cell codes, stored row-major.
type Grid struct {
	width, height int
	cells         []int16
}

// New creates a Grid of the given dimensions, all cells accessible.
// Fails InvalidArgument when w<=0 or h<=0.
func New(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fleeterr.New(fleeterr.InvalidArgument, "grid dimensions must be positive")
	}
	return &Grid{
		width:  w,
		height: h,
		cells:  make([]int16, w*h),
	}, nil
}

// Width returns the grid's fixed width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid's fixed height.
func (g *Grid) Height() int { return g.height }

// IsValidPosition reports whether (x,y) lies within [0,W) x [0,H).
func (g *Grid) IsValidPosition(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int) int { return y*g.width + x }

// Get returns the cell code at (x,y). Fails OutOfRange outside bounds.
func (g *Grid) Get(x, y int) (int16, error) {
	if !g.IsValidPosition(x, y) {
		return 0, fleeterr.New(fleeterr.OutOfRange, "cell out of bounds")
	}
	return g.cells[g.index(x, y)], nil
}

// Set writes the cell code at (x,y). Fails OutOfRange outside bounds.
func (g *Grid) Set(x, y int, v int16) error {
	if !g.IsValidPosition(x, y) {
		return fleeterr.New(fleeterr.OutOfRange, "cell out of bounds")
	}
	g.cells[g.index(x, y)] = v
	return nil
}

// IsAccessible reports whether (x,y) is accessible. Out-of-range
// coordinates are reported as inaccessible rather than raising an error.
func (g *Grid) IsAccessible(x, y int) bool {
	if !g.IsValidPosition(x, y) {
		return false
	}
	return g.cells[g.index(x, y)] == 0
}
