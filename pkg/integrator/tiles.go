package integrator

import "runtime"

// tile is a pixel-bounds block used by self-orchestrating integrators
type tile struct {
	x0, y0, x1, y1 int
}

// tileBounds splits a frame into size×size tiles; the last row and column
// may be smaller
func tileBounds(width, height, size int) []tile {
	if size <= 0 {
		size = 16
	}
	var tiles []tile
	for y0 := 0; y0 < height; y0 += size {
		for x0 := 0; x0 < width; x0 += size {
			x1 := x0 + size
			if x1 > width {
				x1 = width
			}
			y1 := y0 + size
			if y1 > height {
				y1 = height
			}
			tiles = append(tiles, tile{x0: x0, y0: y0, x1: x1, y1: y1})
		}
	}
	return tiles
}

// workerCount resolves the worker pool size: the integrator's own setting
// wins, then the scene configuration, then hardware concurrency
func workerCount(own, cfg int) int {
	if own > 0 {
		return own
	}
	if cfg > 0 {
		return cfg
	}
	return runtime.NumCPU()
}
