package utils

import "gonum.org/v1/gonum/mat"

// Arange returns n values starting at start and spaced step apart.
func Arange(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Grid2D generates the 2-dimensional grid of every (x, y) pair. Rows are ordered with y varying slowest,
// so row i*len(xs)+j holds (xs[j], ys[i]).
func Grid2D(xs, ys []float64) *mat.Dense {
	if len(xs) == 0 || len(ys) == 0 {
		return &mat.Dense{}
	}
	grid := mat.NewDense(len(xs)*len(ys), 2, nil)
	for i, y := range ys {
		for j, x := range xs {
			row := i*len(xs) + j
			grid.Set(row, 0, x)
			grid.Set(row, 1, y)
		}
	}
	return grid
}
