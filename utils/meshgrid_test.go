package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestGrid2D(t *testing.T) {
	xs := Arange(0, 0.5, 3)
	test.That(t, xs, test.ShouldResemble, []float64{0, 0.5, 1})
	ys := Arange(10, 1, 2)

	grid := Grid2D(xs, ys)
	rows, cols := grid.Dims()
	test.That(t, rows, test.ShouldEqual, 6)
	test.That(t, cols, test.ShouldEqual, 2)
	// x varies fastest
	test.That(t, grid.RawRowView(0), test.ShouldResemble, []float64{0, 10})
	test.That(t, grid.RawRowView(1), test.ShouldResemble, []float64{0.5, 10})
	test.That(t, grid.RawRowView(3), test.ShouldResemble, []float64{0, 11})
	test.That(t, grid.RawRowView(5), test.ShouldResemble, []float64{1, 11})

	test.That(t, Grid2D(nil, ys).IsEmpty(), test.ShouldBeTrue)
}
