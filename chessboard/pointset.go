package chessboard

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// PointSet is an ordered set of homogeneous pattern-frame points stored as a 4xN matrix, one point per
// column (x, y, z, 1).
type PointSet struct {
	m *mat.Dense
}

func newPointSet(n int) PointSet {
	if n == 0 {
		return PointSet{}
	}
	return PointSet{mat.NewDense(4, n, nil)}
}

// Len returns the number of points.
func (ps PointSet) Len() int {
	if ps.m == nil {
		return 0
	}
	_, c := ps.m.Dims()
	return c
}

func (ps PointSet) set(i int, x, y float64) {
	ps.m.Set(0, i, x)
	ps.m.Set(1, i, y)
	ps.m.Set(2, i, 0)
	ps.m.Set(3, i, 1)
}

// Point returns the i'th point.
func (ps PointSet) Point(i int) r3.Vector {
	return r3.Vector{X: ps.m.At(0, i), Y: ps.m.At(1, i), Z: ps.m.At(2, i)}
}

// Points returns every point in order.
func (ps PointSet) Points() []r3.Vector {
	pts := make([]r3.Vector, ps.Len())
	for i := range pts {
		pts[i] = ps.Point(i)
	}
	return pts
}

// Matrix returns a copy of the 4xN homogeneous matrix.
func (ps PointSet) Matrix() *mat.Dense {
	if ps.m == nil {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(ps.m)
}

// Rows returns the homogeneous matrix as four rows.
func (ps PointSet) Rows() [][]float64 {
	if ps.m == nil {
		return nil
	}
	rows := make([][]float64, 4)
	for r := range rows {
		rows[r] = mat.Row(nil, r, ps.m)
	}
	return rows
}
