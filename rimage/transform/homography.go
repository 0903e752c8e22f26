package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 matrix used to transform a plane from the perspective of a 2D
// camera to the perspective of another 2D camera.
type Homography struct {
	matrix *mat.Dense
}

// NewHomography creates a Homography from a slice of floats in row major order.
func NewHomography(vals []float64) (*Homography, error) {
	if len(vals) != 9 {
		return nil, errors.Errorf("input to NewHomography must have length of 9. Has length of %d", len(vals))
	}
	data := make([]float64, 9)
	copy(data, vals)
	return &Homography{mat.NewDense(3, 3, data)}, nil
}

// NewHomographyFromMatrix wraps a copy of a 3x3 matrix.
func NewHomographyFromMatrix(m mat.Matrix) (*Homography, error) {
	rows, cols := m.Dims()
	if rows != 3 || cols != 3 {
		return nil, errors.Errorf("homography must be 3x3, got %dx%d", rows, cols)
	}
	return &Homography{mat.DenseCopyOf(m)}, nil
}

// At returns the value of the homography at the given index.
func (h *Homography) At(row, col int) float64 {
	return h.matrix.At(row, col)
}

// Dense returns a copy of the homography as a dense matrix.
func (h *Homography) Dense() *mat.Dense {
	return mat.DenseCopyOf(h.matrix)
}

// Apply will transform the given point according to the homography.
func (h *Homography) Apply(pt r2.Point) r2.Point {
	p := h.ApplyUnnormalized(pt)
	return r2.Point{X: p.X / p.Z, Y: p.Y / p.Z}
}

// ApplyUnnormalized maps the homogeneous point (x, y, 1) through the homography without dividing
// by the third coordinate.
func (h *Homography) ApplyUnnormalized(pt r2.Point) r3.Vector {
	return r3.Vector{
		X: h.At(0, 0)*pt.X + h.At(0, 1)*pt.Y + h.At(0, 2),
		Y: h.At(1, 0)*pt.X + h.At(1, 1)*pt.Y + h.At(1, 2),
		Z: h.At(2, 0)*pt.X + h.At(2, 1)*pt.Y + h.At(2, 2),
	}
}

// Inverse inverts the homography. If homography went from color -> depth, Inverse makes it point
// from depth -> color.
func (h *Homography) Inverse() (*Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.matrix); err != nil {
		return nil, errors.Wrap(err, "homography is not invertible")
	}
	return &Homography{&inv}, nil
}

// Normalized returns the homography scaled so that its bottom right element is 1.
func (h *Homography) Normalized() (*Homography, error) {
	s := h.At(2, 2)
	if math.Abs(s) < 1e-12 {
		return nil, errors.New("cannot normalize homography with zero scale")
	}
	var m mat.Dense
	m.Scale(1/s, h.matrix)
	return &Homography{&m}, nil
}

// EstimateHomography computes the homography mapping src onto dst with the normalized direct linear
// transform, Multiple View Geometry Alg 4.2.
func EstimateHomography(src, dst []r2.Point) (*Homography, error) {
	if len(src) != len(dst) {
		return nil, errors.New("sets of points src and dst must have the same number of elements")
	}
	if len(src) < 4 {
		return nil, errors.Errorf("sets of points must have at least 4 elements, got %d", len(src))
	}
	srcNorm, t1 := normalizePoints(src)
	dstNorm, t2 := normalizePoints(dst)
	if t1 == nil || t2 == nil {
		return nil, errors.New("cannot estimate homography from coincident points")
	}

	a := mat.NewDense(2*len(src), 9, nil)
	for i := range srcNorm {
		s, d := srcNorm[i], dstNorm[i]
		a.SetRow(2*i, []float64{-s.X, -s.Y, -1, 0, 0, 0, d.X * s.X, d.X * s.Y, d.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, -s.X, -s.Y, -1, d.Y * s.X, d.Y * s.Y, d.Y})
	}
	mats := performSVD(a)
	if mats == nil {
		return nil, errors.New("failed to factorize homography system")
	}
	if rank := mats.rank(1e-12); rank < 8 {
		return nil, errors.Errorf("homography system is degenerate, rank %d", rank)
	}
	lastColV := mats.V.ColView(8)
	data := make([]float64, 9)
	for i := range data {
		data[i] = lastColV.AtVec(i)
	}
	hn := mat.NewDense(3, 3, data)

	// undo the normalization: inv(T2) @ Hn @ T1
	var t2Inv, h mat.Dense
	if err := t2Inv.Inverse(t2); err != nil {
		return nil, errors.Wrap(err, "normalization transform is singular")
	}
	h.Mul(&t2Inv, hn)
	h.Mul(&h, t1)
	return (&Homography{&h}).Normalized()
}
