package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// normalizePoints normalizes points as described in Multiple View Geometry, Alg 4.2.
// The transform is nil when every point coincides.
func normalizePoints(pts []r2.Point) ([]r2.Point, *mat.Dense) {
	nPoints := len(pts)
	// computer centroid of points
	mu := r2.Point{}
	for _, pt := range pts {
		mu = mu.Add(pt)
	}
	mu = mu.Mul(1. / float64(nPoints))
	// compute scale factor
	d := 0.0
	for _, pt := range pts {
		d += pt.Sub(mu).Norm() / float64(nPoints)
	}
	if d == 0 {
		return nil, nil
	}
	scale := math.Sqrt(2) / d
	transformData := []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	}
	T := mat.NewDense(3, 3, transformData)
	// apply transform to points
	pointsTransformed := make([]r2.Point, nPoints)
	for i := range pointsTransformed {
		pointsTransformed[i] = pts[i].Sub(mu).Mul(scale)
	}
	return pointsTransformed, T
}

// eye create an identity matrix of size nxn.
func eye(n int) *mat.Dense {
	if n <= 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// matsSVD stores the matrices from SVD decomposition.
type matsSVD struct {
	U      *mat.Dense
	V      *mat.Dense
	VT     *mat.Dense
	S      *mat.Dense
	values []float64
}

// rank counts the singular values above rcond times the largest one.
func (m *matsSVD) rank(rcond float64) int {
	if len(m.values) == 0 || m.values[0] == 0 {
		return 0
	}
	r := 0
	for _, v := range m.values {
		if v > rcond*m.values[0] {
			r++
		}
	}
	return r
}

// performSVD performs SVD on inputMatrix and returns matrices U, Sigma and V from the decomposition.
func performSVD(inputMatrix mat.Matrix) *matsSVD {
	var svd mat.SVD
	ok := svd.Factorize(inputMatrix, mat.SVDFull)
	if !ok {
		return nil
	}

	u, v, sigma, vt := &mat.Dense{}, &mat.Dense{}, &mat.Dense{}, &mat.Dense{}

	svd.UTo(u)
	svd.VTo(v)
	vt.CloneFrom(v.T())

	singularValues := svd.Values(nil)
	sigma.CloneFrom(mat.NewDiagDense(len(singularValues), singularValues))

	return &matsSVD{u, v, vt, sigma, singularValues}
}

// nearestRotation projects a 3x3 matrix onto SO(3) with the SVD, R = U diag(1, 1, det(UV^T)) V^T.
func nearestRotation(m mat.Matrix) *mat.Dense {
	mats := performSVD(m)
	if mats == nil {
		return nil
	}
	var r mat.Dense
	r.Mul(mats.U, mats.VT)
	if mat.Det(&r) < 0 {
		fix := eye(3)
		fix.Set(2, 2, -1)
		r.Mul(mats.U, fix)
		r.Mul(&r, mats.VT)
	}
	return &r
}
