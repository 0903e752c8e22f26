package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of floats in row major order.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.New("input slice for rotation matrix must have 9 elements")
	}
	var data [9]float64
	copy(data[:], m)
	return &RotationMatrix{data}, nil
}

// NewRotationMatrixFromDense creates the rotation matrix from the top left 3x3 block of a dense matrix.
// The block must be orthonormal with a positive determinant within tol.
func NewRotationMatrixFromDense(m mat.Matrix, tol float64) (*RotationMatrix, error) {
	rows, cols := m.Dims()
	if rows < 3 || cols < 3 {
		return nil, errors.Errorf("rotation matrix needs at least a 3x3 block, got %dx%d", rows, cols)
	}
	var data [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data[3*r+c] = m.At(r, c)
		}
	}
	rm := &RotationMatrix{data}
	if err := rm.CheckValid(tol); err != nil {
		return nil, err
	}
	return rm, nil
}

// CheckValid checks that the matrix is orthonormal with determinant +1 within tol.
func (rm *RotationMatrix) CheckValid(tol float64) error {
	if det := rm.Det(); math.Abs(det-1) > tol {
		return errors.Errorf("rotation matrix determinant is %f, expected 1", det)
	}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			dot := rm.Col(i).Dot(rm.Col(j))
			expected := 0.
			if i == j {
				expected = 1
			}
			if math.Abs(dot-expected) > tol {
				return errors.Errorf("rotation matrix columns %d and %d are not orthonormal", i, j)
			}
		}
	}
	return nil
}

// AxisAngles returns the orientation in axis angle representation.
func (rm *RotationMatrix) AxisAngles() *R4AA {
	return QuatToR4AA(rm.Quaternion())
}

// Quaternion returns orientation in quaternion representation.
// reference: http://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/index.htm
func (rm *RotationMatrix) Quaternion() quat.Number {
	var q quat.Number
	m := rm.mat
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1.0) * 2
		q.Real = 0.25 * s
		q.Imag = (m[7] - m[5]) / s
		q.Jmag = (m[2] - m[6]) / s
		q.Kmag = (m[3] - m[1]) / s
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1.0+m[0]-m[4]-m[8]) * 2
		q.Real = (m[7] - m[5]) / s
		q.Imag = 0.25 * s
		q.Jmag = (m[1] + m[3]) / s
		q.Kmag = (m[2] + m[6]) / s
	case m[4] > m[8]:
		s := math.Sqrt(1.0+m[4]-m[0]-m[8]) * 2
		q.Real = (m[2] - m[6]) / s
		q.Imag = (m[1] + m[3]) / s
		q.Jmag = 0.25 * s
		q.Kmag = (m[5] + m[7]) / s
	default:
		s := math.Sqrt(1.0+m[8]-m[0]-m[4]) * 2
		q.Real = (m[3] - m[1]) / s
		q.Imag = (m[2] + m[6]) / s
		q.Jmag = (m[5] + m[7]) / s
		q.Kmag = 0.25 * s
	}
	return Normalize(q)
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[row*3+col]
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[row*3], Y: rm.mat[row*3+1], Z: rm.mat[row*3+2]}
}

// Col returns the a 3 element vector corresponding to the specified col.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Det returns the determinant of the matrix.
func (rm *RotationMatrix) Det() float64 {
	return rm.Row(0).Dot(rm.Row(1).Cross(rm.Row(2)))
}

// Mul returns the product of the matrix and a column vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// Dense returns a copy of the matrix as a 3x3 gonum dense matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}
