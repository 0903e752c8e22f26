package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// rotationTolerance bounds how far a matrix block may be from orthonormal and still be accepted as a rotation.
const rotationTolerance = 1e-4

// PoseToMatrix returns the 4x4 homogeneous transform of a pose.
func PoseToMatrix(p Pose) *mat.Dense {
	rm := p.Orientation().RotationMatrix()
	pt := p.Point()
	m := mat.NewDense(4, 4, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.Set(r, c, rm.At(r, c))
		}
	}
	m.Set(0, 3, pt.X)
	m.Set(1, 3, pt.Y)
	m.Set(2, 3, pt.Z)
	m.Set(3, 3, 1)
	return m
}

// NewPoseFromMatrix builds a pose from a 3x4 or 4x4 homogeneous transform. The rotation block must be
// a proper rotation.
func NewPoseFromMatrix(m mat.Matrix) (Pose, error) {
	rows, cols := m.Dims()
	if (rows != 3 && rows != 4) || cols != 4 {
		return nil, errors.Errorf("pose matrix must be 3x4 or 4x4, got %dx%d", rows, cols)
	}
	rm, err := NewRotationMatrixFromDense(m, rotationTolerance)
	if err != nil {
		return nil, err
	}
	return NewPose(r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}, rm), nil
}

// NewPoseFromTranslationRotation builds a pose from a translation and a 3x3 rotation matrix.
func NewPoseFromTranslationRotation(t r3.Vector, rotation mat.Matrix) (Pose, error) {
	rows, cols := rotation.Dims()
	if rows != 3 || cols != 3 {
		return nil, errors.Errorf("rotation must be 3x3, got %dx%d", rows, cols)
	}
	rm, err := NewRotationMatrixFromDense(rotation, rotationTolerance)
	if err != nil {
		return nil, err
	}
	return NewPose(t, rm), nil
}
