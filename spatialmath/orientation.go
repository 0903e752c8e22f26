package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is a 3D rotation that can be read in any of the parameterizations calibration files use.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	RotationMatrix() *RotationMatrix
}

// NewZeroOrientation returns the identity rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{Real: 1}
}

// OrientationAlmostEqual compares two orientations with a tolerance of 1e-5 per quaternion component.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return OrientationAlmostEqualEps(o1, o2, 1e-5)
}

// OrientationAlmostEqualEps compares two orientations per quaternion component, treating q and -q as
// the same rotation.
func OrientationAlmostEqualEps(o1, o2 Orientation, epsilon float64) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), epsilon)
}
