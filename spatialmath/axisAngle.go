package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA is a rotation of Theta radians about the axis (RX, RY, RZ). The axis need not be unit length;
// it is normalized whenever the rotation is used.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA returns the identity rotation, about +Z.
func NewR4AA() *R4AA {
	return &R4AA{RZ: 1}
}

// NewR4AAFromRodrigues converts a Rodrigues vector, the axis scaled by the angle as calibration tools
// store it, to an axis angle. The zero vector gives the identity.
func NewR4AAFromRodrigues(v r3.Vector) *R4AA {
	theta := v.Norm()
	if theta == 0 {
		return NewR4AA()
	}
	axis := v.Mul(1 / theta)
	return &R4AA{Theta: theta, RX: axis.X, RY: axis.Y, RZ: axis.Z}
}

// AxisAngles returns r4 itself.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// Quaternion returns the unit quaternion of the rotation.
func (r4 *R4AA) Quaternion() quat.Number {
	if r4.Theta == 0 {
		return quat.Number{Real: 1}
	}
	axis := r4.axis()
	s := math.Sin(r4.Theta / 2)
	return quat.Number{Real: math.Cos(r4.Theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// RotationMatrix returns the rotation as a matrix.
func (r4 *R4AA) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(r4.Quaternion())
}

// Rodrigues returns the rotation as a Rodrigues vector.
func (r4 *R4AA) Rodrigues() r3.Vector {
	return r4.axis().Mul(r4.Theta)
}

// Normalize rescales the axis to unit length in place. A zero axis becomes +Z.
func (r4 *R4AA) Normalize() {
	axis := r4.axis()
	r4.RX, r4.RY, r4.RZ = axis.X, axis.Y, axis.Z
}

func (r4 *R4AA) axis() r3.Vector {
	v := r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
	norm := v.Norm()
	if norm == 0 {
		return r3.Vector{Z: 1}
	}
	return v.Mul(1 / norm)
}
