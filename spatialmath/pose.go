// Package spatialmath defines spatial mathematical operations.
// Poses are rigid transforms stored as unit dual quaternions.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) and the Orientation() method returns the orientation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// dualQuaternion defines functions to perform rigid dualQuaternion transformations in 3D.
// If you find yourself importing gonum.org/v1/gonum/num/dualquat in some other package, you should probably be
// using these instead.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose makes a new Pose from a point and an orientation. A nil orientation is no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}

	q := newDualQuaternionFromRotation(o)
	q.SetTranslation(p)
	return q
}

// NewPoseFromOrientation returns a pose at (0,0,0) with the given orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	return newDualQuaternionFromRotation(o)
}

// NewPoseFromPoint makes a new Pose with the given translation and no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.SetTranslation(point)
	return q
}

// NewPoseFromRodrigues makes a new Pose from a translation and a Rodrigues rotation vector,
// the representation OpenCV's solvePnP returns.
func NewPoseFromRodrigues(translation, rodrigues r3.Vector) Pose {
	return NewPose(translation, NewR4AAFromRodrigues(rodrigues))
}

// Compose returns the result of applying the pose b in the frame of pose a. In matrix form this
// is a·b.
func Compose(a, b Pose) Pose {
	result := newDualQuaternion()
	result.Number = dualquat.Mul(dualQuaternionFromPose(a).Number, dualQuaternionFromPose(b).Number)

	// Normalization
	if vecLen := 1 / quat.Abs(result.Real); vecLen-1 > 1e-10 || vecLen-1 < -1e-10 {
		result.Real = quat.Scale(vecLen, result.Real)
		result.Dual = quat.Scale(vecLen, result.Dual)
	}
	return result
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative to B, PoseInverse(p) will give
// the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	q := dualQuaternionFromPose(p)
	return &dualQuaternion{dualquat.Number{Real: quat.Conj(q.Real), Dual: quat.Conj(q.Dual)}}
}

// PoseBetween returns the difference between two dualQuaternions, that is, the dq which if multiplied by one will give the other.
// Example: if PoseBetween(a, b) = c, then Compose(a, c) = b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// TransformPoint applies the pose to a point expressed in the pose's child frame.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return p.Orientation().RotationMatrix().Mul(pt).Add(p.Point())
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same within the given epsilon.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) &&
		OrientationAlmostEqualEps(a.Orientation(), b.Orientation(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	d := a.Sub(b)
	return d.X < epsilon && d.X > -epsilon && d.Y < epsilon && d.Y > -epsilon && d.Z < epsilon && d.Z > -epsilon
}

// PoseToString prints a pose as translation plus quaternion (w, x, y, z).
func PoseToString(p Pose) string {
	q := p.Orientation().Quaternion()
	return fmt.Sprintf("{X:%.6f Y:%.6f Z:%.6f QW:%.6f QX:%.6f QY:%.6f QZ:%.6f}",
		p.Point().X, p.Point().Y, p.Point().Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}

func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

func newDualQuaternionFromRotation(o Orientation) *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: Normalize(o.Quaternion()),
		Dual: quat.Number{},
	}}
}

func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	q := newDualQuaternionFromRotation(p.Orientation())
	q.SetTranslation(p.Point())
	return q
}

// Point multiplies the dual quaternion by its own conjugate to give a dq where the real is the identity quat,
// and the dual is representative of real world millimeters. We then return the xyz of the dual part.
func (q *dualQuaternion) Point() r3.Vector {
	tQuat := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: tQuat.Imag, Y: tQuat.Jmag, Z: tQuat.Kmag}
}

// Orientation returns the rotation quaternion as an Orientation.
func (q *dualQuaternion) Orientation() Orientation {
	rot := quaternion(q.Real)
	return &rot
}

// SetTranslation correctly sets the translation quaternion against the rotation.
func (q *dualQuaternion) SetTranslation(pt r3.Vector) {
	q.Dual = quat.Number{Real: 0, Imag: pt.X / 2, Jmag: pt.Y / 2, Kmag: pt.Z / 2}
	q.rotate()
}

// rotate multiplies the dual part of the quaternion by the real part give the correct rotation.
func (q *dualQuaternion) rotate() {
	q.Dual = quat.Mul(q.Dual, q.Real)
}
