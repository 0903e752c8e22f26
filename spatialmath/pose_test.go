package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestBasicPoseConstruction(t *testing.T) {
	p := NewZeroPose()
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, p.Orientation().Quaternion().Real, test.ShouldEqual, 1.)

	p = NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)

	p = NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, aa45x)
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(p.Orientation(), aa45x), test.ShouldBeTrue)

	p = NewPose(r3.Vector{X: 4}, nil)
	test.That(t, OrientationAlmostEqual(p.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)
}

func TestCompose(t *testing.T) {
	// 90 degrees about z, then 1 along the new x, lands on world y
	a := NewPose(r3.Vector{X: 1}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	b := NewPoseFromPoint(r3.Vector{X: 1})
	c := Compose(a, b)
	test.That(t, R3VectorAlmostEqual(c.Point(), r3.Vector{X: 1, Y: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, c.Orientation().RotationMatrix().Det(), test.ShouldAlmostEqual, 1.)

	pt := TransformPoint(a, r3.Vector{X: 2})
	test.That(t, R3VectorAlmostEqual(pt, r3.Vector{X: 1, Y: 2}, 1e-9), test.ShouldBeTrue)
}

func TestPoseInverse(t *testing.T) {
	p := NewPoseFromRodrigues(r3.Vector{X: 10, Y: -5, Z: 300}, r3.Vector{X: 0.1, Y: -0.2, Z: 0.3})
	identity := Compose(p, PoseInverse(p))
	test.That(t, PoseAlmostEqual(identity, NewZeroPose()), test.ShouldBeTrue)

	q := NewPose(r3.Vector{X: 1, Y: 1}, &R4AA{Theta: 0.4, RY: 1})
	between := PoseBetween(p, q)
	test.That(t, PoseAlmostEqualEps(Compose(p, between), q, 1e-9), test.ShouldBeTrue)
}

func TestMatrixRoundTrip(t *testing.T) {
	p := NewPoseFromRodrigues(r3.Vector{X: 0.1, Y: 0.2, Z: 0.7}, r3.Vector{X: 0.5, Y: 0.1})
	m := PoseToMatrix(p)
	test.That(t, m.At(3, 3), test.ShouldEqual, 1.)
	test.That(t, m.At(2, 3), test.ShouldAlmostEqual, 0.7)

	back, err := NewPoseFromMatrix(m)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, PoseAlmostEqualEps(p, back, 1e-9), test.ShouldBeTrue)

	// composition agrees with matrix multiplication
	q := NewPose(r3.Vector{X: -3}, &R4AA{Theta: 1.2, RX: 1, RY: 1})
	var prod mat.Dense
	prod.Mul(PoseToMatrix(p), PoseToMatrix(q))
	composed, err := NewPoseFromMatrix(&prod)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, PoseAlmostEqualEps(Compose(p, q), composed, 1e-9), test.ShouldBeTrue)

	_, err = NewPoseFromMatrix(mat.NewDense(2, 2, nil))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPoseFromTranslationRotation(r3.Vector{}, mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, -1}))
	test.That(t, err, test.ShouldNotBeNil)
}
