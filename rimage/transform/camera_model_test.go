package transform

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

var (
	testK = []float64{
		821.32642889, 0, 494.95941428,
		0, 821.68607359, 370.70529534,
		0, 0, 1,
	}
	testD = []float64{0.11297234, -0.21375332, -0.00302002, 0.19969297, -0.01584774}
)

func TestNewPinholeCameraIntrinsicsFromK(t *testing.T) {
	intrinsics, err := NewPinholeCameraIntrinsicsFromK(testK)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intrinsics.Fx, test.ShouldEqual, testK[0])
	test.That(t, intrinsics.Fy, test.ShouldEqual, testK[4])
	test.That(t, intrinsics.Ppx, test.ShouldEqual, testK[2])
	test.That(t, intrinsics.Ppy, test.ShouldEqual, testK[5])

	k := intrinsics.GetCameraMatrix()
	for i := 0; i < 9; i++ {
		test.That(t, k.At(i/3, i%3), test.ShouldEqual, testK[i])
	}

	_, err = NewPinholeCameraIntrinsicsFromK(testK[:8])
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	bad := append([]float64{}, testK...)
	bad[0] = 0
	_, err = NewPinholeCameraIntrinsicsFromK(bad)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Fx")

	var nilIntrinsics *PinholeCameraIntrinsics
	test.That(t, nilIntrinsics.GetCameraMatrix(), test.ShouldBeNil)
	test.That(t, errors.Is(nilIntrinsics.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)
}

func TestIntrinsicsPixelRoundTrip(t *testing.T) {
	intrinsics, err := NewPinholeCameraIntrinsicsFromK(testK)
	test.That(t, err, test.ShouldBeNil)
	n := intrinsics.ToNormalized(r2.Point{X: 600, Y: 400})
	px := intrinsics.ToPixel(n)
	test.That(t, px.X, test.ShouldAlmostEqual, 600)
	test.That(t, px.Y, test.ShouldAlmostEqual, 400)
	test.That(t, intrinsics.ToPixel(r2.Point{}), test.ShouldResemble, r2.Point{X: testK[2], Y: testK[5]})
}

func TestBrownConrady(t *testing.T) {
	bc, err := NewBrownConradyFromOpenCV(testD)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.RadialK1, test.ShouldEqual, testD[0])
	test.That(t, bc.RadialK2, test.ShouldEqual, testD[1])
	test.That(t, bc.TangentialP1, test.ShouldEqual, testD[2])
	test.That(t, bc.TangentialP2, test.ShouldEqual, testD[3])
	test.That(t, bc.RadialK3, test.ShouldEqual, testD[4])
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{testD[0], testD[1], testD[4], testD[2], testD[3]})
	test.That(t, bc.ModelType(), test.ShouldEqual, BrownConradyDistortionType)

	_, err = NewBrownConradyFromOpenCV(make([]float64, 8))
	test.That(t, err, test.ShouldNotBeNil)

	empty, err := NewBrownConradyFromOpenCV(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, empty.IsZero(), test.ShouldBeTrue)
	x, y := empty.Transform(0.3, -0.2)
	test.That(t, x, test.ShouldEqual, 0.3)
	test.That(t, y, test.ShouldEqual, -0.2)

	inv := bc.Inverse()
	for _, pt := range []r2.Point{{X: 0, Y: 0}, {X: 0.1, Y: 0.2}, {X: -0.3, Y: 0.25}, {X: 0.4, Y: -0.1}} {
		xd, yd := bc.Transform(pt.X, pt.Y)
		xu, yu := inv.Transform(xd, yd)
		test.That(t, xu, test.ShouldAlmostEqual, pt.X, 1e-9)
		test.That(t, yu, test.ShouldAlmostEqual, pt.Y, 1e-9)
	}
}

func TestNewDistorter(t *testing.T) {
	d, err := NewDistorter(BrownConradyDistortionType, []float64{0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Parameters(), test.ShouldResemble, []float64{0.1, 0, 0, 0, 0})

	// plumb_bob reads OpenCV order, so the third coefficient is p1
	d, err = NewDistorter(PlumbBobDistortionType, []float64{0.1, 0.2, 0.3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Parameters(), test.ShouldResemble, []float64{0.1, 0.2, 0, 0.3, 0})

	d, err = NewDistorter("", nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.ModelType(), test.ShouldEqual, BrownConradyDistortionType)

	_, err = NewDistorter(BrownConradyDistortionType, make([]float64, 6))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "brown_conrady distortion")

	d, err = NewDistorter(InverseBrownConradyDistortionType, []float64{0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.ModelType(), test.ShouldEqual, InverseBrownConradyDistortionType)

	_, err = NewDistorter("kannala_brandt", nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPinholeCameraModelInverseDistortion(t *testing.T) {
	camera, err := NewPinholeCameraModelWithDistortion(testK, InverseBrownConradyDistortionType, []float64{0.05, -0.01})
	test.That(t, err, test.ShouldBeNil)

	pt := r3.Vector{X: -0.2, Y: 0.1, Z: 1.5}
	n := camera.NormalizedPoint(camera.Project(pt))
	test.That(t, n.X, test.ShouldAlmostEqual, pt.X/pt.Z, 1e-9)
	test.That(t, n.Y, test.ShouldAlmostEqual, pt.Y/pt.Z, 1e-9)
}

func TestPinholeCameraModel(t *testing.T) {
	camera, err := NewPinholeCameraModel(testK, testD)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, camera.CheckValid(), test.ShouldBeNil)

	pt := r3.Vector{X: 0.1, Y: -0.05, Z: 0.8}
	px := camera.Project(pt)
	n := camera.NormalizedPoint(px)
	test.That(t, n.X, test.ShouldAlmostEqual, pt.X/pt.Z, 1e-9)
	test.That(t, n.Y, test.ShouldAlmostEqual, pt.Y/pt.Z, 1e-9)

	undistorted := camera.UndistortPixel(px)
	ideal := camera.ToPixel(r2.Point{X: pt.X / pt.Z, Y: pt.Y / pt.Z})
	test.That(t, undistorted.X, test.ShouldAlmostEqual, ideal.X, 1e-6)
	test.That(t, undistorted.Y, test.ShouldAlmostEqual, ideal.Y, 1e-6)

	var nilCamera *PinholeCameraModel
	test.That(t, errors.Is(nilCamera.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)
}
