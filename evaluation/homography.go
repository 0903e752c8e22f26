package evaluation

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
)

// CrossHomography returns the pixel homography from camera 1 to camera 2 induced by the pattern plane,
// H = K2 · B2 · B1⁻¹ · K1⁻¹, where Bi is the planar basis [r1 r2 t] of camera i's pattern pose.
func CrossHomography(
	camera1, camera2 *transform.PinholeCameraIntrinsics,
	sensor1TPattern, sensor2TPattern spatialmath.Pose,
) (*transform.Homography, error) {
	b1 := transform.NewCamPoseFromPose(sensor1TPattern).PlanarBasis()
	b2 := transform.NewCamPoseFromPose(sensor2TPattern).PlanarBasis()

	var b1Inv, k1Inv mat.Dense
	if err := b1Inv.Inverse(b1); err != nil {
		return nil, errors.Wrap(err, "pattern plane passes through the first camera")
	}
	if err := k1Inv.Inverse(camera1.GetCameraMatrix()); err != nil {
		return nil, errors.Wrap(err, "camera matrix of the first camera is singular")
	}

	var h mat.Dense
	h.Product(camera2.GetCameraMatrix(), b2, &b1Inv, &k1Inv)
	return transform.NewHomographyFromMatrix(&h)
}

// ProjectWithMeanScale maps every pixel through the homography and brings the projections back to
// pixels with a single scale, the reciprocal of the mean homogeneous coordinate over all points.
func ProjectWithMeanScale(h *transform.Homography, pixels []r2.Point) ([]r2.Point, error) {
	if len(pixels) == 0 {
		return nil, nil
	}
	projected := make([]r2.Point, len(pixels))
	var sum float64
	for i, px := range pixels {
		p := h.ApplyUnnormalized(px)
		projected[i] = r2.Point{X: p.X, Y: p.Y}
		sum += p.Z
	}
	mean := sum / float64(len(pixels))
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.Abs(mean) < degenerateScaleTolerance {
		return nil, errors.Wrapf(ErrDegenerateScale, "mean homogeneous coordinate is %v", mean)
	}
	s := 1 / mean
	for i := range projected {
		projected[i] = projected[i].Mul(s)
	}
	return projected, nil
}

const degenerateScaleTolerance = 1e-12
