package transform

import "github.com/pkg/errors"

// DistortionType names a lens distortion model.
type DistortionType string

const (
	// BrownConradyDistortionType reads coefficients as (k1, k2, k3, p1, p2).
	BrownConradyDistortionType = DistortionType("brown_conrady")
	// PlumbBobDistortionType is the ROS camera_info name of the same model, with coefficients in OpenCV
	// order (k1, k2, p1, p2, k3).
	PlumbBobDistortionType = DistortionType("plumb_bob")
	// InverseBrownConradyDistortionType maps distorted normalized coordinates back to undistorted ones.
	InverseBrownConradyDistortionType = DistortionType("inverse_brown_conrady")
)

// Distorter maps undistorted normalized image coordinates to distorted ones.
type Distorter interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64
	Transform(x, y float64) (float64, float64)
}

// Undistorter is a Distorter that can also run backwards.
type Undistorter interface {
	Distorter
	Undistort(xd, yd float64) (float64, float64)
}

// InvalidDistortionError reports distortion coefficients that cannot be used.
func InvalidDistortionError(msg string) error {
	return errors.Errorf("invalid distortion coefficients: %s", msg)
}

// NewDistorter builds the named model from its coefficients. An empty type reads them as plumb_bob,
// which is what camera_info messages carry.
func NewDistorter(distortionType DistortionType, coefficients []float64) (Distorter, error) {
	var (
		d   Distorter
		err error
	)
	switch distortionType {
	case PlumbBobDistortionType, "":
		d, err = NewBrownConradyFromOpenCV(coefficients)
	case BrownConradyDistortionType:
		d, err = NewBrownConrady(coefficients)
	case InverseBrownConradyDistortionType:
		d, err = NewInverseBrownConrady(coefficients)
	default:
		return nil, errors.Errorf("unsupported distortion model %q", distortionType)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s distortion", distortionType)
	}
	return d, nil
}
