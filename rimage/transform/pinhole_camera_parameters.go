package transform

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError wraps ErrNoIntrinsics with msg.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraModel is the model of a pinhole camera.
type PinholeCameraModel struct {
	*PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion               Distorter `json:"distortion"`
}

// NewPinholeCameraModel builds a camera model from a row-major 3x3 camera matrix and OpenCV ordered
// distortion coefficients (k1, k2, p1, p2, k3). Empty coefficients mean no distortion.
func NewPinholeCameraModel(k, d []float64) (*PinholeCameraModel, error) {
	return NewPinholeCameraModelWithDistortion(k, PlumbBobDistortionType, d)
}

// NewPinholeCameraModelWithDistortion is NewPinholeCameraModel for coefficients of the named model.
func NewPinholeCameraModelWithDistortion(k []float64, model DistortionType, d []float64) (*PinholeCameraModel, error) {
	intrinsics, err := NewPinholeCameraIntrinsicsFromK(k)
	if err != nil {
		return nil, err
	}
	distortion, err := NewDistorter(model, d)
	if err != nil {
		return nil, err
	}
	return &PinholeCameraModel{PinholeCameraIntrinsics: intrinsics, Distortion: distortion}, nil
}

// CheckValid checks the intrinsics and the distortion model.
func (params *PinholeCameraModel) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("camera model does not exist")
	}
	if err := params.PinholeCameraIntrinsics.CheckValid(); err != nil {
		return err
	}
	if params.Distortion != nil {
		return params.Distortion.CheckValid()
	}
	return nil
}

// Project maps a point in the camera frame to a distorted pixel.
func (params *PinholeCameraModel) Project(pt r3.Vector) r2.Point {
	x, y := pt.X/pt.Z, pt.Y/pt.Z
	if params.Distortion != nil {
		x, y = params.Distortion.Transform(x, y)
	}
	return params.ToPixel(r2.Point{X: x, Y: y})
}

// NormalizedPoint maps a distorted pixel to undistorted normalized image coordinates, the ray (x, y, 1)
// in the camera frame.
func (params *PinholeCameraModel) NormalizedPoint(px r2.Point) r2.Point {
	n := params.ToNormalized(px)
	if u, ok := params.Distortion.(Undistorter); ok {
		n.X, n.Y = u.Undistort(n.X, n.Y)
	}
	return n
}

// UndistortPixel removes lens distortion from a pixel, keeping it in pixel units.
func (params *PinholeCameraModel) UndistortPixel(px r2.Point) r2.Point {
	return params.ToPixel(params.NormalizedPoint(px))
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
// Width and Height are optional; calibration datasets only carry the camera matrix.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px,omitempty"`
	Height int     `json:"height_px,omitempty"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewPinholeCameraIntrinsicsFromK reads the focal lengths and principal point out of a row-major 3x3 camera matrix.
func NewPinholeCameraIntrinsicsFromK(k []float64) (*PinholeCameraIntrinsics, error) {
	if len(k) != 9 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("camera matrix must have 9 elements, got %d", len(k)))
	}
	if k[8] != 1 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("camera matrix must have 1 in its last element, got %v", k[8]))
	}
	params := &PinholeCameraIntrinsics{Fx: k[0], Fy: k[4], Ppx: k[2], Ppy: k[5]}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return params, nil
}

// CheckValid requires positive focal lengths and a principal point inside the first quadrant.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("intrinsics do not exist")
	}
	switch {
	case params.Width < 0 || params.Height < 0:
		return NewNoIntrinsicsError(fmt.Sprintf("negative image size %dx%d", params.Width, params.Height))
	case params.Fx <= 0 || params.Fy <= 0:
		return NewNoIntrinsicsError(fmt.Sprintf("focal lengths must be positive, got Fx=%g Fy=%g", params.Fx, params.Fy))
	case params.Ppx < 0 || params.Ppy < 0:
		return NewNoIntrinsicsError(fmt.Sprintf("principal point (%g, %g) is negative", params.Ppx, params.Ppy))
	}
	return nil
}

// ToPixel scales normalized image coordinates into pixels.
func (params *PinholeCameraIntrinsics) ToPixel(n r2.Point) r2.Point {
	return r2.Point{X: n.X*params.Fx + params.Ppx, Y: n.Y*params.Fy + params.Ppy}
}

// ToNormalized is the inverse of ToPixel.
func (params *PinholeCameraIntrinsics) ToNormalized(px r2.Point) r2.Point {
	return r2.Point{X: (px.X - params.Ppx) / params.Fx, Y: (px.Y - params.Ppy) / params.Fy}
}

// GetCameraMatrix returns K, or nil for missing intrinsics.
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	return mat.NewDense(3, 3, []float64{
		params.Fx, 0, params.Ppx,
		0, params.Fy, params.Ppy,
		0, 0, 1,
	})
}
