package transform

import (
	"github.com/pkg/errors"
)

// BrownConrady is a struct for some terms of a modified Brown-Conrady model of distortion.
type BrownConrady struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	RadialK3     float64 `json:"rk3"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
}

// CheckValid fails only for a nil model; every coefficient value is usable.
func (bc *BrownConrady) CheckValid() error {
	if bc == nil {
		return InvalidDistortionError("brown_conrady model is nil")
	}
	return nil
}

// NewBrownConrady takes in a slice of floats that will be passed into the struct in order (k1, k2, k3, p1, p2).
func NewBrownConrady(inp []float64) (*BrownConrady, error) {
	if len(inp) > 5 {
		return nil, errors.Errorf("list of parameters too long, expected max 5, got %d", len(inp))
	}
	if len(inp) == 0 {
		return &BrownConrady{}, nil
	}
	for i := len(inp); i < 5; i++ { // fill missing values with 0.0
		inp = append(inp, 0.0)
	}
	return &BrownConrady{inp[0], inp[1], inp[2], inp[3], inp[4]}, nil
}

// NewBrownConradyFromOpenCV reads coefficients in the order OpenCV stores them, (k1, k2, p1, p2, k3).
func NewBrownConradyFromOpenCV(d []float64) (*BrownConrady, error) {
	if len(d) > 5 {
		return nil, errors.Errorf("list of parameters too long, expected max 5, got %d", len(d))
	}
	var coeffs [5]float64
	copy(coeffs[:], d)
	return &BrownConrady{
		RadialK1:     coeffs[0],
		RadialK2:     coeffs[1],
		TangentialP1: coeffs[2],
		TangentialP2: coeffs[3],
		RadialK3:     coeffs[4],
	}, nil
}

// ModelType returns the type of distortion model.
func (bc *BrownConrady) ModelType() DistortionType {
	return BrownConradyDistortionType
}

// Parameters returns the distortion parameters as a list of floats.
func (bc *BrownConrady) Parameters() []float64 {
	if bc == nil {
		return []float64{}
	}
	return []float64{bc.RadialK1, bc.RadialK2, bc.RadialK3, bc.TangentialP1, bc.TangentialP2}
}

// IsZero reports whether the model leaves every point where it is.
func (bc *BrownConrady) IsZero() bool {
	return bc == nil || *bc == BrownConrady{}
}

// Transform distorts the input points x,y according to a modified Brown-Conrady model as described by OpenCV
// https://docs.opencv.org/3.4/da/d54/group__imgproc__transform.html#ga7dfb72c9cf9780a347fbe3d1c47e5d5a
func (bc *BrownConrady) Transform(x, y float64) (float64, float64) {
	if bc == nil {
		return x, y
	}
	r2 := x*x + y*y
	radDist := (1. + bc.RadialK1*r2 + bc.RadialK2*r2*r2 + bc.RadialK3*r2*r2*r2)
	radDistX := x * radDist
	radDistY := y * radDist
	tanDistX := 2.*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2.*x*x)
	tanDistY := 2.*bc.TangentialP2*x*y + bc.TangentialP1*(r2+2.*y*y)
	resX := radDistX + tanDistX
	resY := radDistY + tanDistY
	return resX, resY
}

// Undistort inverts Transform numerically.
func (bc *BrownConrady) Undistort(xd, yd float64) (float64, float64) {
	return bc.Inverse().Transform(xd, yd)
}

// Inverse returns the model that undoes this distortion.
func (bc *BrownConrady) Inverse() *InverseBrownConrady {
	if bc == nil {
		return nil
	}
	return &InverseBrownConrady{
		RadialK1:     bc.RadialK1,
		RadialK2:     bc.RadialK2,
		RadialK3:     bc.RadialK3,
		TangentialP1: bc.TangentialP1,
		TangentialP2: bc.TangentialP2,
	}
}
