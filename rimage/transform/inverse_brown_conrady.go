package transform

const (
	undistortMaxIterations = 20
	undistortTolerance     = 1e-12
)

// InverseBrownConrady undoes a Brown-Conrady distortion. Given distorted normalized coordinates it
// solves the forward model for the undistorted ones with Newton-Raphson.
type InverseBrownConrady struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	RadialK3     float64 `json:"rk3"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
}

// CheckValid fails only for a nil model.
func (ibc *InverseBrownConrady) CheckValid() error {
	if ibc == nil {
		return InvalidDistortionError("inverse_brown_conrady model is nil")
	}
	return nil
}

// NewInverseBrownConrady takes the same parameter order as NewBrownConrady (k1, k2, k3, p1, p2).
func NewInverseBrownConrady(inp []float64) (*InverseBrownConrady, error) {
	bc, err := NewBrownConrady(inp)
	if err != nil {
		return nil, err
	}
	return bc.Inverse(), nil
}

// ModelType returns the type of distortion model.
func (ibc *InverseBrownConrady) ModelType() DistortionType {
	return InverseBrownConradyDistortionType
}

// Parameters returns the parameters of the distortion model as a list of floats.
func (ibc *InverseBrownConrady) Parameters() []float64 {
	if ibc == nil {
		return []float64{}
	}
	return []float64{ibc.RadialK1, ibc.RadialK2, ibc.RadialK3, ibc.TangentialP1, ibc.TangentialP2}
}

// Undistort applies the forward model, which undoes this one.
func (ibc *InverseBrownConrady) Undistort(x, y float64) (float64, float64) {
	if ibc == nil {
		return x, y
	}
	return ibc.forward().Transform(x, y)
}

func (ibc *InverseBrownConrady) forward() *BrownConrady {
	return &BrownConrady{
		RadialK1:     ibc.RadialK1,
		RadialK2:     ibc.RadialK2,
		RadialK3:     ibc.RadialK3,
		TangentialP1: ibc.TangentialP1,
		TangentialP2: ibc.TangentialP2,
	}
}

// Transform finds the undistorted point whose forward distortion lands on (xd, yd).
// Iteration stops early once the residual drops below tolerance or the Jacobian turns singular.
func (ibc *InverseBrownConrady) Transform(xd, yd float64) (float64, float64) {
	if ibc == nil {
		return xd, yd
	}
	fwd := ibc.forward()
	if fwd.IsZero() {
		return xd, yd
	}

	xu, yu := xd, yd
	for i := 0; i < undistortMaxIterations; i++ {
		xEst, yEst := fwd.Transform(xu, yu)
		errX, errY := xEst-xd, yEst-yd
		if errX*errX+errY*errY < undistortTolerance*undistortTolerance {
			break
		}
		a, b, c, d := fwd.jacobian(xu, yu)
		det := a*d - b*c
		if det == 0 {
			break
		}
		xu -= (d*errX - b*errY) / det
		yu -= (-c*errX + a*errY) / det
	}
	return xu, yu
}

// jacobian returns the partial derivatives of the distorted point with respect to the undistorted one,
// row major: dxd/dx, dxd/dy, dyd/dx, dyd/dy.
func (bc *BrownConrady) jacobian(x, y float64) (float64, float64, float64, float64) {
	r2 := x*x + y*y
	r4 := r2 * r2
	radDist := 1.0 + bc.RadialK1*r2 + bc.RadialK2*r4 + bc.RadialK3*r4*r2
	dRad := 2.0 * (bc.RadialK1 + 2.0*bc.RadialK2*r2 + 3.0*bc.RadialK3*r4)

	dxdx := radDist + x*x*dRad + 2.0*bc.TangentialP1*y + 6.0*bc.TangentialP2*x
	dxdy := x*y*dRad + 2.0*bc.TangentialP1*x + 2.0*bc.TangentialP2*y
	dydx := x*y*dRad + 2.0*bc.TangentialP2*y + 2.0*bc.TangentialP1*x
	dydy := radDist + y*y*dRad + 2.0*bc.TangentialP2*x + 6.0*bc.TangentialP1*y
	return dxdx, dxdy, dydx, dydy
}
