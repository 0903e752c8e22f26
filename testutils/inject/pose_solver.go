// Package inject provides injectable stand-ins for the collaborators calibration code depends on.
package inject

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
)

// PoseSolver is an injected pose solver.
type PoseSolver struct {
	transform.PoseSolver
	SolvePoseFunc func(objectPoints []r3.Vector, imagePoints []r2.Point, camera *transform.PinholeCameraModel) (spatialmath.Pose, error)
	Calls         int
}

// SolvePose calls the injected SolvePose or the real version.
func (s *PoseSolver) SolvePose(
	objectPoints []r3.Vector, imagePoints []r2.Point, camera *transform.PinholeCameraModel,
) (spatialmath.Pose, error) {
	s.Calls++
	if s.SolvePoseFunc == nil {
		return s.PoseSolver.SolvePose(objectPoints, imagePoints, camera)
	}
	return s.SolvePoseFunc(objectPoints, imagePoints, camera)
}
