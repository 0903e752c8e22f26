package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"go.viam.com/calibeval/logging"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/utils"
)

// ErrPoseNotConverged is returned when a pose could not be recovered from a set of correspondences.
var ErrPoseNotConverged = errors.New("pose solver did not converge")

// DefaultMaxReprojectionError is the largest RMS pixel residual a PlanarPoseSolver accepts.
const DefaultMaxReprojectionError = 50.

// planeTolerance bounds |z| of object points that are considered to lie on the pattern plane.
const planeTolerance = 1e-9

// PoseSolver recovers camera_T_object from object points and their observed pixels.
type PoseSolver interface {
	SolvePose(objectPoints []r3.Vector, imagePoints []r2.Point, camera *PinholeCameraModel) (spatialmath.Pose, error)
}

// PoseSolverFunc adapts a plain function to the PoseSolver interface.
type PoseSolverFunc func(objectPoints []r3.Vector, imagePoints []r2.Point, camera *PinholeCameraModel) (spatialmath.Pose, error)

// SolvePose calls f.
func (f PoseSolverFunc) SolvePose(
	objectPoints []r3.Vector, imagePoints []r2.Point, camera *PinholeCameraModel,
) (spatialmath.Pose, error) {
	return f(objectPoints, imagePoints, camera)
}

// PlanarPoseSolver solves the perspective-n-point problem for targets on the z=0 plane. A linear
// estimate from the plane-to-image homography is refined by minimizing the reprojection error through
// the full camera model, distortion included.
type PlanarPoseSolver struct {
	// MaxReprojectionError is the largest accepted RMS residual in pixels. Zero disables the check.
	MaxReprojectionError float64
	logger               logging.Logger
}

// NewPlanarPoseSolver returns a solver with the default acceptance threshold.
func NewPlanarPoseSolver(logger logging.Logger) *PlanarPoseSolver {
	return &PlanarPoseSolver{MaxReprojectionError: DefaultMaxReprojectionError, logger: logger}
}

// SolvePose returns the pose of the object frame in the camera frame.
func (s *PlanarPoseSolver) SolvePose(
	objectPoints []r3.Vector, imagePoints []r2.Point, camera *PinholeCameraModel,
) (spatialmath.Pose, error) {
	if err := camera.CheckValid(); err != nil {
		return nil, err
	}
	if len(objectPoints) != len(imagePoints) {
		return nil, errors.Errorf("got %d object points and %d image points", len(objectPoints), len(imagePoints))
	}
	planar := make([]r2.Point, len(objectPoints))
	for i, pt := range objectPoints {
		if math.Abs(pt.Z) > planeTolerance {
			return nil, errors.Errorf("object point %d is off the z=0 plane (z=%v)", i, pt.Z)
		}
		planar[i] = r2.Point{X: pt.X, Y: pt.Y}
	}
	normalized := make([]r2.Point, len(imagePoints))
	for i, px := range imagePoints {
		normalized[i] = camera.NormalizedPoint(px)
	}

	h, err := EstimateHomography(planar, normalized)
	if err != nil {
		return nil, errors.Wrapf(ErrPoseNotConverged, "estimating plane homography: %v", err)
	}
	initial, err := poseFromPlanarHomography(h)
	if err != nil {
		return nil, errors.Wrapf(ErrPoseNotConverged, "decomposing plane homography: %v", err)
	}
	linear, err := NewCamPoseFromMat(initial).Pose()
	if err != nil {
		return nil, errors.Wrapf(ErrPoseNotConverged, "linear estimate: %v", err)
	}

	prob := buildReprojectionProblem(objectPoints, imagePoints, camera)
	params := poseToParams(linear)
	best, bestCost := params, prob.Func(params)

	res, err := optimize.Minimize(*prob, params, &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Relative:   1e-12,
			Absolute:   1e-12,
			Iterations: 50,
		},
		MajorIterations: 500,
	}, &optimize.BFGS{})
	if res != nil {
		s.debugw("pose refinement finished", "initial_cost", bestCost, "final_cost", res.F, "status", res.Status.String())
		if res.F < bestCost {
			best, bestCost = res.X, res.F
		}
	}
	if err != nil {
		// a failed line search still leaves the best location found so far
		s.debugw("pose refinement stopped early", "error", err)
	}

	pose := paramsToPose(best)
	rms := math.Sqrt(bestCost / float64(len(objectPoints)))
	if !isFinitePose(pose) || !utils.IsFinite(rms) {
		return nil, errors.Wrap(ErrPoseNotConverged, "solution is not finite")
	}
	for _, pt := range objectPoints {
		if spatialmath.TransformPoint(pose, pt).Z <= 0 {
			return nil, errors.Wrap(ErrPoseNotConverged, "solution places the pattern behind the camera")
		}
	}
	if s.MaxReprojectionError > 0 && rms > s.MaxReprojectionError {
		return nil, errors.Wrapf(ErrPoseNotConverged, "RMS reprojection error %.3fpx exceeds %.3fpx", rms, s.MaxReprojectionError)
	}
	return pose, nil
}

func (s *PlanarPoseSolver) debugw(msg string, keysAndValues ...interface{}) {
	if s.logger != nil {
		s.logger.Debugw(msg, keysAndValues...)
	}
}

// buildReprojectionProblem sums squared pixel residuals over the six pose parameters, a Rodrigues
// rotation followed by a translation.
func buildReprojectionProblem(objectPoints []r3.Vector, imagePoints []r2.Point, camera *PinholeCameraModel) *optimize.Problem {
	f := func(x []float64) float64 {
		pose := paramsToPose(x)
		rot := pose.Orientation().RotationMatrix()
		t := pose.Point()
		sum := 0.
		for i, pt := range objectPoints {
			projected := camera.Project(rot.Mul(pt).Add(t))
			d := projected.Sub(imagePoints[i])
			sum += d.X*d.X + d.Y*d.Y
		}
		return sum
	}
	grad := func(grad, x []float64) {
		fd.Gradient(grad, f, x, nil)
	}
	return &optimize.Problem{Func: f, Grad: grad}
}

func poseToParams(p spatialmath.Pose) []float64 {
	r := p.Orientation().AxisAngles().Rodrigues()
	t := p.Point()
	return []float64{r.X, r.Y, r.Z, t.X, t.Y, t.Z}
}

func paramsToPose(x []float64) spatialmath.Pose {
	return spatialmath.NewPoseFromRodrigues(r3.Vector{X: x[3], Y: x[4], Z: x[5]}, r3.Vector{X: x[0], Y: x[1], Z: x[2]})
}

func isFinitePose(p spatialmath.Pose) bool {
	t := p.Point()
	q := p.Orientation().Quaternion()
	return utils.IsFinite(t.X, t.Y, t.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}
