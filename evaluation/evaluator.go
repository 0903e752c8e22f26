// Package evaluation cross-validates the results of several calibration methods. For every collection
// where two cameras both saw the pattern, the first camera's detections are carried into the second
// camera's image through the homography each method's calibration implies, and compared with what the
// second camera actually detected.
package evaluation

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/calibeval/chessboard"
	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/logging"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/utils"
)

// Config selects the two sensors under test and the failure policy.
type Config struct {
	// FirstSensor is the sensor whose detections are projected.
	FirstSensor string
	// SecondSensor is the sensor whose detections are the reference.
	SecondSensor string
	// OnSolveFailure decides whether a pose solve that does not converge aborts the run or excludes
	// the collection.
	OnSolveFailure utils.FailurePolicy
}

// MethodErrors holds one method's reprojection errors for one collection.
type MethodErrors struct {
	Method string `json:"method"`
	// Errors is projected minus detected, per point, in pixels.
	Errors []r2.Point `json:"-"`
	MaxX   float64    `json:"max_abs_x"`
	MaxY   float64    `json:"max_abs_y"`
}

// CollectionResult holds every method's errors for one accepted collection, in result set order.
type CollectionResult struct {
	Collection string         `json:"collection"`
	Methods    []MethodErrors `json:"methods"`
}

// Evaluator computes the cross-camera reprojection error of every calibration method.
type Evaluator struct {
	cfg     Config
	lattice *chessboard.Lattice
	solver  transform.PoseSolver
	logger  logging.Logger
}

// NewEvaluator returns an evaluator using the lattice's evaluation points as object points.
func NewEvaluator(lattice *chessboard.Lattice, solver transform.PoseSolver, cfg Config, logger logging.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, lattice: lattice, solver: solver, logger: logger}
}

// Evaluate processes the test dataset's collections in ascending key order and aggregates the errors.
// Collections without a detection pair, with a detection of the wrong size, or with a degenerate
// projection are excluded from every method.
func (e *Evaluator) Evaluate(test *dataset.Dataset, results []ResultSet) (*Report, error) {
	if len(results) == 0 {
		return nil, errors.New("no result sets to evaluate")
	}
	if err := test.CheckSensors("test dataset", e.cfg.FirstSensor, e.cfg.SecondSensor); err != nil {
		return nil, err
	}
	methods := make([]string, 0, len(results))
	seen := map[string]bool{}
	for _, rs := range results {
		if seen[rs.Name()] {
			return nil, errors.Errorf("result set %q given more than once", rs.Name())
		}
		seen[rs.Name()] = true
		if err := rs.CheckSensors(e.cfg.FirstSensor, e.cfg.SecondSensor); err != nil {
			return nil, err
		}
		methods = append(methods, rs.Name())
	}

	agg := NewAggregator(methods, e.lattice.Corners.Len())
	for _, key := range test.SortedCollectionKeys() {
		c, _ := test.Collection(key)
		result, err := e.EvaluateCollection(key, c, results)
		if err != nil {
			if skippable(err) ||
				(errors.Is(err, transform.ErrPoseNotConverged) && !e.cfg.OnSolveFailure.ShouldAbort()) {
				e.logger.Warnw("skipping collection", "collection", key, "error", err)
				continue
			}
			return nil, err
		}
		for _, m := range result.Methods {
			e.logger.Debugw("collection errors", "collection", key, "method", m.Method, "max_x", m.MaxX, "max_y", m.MaxY)
		}
		if err := agg.Add(result); err != nil {
			return nil, err
		}
	}
	if len(agg.Accepted()) == 0 {
		e.logger.Warn("no collection was accepted")
	}
	return agg.Report(e.cfg.FirstSensor, e.cfg.SecondSensor), nil
}

// EvaluateCollection computes every method's errors for one collection of the test dataset.
func (e *Evaluator) EvaluateCollection(key string, c *dataset.Collection, results []ResultSet) (*CollectionResult, error) {
	s1, s2 := e.cfg.FirstSensor, e.cfg.SecondSensor
	if !c.Detected(s1) || !c.Detected(s2) {
		return nil, &CollectionError{Collection: key, Err: ErrMissingDetectionPair}
	}
	label1, label2 := c.Label(s1), c.Label(s2)
	n := e.lattice.Corners.Len()
	for _, l := range []dataset.Label{label1, label2} {
		if err := l.CheckSize(n); err != nil {
			return nil, &CollectionError{Collection: key, Err: err}
		}
	}
	objectPoints := e.lattice.Corners.Points()
	pixels1, pixels2 := label1.Points(), label2.Points()

	result := &CollectionResult{Collection: key, Methods: make([]MethodErrors, 0, len(results))}
	for _, rs := range results {
		errs, err := e.methodErrors(key, rs, objectPoints, pixels1, pixels2)
		if err != nil {
			return nil, &CollectionError{Collection: key, Method: rs.Name(), Err: err}
		}
		m := MethodErrors{Method: rs.Name(), Errors: errs}
		m.MaxX, m.MaxY = maxAbs(errs)
		result.Methods = append(result.Methods, m)
	}
	return result, nil
}

func (e *Evaluator) methodErrors(
	key string,
	rs ResultSet,
	objectPoints []r3.Vector,
	pixels1, pixels2 []r2.Point,
) ([]r2.Point, error) {
	s1, s2 := e.cfg.FirstSensor, e.cfg.SecondSensor
	camera1, err := rs.Camera(s1)
	if err != nil {
		return nil, err
	}
	camera2, err := rs.Camera(s2)
	if err != nil {
		return nil, err
	}
	s1TPattern, err := e.solver.SolvePose(objectPoints, pixels1, camera1)
	if err != nil {
		return nil, err
	}
	s2TS1, err := rs.RelativePose(s1, s2, key)
	if err != nil {
		return nil, err
	}
	s2TPattern := spatialmath.Compose(s2TS1, s1TPattern)

	h, err := CrossHomography(camera1.PinholeCameraIntrinsics, camera2.PinholeCameraIntrinsics, s1TPattern, s2TPattern)
	if err != nil {
		return nil, err
	}
	projected, err := ProjectWithMeanScale(h, pixels1)
	if err != nil {
		return nil, err
	}
	errs := make([]r2.Point, len(projected))
	for i := range projected {
		errs[i] = projected[i].Sub(pixels2[i])
	}
	return errs, nil
}

func maxAbs(errs []r2.Point) (float64, float64) {
	var maxX, maxY float64
	for _, e := range errs {
		maxX = math.Max(maxX, math.Abs(e.X))
		maxY = math.Max(maxY, math.Abs(e.Y))
	}
	return maxX, maxY
}
