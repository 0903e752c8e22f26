package evaluation

import (
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/calibeval/chessboard"
	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/logging"
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/testutils"
	"go.viam.com/calibeval/testutils/inject"
	"go.viam.com/calibeval/utils"
)

// fakeResultSet is a ResultSet whose relative pose is computed by a function.
type fakeResultSet struct {
	ResultSet
	name             string
	relativePoseFunc func(from, to, collection string) (spatialmath.Pose, error)
}

func (f *fakeResultSet) Name() string {
	return f.name
}

func (f *fakeResultSet) RelativePose(from, to, collection string) (spatialmath.Pose, error) {
	return f.relativePoseFunc(from, to, collection)
}

func newTestEvaluator(t *testing.T, rig testutils.SyntheticRig, solver transform.PoseSolver, cfg Config) *Evaluator {
	t.Helper()
	lattice, err := chessboard.NewLattice(chessboard.NewPattern(rig.CountX, rig.CountY, rig.SquareSize))
	test.That(t, err, test.ShouldBeNil)
	if solver == nil {
		solver = transform.NewPlanarPoseSolver(logging.NewTestLogger(t))
	}
	if cfg.FirstSensor == "" {
		cfg.FirstSensor, cfg.SecondSensor = rig.Cameras[0].Name, rig.Cameras[1].Name
	}
	return NewEvaluator(lattice, solver, cfg, logging.NewTestLogger(t))
}

func allRepresentations(t *testing.T, d *dataset.Dataset) []ResultSet {
	t.Helper()
	var results []ResultSet
	for _, rep := range []Representation{RepresentationChain, RepresentationDirect, RepresentationPatternPoses} {
		rs, err := NewResultSet(string(rep), rep, d, "", nil)
		test.That(t, err, test.ShouldBeNil)
		results = append(results, rs)
	}
	return results
}

func TestEvaluateIdenticalCameras(t *testing.T) {
	rig := testutils.NewDefaultRig()
	rig.Cameras = []testutils.SyntheticCamera{
		{Name: "a", K: testutils.DefaultK, RootTCamera: spatialmath.NewZeroPose()},
		{Name: "b", K: testutils.DefaultK, RootTCamera: spatialmath.NewZeroPose()},
	}
	d := rig.Dataset()

	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "1", "2"})
	test.That(t, report.TotalPoints, test.ShouldEqual, 3*54)
	for _, c := range report.Collections {
		test.That(t, c.Methods, test.ShouldHaveLength, 3)
		for _, m := range c.Methods {
			test.That(t, m.Errors, test.ShouldHaveLength, 54)
			for _, e := range m.Errors {
				test.That(t, e.X, test.ShouldAlmostEqual, 0, 1e-9)
				test.That(t, e.Y, test.ShouldAlmostEqual, 0, 1e-9)
			}
		}
	}
	for _, s := range report.Summary {
		test.That(t, s.MeanAbsX, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, s.MeanAbsY, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, s.Std, test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestEvaluateRefinedLattice(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	p := chessboard.NewPattern(rig.CountX, rig.CountY, rig.SquareSize)
	p.Factor = 2
	lattice, err := chessboard.NewLattice(p)
	test.That(t, err, test.ShouldBeNil)
	e := NewEvaluator(lattice, transform.NewPlanarPoseSolver(logging.NewTestLogger(t)), Config{
		FirstSensor:  rig.Cameras[0].Name,
		SecondSensor: rig.Cameras[1].Name,
	}, logging.NewTestLogger(t))

	// detections hold the corners whatever the lattice refinement
	report, err := e.Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "1", "2"})
	test.That(t, report.TotalPoints, test.ShouldEqual, 3*54)
}

func TestEvaluateStereoToolboxExport(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()

	// camera matrices beside the collections and pattern poses per camera, with no sensors block
	export := map[string]interface{}{
		"K": map[string][]float64{
			rig.Cameras[0].Name: rig.Cameras[0].K,
			rig.Cameras[1].Name: rig.Cameras[1].K,
		},
		"collections": d.Collections,
	}
	path := filepath.Join(t.TempDir(), "matlab.json")
	test.That(t, utils.WriteJSONFile(path, export), test.ShouldBeNil)
	matlab, err := LoadResultSet(ResultSetConfig{Name: "matlab", Path: path, Representation: RepresentationPatternPoses}, nil)
	test.That(t, err, test.ShouldBeNil)
	reference, err := NewResultSet("reference", RepresentationPatternPoses, d, "", nil)
	test.That(t, err, test.ShouldBeNil)

	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, []ResultSet{matlab, reference})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "1", "2"})
	test.That(t, report.Summary[0].MeanAbsX, test.ShouldAlmostEqual, report.Summary[1].MeanAbsX, 1e-9)
	test.That(t, report.Summary[0].MeanAbsY, test.ShouldAlmostEqual, report.Summary[1].MeanAbsY, 1e-9)

	err = matlab.CheckSensors(rig.Cameras[0].Name, "top_camera")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `sensor "top_camera" not found in matlab`)
}

func TestEvaluateFrontoParallelBaseline(t *testing.T) {
	// a pure sideways baseline keeps every point at the same depth in both cameras, so the mean scale
	// is exact and the true calibration reprojects without error
	rig := testutils.NewDefaultRig()
	rig.Cameras[1].RootTCamera = spatialmath.NewPoseFromPoint(r3.Vector{X: 0.12, Y: -0.02})
	d := rig.Dataset()

	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldHaveLength, 3)
	for _, s := range report.Summary {
		test.That(t, s.MeanAbsX, test.ShouldBeLessThan, 1e-3)
		test.That(t, s.MeanAbsY, test.ShouldBeLessThan, 1e-3)
	}

	t.Run("a wrong baseline shows up as error", func(t *testing.T) {
		wrong := testutils.NewDefaultRig()
		wrong.Cameras[1].RootTCamera = spatialmath.NewPoseFromPoint(r3.Vector{X: 0.15, Y: -0.02})
		rs, err := NewResultSet("wrong", RepresentationChain, wrong.Dataset(), "", nil)
		test.That(t, err, test.ShouldBeNil)
		truth, err := NewResultSet("truth", RepresentationChain, d, "", nil)
		test.That(t, err, test.ShouldBeNil)

		report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, []ResultSet{truth, rs})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, report.Methods(), test.ShouldResemble, []string{"truth", "wrong"})
		test.That(t, report.Summary[1].MeanAbsX, test.ShouldBeGreaterThan, 1.)
		test.That(t, report.Summary[1].MeanAbsX, test.ShouldBeGreaterThan, 100*report.Summary[1].MeanAbsY)
		for _, c := range report.Collections {
			test.That(t, c.Methods[1].MaxX, test.ShouldBeGreaterThan, 1.)
		}
	})
}

func TestEvaluateRepresentationsAgree(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	for _, c := range report.Collections {
		chain := c.Methods[0].Errors
		for _, m := range c.Methods[1:] {
			for i, e := range m.Errors {
				test.That(t, e.X, test.ShouldAlmostEqual, chain[i].X, 1e-6)
				test.That(t, e.Y, test.ShouldAlmostEqual, chain[i].Y, 1e-6)
			}
		}
	}
}

func TestEvaluateSkipsMissingPairs(t *testing.T) {
	rig := testutils.NewDefaultRig()
	rig.Collections = testutils.DefaultCollections(4, rig.CountX, rig.CountY, rig.SquareSize)
	rig.Collections[1].Undetected = []string{right}
	rig.Collections[3].Undetected = []string{left, right}
	d := rig.Dataset()

	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "2"})
	test.That(t, report.TotalPoints, test.ShouldEqual, 2*54)

	c, _ := d.Collection("1")
	_, err = newTestEvaluator(t, rig, nil, Config{}).EvaluateCollection("1", c, allRepresentations(t, d))
	test.That(t, errors.Is(err, ErrMissingDetectionPair), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "collection 1")
}

func TestEvaluateSkipsMismatchedDetections(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	c, _ := d.Collection("2")
	l := c.Labels[left]
	l.Idxs = append(l.Idxs, dataset.Pixel{X: 1, Y: 1})
	c.Labels[left] = l

	report, err := newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, allRepresentations(t, d))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "1"})
}

func TestEvaluateDegenerateScale(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	sensor1TPattern := spatialmath.NewPoseFromPoint(r3.Vector{Z: 2})
	solver := &inject.PoseSolver{
		SolvePoseFunc: func(_ []r3.Vector, _ []r2.Point, _ *transform.PinholeCameraModel) (spatialmath.Pose, error) {
			return sensor1TPattern, nil
		},
	}
	truth, err := NewResultSet("truth", RepresentationChain, d, "", nil)
	test.That(t, err, test.ShouldBeNil)
	// in collection 1 this method puts the pattern plane through the second camera
	edgeOn := &fakeResultSet{
		ResultSet: truth,
		name:      "edge_on",
		relativePoseFunc: func(from, to, collection string) (spatialmath.Pose, error) {
			if collection == "1" {
				sensor2TPattern := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1})
				return spatialmath.Compose(sensor2TPattern, spatialmath.PoseInverse(sensor1TPattern)), nil
			}
			return truth.RelativePose(from, to, collection)
		},
	}

	e := newTestEvaluator(t, rig, solver, Config{})
	c, _ := d.Collection("1")
	_, err = e.EvaluateCollection("1", c, []ResultSet{truth, edgeOn})
	test.That(t, errors.Is(err, ErrDegenerateScale), test.ShouldBeTrue)
	var collErr *CollectionError
	test.That(t, errors.As(err, &collErr), test.ShouldBeTrue)
	test.That(t, collErr.Method, test.ShouldEqual, "edge_on")

	// the collection is excluded from every method
	report, err := e.Evaluate(d, []ResultSet{truth, edgeOn})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"0", "2"})
	test.That(t, report.Summary[0].Points, test.ShouldEqual, report.Summary[1].Points)
}

func TestEvaluateSolveFailure(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	planar := transform.NewPlanarPoseSolver(logging.NewTestLogger(t))
	failSecondCall := func() *inject.PoseSolver {
		solver := &inject.PoseSolver{PoseSolver: planar}
		solver.SolvePoseFunc = func(obj []r3.Vector, img []r2.Point, camera *transform.PinholeCameraModel) (spatialmath.Pose, error) {
			if solver.Calls == 2 {
				return nil, errors.Wrap(transform.ErrPoseNotConverged, "pattern behind camera")
			}
			return planar.SolvePose(obj, img, camera)
		}
		return solver
	}
	results := allRepresentations(t, d)

	_, err := newTestEvaluator(t, rig, failSecondCall(), Config{}).Evaluate(d, results)
	test.That(t, errors.Is(err, transform.ErrPoseNotConverged), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "collection 0, method direct")

	report, err := newTestEvaluator(t, rig, failSecondCall(), Config{OnSolveFailure: utils.FailurePolicySkip}).Evaluate(d, results)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Accepted(), test.ShouldResemble, []string{"1", "2"})
}

func TestEvaluateSensorChecks(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	results := allRepresentations(t, d)

	_, err := newTestEvaluator(t, rig, nil, Config{FirstSensor: left, SecondSensor: "lidar"}).Evaluate(d, results)
	test.That(t, err, test.ShouldBeError, utils.NewSensorNotFoundError("lidar", "test dataset"))

	other := testutils.NewDefaultRig()
	other.Cameras[1].Name = "rear_camera"
	rs, err := NewResultSet("other", RepresentationChain, other.Dataset(), "", nil)
	test.That(t, err, test.ShouldBeNil)
	_, err = newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, []ResultSet{rs})
	test.That(t, err, test.ShouldBeError, utils.NewSensorNotFoundError(right, "other"))

	_, err = newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, []ResultSet{results[0], results[0]})
	test.That(t, err.Error(), test.ShouldContainSubstring, "more than once")
}

func TestEvaluateMissingExtrinsics(t *testing.T) {
	rig := testutils.NewDefaultRig()
	d := rig.Dataset()
	results := testutils.NewDefaultRig().Dataset()
	for _, c := range results.Collections {
		delete(c.Transforms, referenceframe.EdgeKey(left, right))
		delete(c.Transforms, referenceframe.EdgeKey(right, left))
	}
	rs, err := NewResultSet("stereo", RepresentationDirect, results, "", nil)
	test.That(t, err, test.ShouldBeNil)

	_, err = newTestEvaluator(t, rig, nil, Config{}).Evaluate(d, []ResultSet{rs})
	test.That(t, errors.Is(err, referenceframe.ErrMissingTransform), test.ShouldBeTrue)
}
