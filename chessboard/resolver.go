package chessboard

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/logging"
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/utils"
)

// ResolvedPose is the root-frame pose of the pattern in one collection and the camera it came from.
type ResolvedPose struct {
	Collection string
	Sensor     string
	Pose       spatialmath.Pose
}

// PoseResolverConfig holds the failure policies of a PoseResolver.
type PoseResolverConfig struct {
	// OnPatternNotDetected decides whether a collection no camera resolves aborts the run.
	OnPatternNotDetected utils.FailurePolicy
	// OnSolveFailure decides whether a camera whose pose solve fails aborts the run or is passed over.
	OnSolveFailure utils.FailurePolicy
}

// PoseResolver finds the root-frame pose of the pattern in each collection from the first camera, in
// declared sensor order, that detected it.
type PoseResolver struct {
	lattice  *Lattice
	solver   transform.PoseSolver
	composer referenceframe.ChainComposer
	cfg      PoseResolverConfig
	logger   logging.Logger
}

// NewPoseResolver returns a resolver using the lattice's corners as object points.
func NewPoseResolver(
	lattice *Lattice,
	solver transform.PoseSolver,
	composer referenceframe.ChainComposer,
	cfg PoseResolverConfig,
	logger logging.Logger,
) *PoseResolver {
	return &PoseResolver{
		lattice:  lattice,
		solver:   solver,
		composer: composer,
		cfg:      cfg,
		logger:   logger,
	}
}

// ResolveCollection returns root_T_pattern for one collection. Only cameras contribute; the first
// detecting camera wins and later ones are not consulted.
func (r *PoseResolver) ResolveCollection(key string, c *dataset.Collection, sensors dataset.Sensors) (*ResolvedPose, error) {
	objectPoints := r.lattice.Corners.Points()
	for _, name := range sensors.Names() {
		sensor, _ := sensors.Get(name)
		label := c.Label(name)
		if !label.Detected {
			r.logger.Debugw("pattern not detected", "collection", key, "sensor", name)
			continue
		}
		if !sensor.IsCamera() {
			r.logger.Debugw("skipping non-camera sensor", "collection", key, "sensor", name, "msg_type", sensor.MsgType)
			continue
		}
		if err := label.CheckSize(len(objectPoints)); err != nil {
			r.logger.Warnw("skipping detection", "collection", key, "sensor", name, "error", err)
			continue
		}

		pose, err := r.resolveWithSensor(label, sensor, c, objectPoints)
		if err != nil {
			err = &CollectionError{Collection: key, Sensor: name, Err: err}
			if errors.Is(err, transform.ErrPoseNotConverged) && !r.cfg.OnSolveFailure.ShouldAbort() {
				r.logger.Warnw("pose solve failed, trying next sensor", "collection", key, "sensor", name, "error", err)
				continue
			}
			return nil, err
		}
		r.logger.Debugw("resolved pattern pose", "collection", key, "sensor", name, "pose", spatialmath.PoseToString(pose))
		return &ResolvedPose{Collection: key, Sensor: name, Pose: pose}, nil
	}
	return nil, NewPatternNotDetectedError(key)
}

func (r *PoseResolver) resolveWithSensor(
	label dataset.Label,
	sensor *dataset.Sensor,
	c *dataset.Collection,
	objectPoints []r3.Vector,
) (spatialmath.Pose, error) {
	camera, err := sensor.Model()
	if err != nil {
		return nil, err
	}
	sensorTPattern, err := r.solver.SolvePose(objectPoints, label.Points(), camera)
	if err != nil {
		return nil, err
	}
	transforms, err := c.Poses()
	if err != nil {
		return nil, err
	}
	rootTSensor, err := r.composer.ComposeChain(sensor.Chain, transforms)
	if err != nil {
		return nil, err
	}
	return spatialmath.Compose(rootTSensor, sensorTPattern), nil
}

// Resolve resolves every collection of the dataset in ascending key order and returns the chessboard
// document. Under the skip policy, collections no camera resolves are left out of the document.
func (r *PoseResolver) Resolve(d *dataset.Dataset) (*dataset.Chessboards, error) {
	doc := r.lattice.Document()

	for _, key := range d.SortedCollectionKeys() {
		c, _ := d.Collection(key)
		resolved, err := r.ResolveCollection(key, c, d.Sensors)
		if err != nil {
			if errors.Is(err, ErrPatternNotDetected) && !r.cfg.OnPatternNotDetected.ShouldAbort() {
				r.logger.Warnw("skipping collection", "collection", key, "error", err)
				continue
			}
			return nil, err
		}
		r.logger.Infow("created first guess", "collection", key, "sensor", resolved.Sensor)
		doc.Collections[key] = dataset.NewTransform(resolved.Pose)
	}
	return doc, nil
}
