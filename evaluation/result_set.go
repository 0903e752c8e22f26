package evaluation

import (
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/utils"
)

// Representation names how a calibration method stores the extrinsics between two sensors.
type Representation string

const (
	// RepresentationChain derives the relative pose from each sensor's kinematic chain to a shared root.
	RepresentationChain = Representation("chain")
	// RepresentationDirect reads the relative pose from a "<sensor>-<sensor>" transform edge.
	RepresentationDirect = Representation("direct")
	// RepresentationPatternPoses derives the relative pose from each sensor's pattern pose, stored per
	// collection under "<sensor>_optical".
	RepresentationPatternPoses = Representation("pattern_poses")
)

// ParseRepresentation parses a representation name. The empty string yields RepresentationChain.
func ParseRepresentation(s string) (Representation, error) {
	switch r := Representation(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RepresentationChain, nil
	case RepresentationChain, RepresentationDirect, RepresentationPatternPoses:
		return r, nil
	default:
		return "", errors.Errorf("unknown result representation %q, expected %q, %q or %q",
			s, RepresentationChain, RepresentationDirect, RepresentationPatternPoses)
	}
}

// A ResultSet is the output of one calibration method: intrinsics per sensor and the extrinsics
// between sensors.
type ResultSet interface {
	// Name is the method tag reported with every result.
	Name() string
	// Camera returns the method's pinhole model of a sensor.
	Camera(sensor string) (*transform.PinholeCameraModel, error)
	// RelativePose returns to_T_from, the pose of sensor from in the frame of sensor to, as the method
	// estimated it for the given collection.
	RelativePose(from, to, collection string) (spatialmath.Pose, error)
	// CheckSensors returns an error for the first named sensor the method does not know.
	CheckSensors(names ...string) error
}

// ResultSetConfig locates a calibration method's result file.
type ResultSetConfig struct {
	Name           string         `json:"name"`
	Path           string         `json:"path"`
	Representation Representation `json:"representation"`
	// Collection pins the collection extrinsics are read from. By default the collection under test is
	// used when the result file has it, and its first collection otherwise.
	Collection string `json:"collection,omitempty"`
}

// Validate ensures the result file is named, located and in a known representation.
func (cfg ResultSetConfig) Validate(path string) error {
	if cfg.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if cfg.Path == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "path")
	}
	if _, err := ParseRepresentation(string(cfg.Representation)); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	return nil
}

// LoadResultSet reads a result file.
func LoadResultSet(cfg ResultSetConfig, composer referenceframe.ChainComposer) (ResultSet, error) {
	d, err := dataset.Load(cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading result set %q", cfg.Name)
	}
	return NewResultSet(cfg.Name, cfg.Representation, d, cfg.Collection, composer)
}

// LoadResultSets reads every result file concurrently. The result sets keep the order of cfgs.
func LoadResultSets(cfgs []ResultSetConfig, composer referenceframe.ChainComposer) ([]ResultSet, error) {
	results := make([]ResultSet, len(cfgs))
	var g errgroup.Group
	for i, cfg := range cfgs {
		g.Go(func() error {
			rs, err := LoadResultSet(cfg, composer)
			if err != nil {
				return err
			}
			results[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// NewResultSet wraps a dataset holding a method's results.
func NewResultSet(
	name string,
	rep Representation,
	d *dataset.Dataset,
	collection string,
	composer referenceframe.ChainComposer,
) (ResultSet, error) {
	rep, err := ParseRepresentation(string(rep))
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("result set must have a name")
	}
	base := baseResultSet{name: name, d: d, pinned: collection}
	switch rep {
	case RepresentationDirect:
		return &directResultSet{base}, nil
	case RepresentationPatternPoses:
		return &patternPoseResultSet{base}, nil
	default:
		if composer == nil {
			composer = referenceframe.DefaultChainComposer
		}
		return &chainResultSet{baseResultSet: base, composer: composer}, nil
	}
}

type baseResultSet struct {
	name   string
	d      *dataset.Dataset
	pinned string
}

func (rs *baseResultSet) Name() string {
	return rs.name
}

func (rs *baseResultSet) Camera(sensor string) (*transform.PinholeCameraModel, error) {
	return rs.d.CameraModel(sensor)
}

func (rs *baseResultSet) CheckSensors(names ...string) error {
	return rs.d.CheckSensors(rs.name, names...)
}

// collection picks the collection extrinsics are read from.
func (rs *baseResultSet) collection(key string) (*dataset.Collection, error) {
	if rs.pinned != "" {
		c, ok := rs.d.Collection(rs.pinned)
		if !ok {
			return nil, errors.Errorf("result set %q has no collection %s", rs.name, rs.pinned)
		}
		return c, nil
	}
	if c, ok := rs.d.Collection(key); ok {
		return c, nil
	}
	keys := rs.d.SortedCollectionKeys()
	if len(keys) == 0 {
		return nil, errors.Errorf("result set %q has no collections", rs.name)
	}
	c, _ := rs.d.Collection(keys[0])
	return c, nil
}

type chainResultSet struct {
	baseResultSet
	composer referenceframe.ChainComposer
}

func (rs *chainResultSet) RelativePose(from, to, collection string) (spatialmath.Pose, error) {
	c, err := rs.collection(collection)
	if err != nil {
		return nil, err
	}
	transforms, err := c.Poses()
	if err != nil {
		return nil, err
	}
	rootTFrom, err := rs.rootPose(from, transforms)
	if err != nil {
		return nil, err
	}
	rootTTo, err := rs.rootPose(to, transforms)
	if err != nil {
		return nil, err
	}
	return referenceframe.RelativePose(rootTFrom, rootTTo), nil
}

func (rs *chainResultSet) rootPose(sensor string, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error) {
	s, ok := rs.d.Sensors.Get(sensor)
	if !ok {
		return nil, errors.Errorf("result set %q has no sensor %s", rs.name, sensor)
	}
	p, err := rs.composer.ComposeChain(s.Chain, transforms)
	if err != nil {
		return nil, errors.Wrapf(err, "chain of %s", sensor)
	}
	return p, nil
}

type directResultSet struct {
	baseResultSet
}

// RelativePose reads "<from>-<to>", which holds from_T_to, or "<to>-<from>", which holds to_T_from.
func (rs *directResultSet) RelativePose(from, to, collection string) (spatialmath.Pose, error) {
	c, err := rs.collection(collection)
	if err != nil {
		return nil, err
	}
	p, ok, err := c.TransformPose(referenceframe.EdgeKey(from, to))
	if err != nil {
		return nil, err
	}
	if ok {
		return spatialmath.PoseInverse(p), nil
	}
	p, ok, err = c.TransformPose(referenceframe.EdgeKey(to, from))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, referenceframe.NewMissingTransformError(referenceframe.EdgeKey(from, to))
	}
	return p, nil
}

type patternPoseResultSet struct {
	baseResultSet
}

// RelativePose chains to_T_pattern with the inverse of from_T_pattern.
func (rs *patternPoseResultSet) RelativePose(from, to, collection string) (spatialmath.Pose, error) {
	c, err := rs.collection(collection)
	if err != nil {
		return nil, err
	}
	fromTPattern, err := rs.patternPose(c, from)
	if err != nil {
		return nil, err
	}
	toTPattern, err := rs.patternPose(c, to)
	if err != nil {
		return nil, err
	}
	return spatialmath.Compose(toTPattern, spatialmath.PoseInverse(fromTPattern)), nil
}

// CheckSensors also accepts sensors the file only knows through a camera matrix or a pattern pose,
// since stereo toolbox exports carry no sensors block.
func (rs *patternPoseResultSet) CheckSensors(names ...string) error {
	for _, name := range names {
		if _, ok := rs.d.Sensors.Get(name); ok {
			continue
		}
		if _, ok := rs.d.Intrinsics[name]; ok {
			continue
		}
		if !rs.hasPatternPose(name) {
			return utils.NewSensorNotFoundError(name, rs.name)
		}
	}
	return nil
}

func (rs *patternPoseResultSet) hasPatternPose(sensor string) bool {
	for _, c := range rs.d.Collections {
		if c == nil {
			continue
		}
		if _, ok := c.Transforms[sensor+"_optical"]; ok {
			return true
		}
	}
	return false
}

func (rs *patternPoseResultSet) patternPose(c *dataset.Collection, sensor string) (spatialmath.Pose, error) {
	key := sensor + "_optical"
	p, ok, err := c.TransformPose(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, referenceframe.NewMissingTransformError(key)
	}
	return p, nil
}
