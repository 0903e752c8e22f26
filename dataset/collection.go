package dataset

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/calibeval/spatialmath"
)

// Pixel is one detected pattern corner in image coordinates.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is a sensor's pattern detection in one collection.
type Label struct {
	Detected bool    `json:"detected"`
	Idxs     []Pixel `json:"idxs"`
}

// Points returns the detected corners.
func (l Label) Points() []r2.Point {
	pts := make([]r2.Point, len(l.Idxs))
	for i, px := range l.Idxs {
		pts[i] = r2.Point{X: px.X, Y: px.Y}
	}
	return pts
}

// CheckSize returns ErrMismatchedDetection unless the label has exactly expected corners.
func (l Label) CheckSize(expected int) error {
	if len(l.Idxs) != expected {
		return errors.Wrapf(ErrMismatchedDetection, "got %d corners, expected %d", len(l.Idxs), expected)
	}
	return nil
}

// Transform is a rigid transform as stored in a dataset, a translation with either a quaternion in
// (x, y, z, w) order or a Rodrigues rotation vector.
type Transform struct {
	Trans []float64 `json:"trans"`
	Quat  []float64 `json:"quat,omitempty"`
	Rodr  []float64 `json:"rodr,omitempty"`
}

// NewTransform stores a pose as a translation and an (x, y, z, w) quaternion.
func NewTransform(p spatialmath.Pose) Transform {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	return Transform{
		Trans: []float64{pt.X, pt.Y, pt.Z},
		Quat:  []float64{q.Imag, q.Jmag, q.Kmag, q.Real},
	}
}

// Pose converts the stored transform to a pose.
func (t Transform) Pose() (spatialmath.Pose, error) {
	if len(t.Trans) != 3 {
		return nil, errors.Errorf("transform translation must have 3 elements, got %d", len(t.Trans))
	}
	trans := r3.Vector{X: t.Trans[0], Y: t.Trans[1], Z: t.Trans[2]}
	switch {
	case len(t.Quat) == 4:
		q := spatialmath.NewQuaternion(t.Quat[3], t.Quat[0], t.Quat[1], t.Quat[2])
		return spatialmath.NewPose(trans, q), nil
	case len(t.Quat) != 0:
		return nil, errors.Errorf("transform quaternion must have 4 elements, got %d", len(t.Quat))
	case len(t.Rodr) == 3:
		return spatialmath.NewPoseFromRodrigues(trans, r3.Vector{X: t.Rodr[0], Y: t.Rodr[1], Z: t.Rodr[2]}), nil
	default:
		return nil, errors.New("transform has neither a quaternion nor a rodrigues rotation")
	}
}

// Collection is one synchronized capture across every sensor of the rig.
type Collection struct {
	Labels     map[string]Label     `json:"labels"`
	Transforms map[string]Transform `json:"transforms"`
}

// Label returns a sensor's detection. A sensor without a label did not detect the pattern.
func (c *Collection) Label(sensor string) Label {
	return c.Labels[sensor]
}

// Detected reports whether the sensor detected the pattern in this collection.
func (c *Collection) Detected(sensor string) bool {
	return c.Labels[sensor].Detected
}

// Poses converts every stored transform to a pose, keyed like the transforms.
func (c *Collection) Poses() (map[string]spatialmath.Pose, error) {
	poses := make(map[string]spatialmath.Pose, len(c.Transforms))
	for key, tf := range c.Transforms {
		p, err := tf.Pose()
		if err != nil {
			return nil, errors.Wrapf(err, "transform %q", key)
		}
		poses[key] = p
	}
	return poses, nil
}

// TransformPose converts the single named transform to a pose.
func (c *Collection) TransformPose(key string) (spatialmath.Pose, bool, error) {
	tf, ok := c.Transforms[key]
	if !ok {
		return nil, false, nil
	}
	p, err := tf.Pose()
	if err != nil {
		return nil, true, errors.Wrapf(err, "transform %q", key)
	}
	return p, true, nil
}
