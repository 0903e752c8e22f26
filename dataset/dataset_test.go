package dataset

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
	"go.viam.com/calibeval/utils"
)

func loadTwoCameras(t *testing.T) *Dataset {
	t.Helper()
	d, err := Load(utils.ResolveFile("dataset/data/two_cameras.json"))
	test.That(t, err, test.ShouldBeNil)
	return d
}

func TestLoad(t *testing.T) {
	d := loadTwoCameras(t)

	// declared order, not alphabetical
	test.That(t, d.Sensors.Names(), test.ShouldResemble, []string{"top_right_camera", "lidar", "top_left_camera"})
	test.That(t, d.Sensors.Len(), test.ShouldEqual, 3)

	// numeric, not lexical
	test.That(t, d.SortedCollectionKeys(), test.ShouldResemble, []string{"2", "10"})

	x, y, err := d.CalibrationConfig.CalibrationPattern.Corners()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, x, test.ShouldEqual, 3)
	test.That(t, y, test.ShouldEqual, 2)
	test.That(t, d.CalibrationConfig.CalibrationPattern.Size, test.ShouldEqual, 0.1)

	left, ok := d.Sensors.Get("top_left_camera")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, left.IsCamera(), test.ShouldBeTrue)
	test.That(t, left.Chain, test.ShouldResemble, referenceframe.Chain{
		{Parent: "base_link", Child: "bracket"},
		{Parent: "bracket", Child: "top_left_camera_optical"},
	})
	lidar, _ := d.Sensors.Get("lidar")
	test.That(t, lidar.IsCamera(), test.ShouldBeFalse)

	model, err := d.CameraModel("top_left_camera")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Fx, test.ShouldEqual, 510.)
	test.That(t, model.Distortion.Parameters()[0], test.ShouldEqual, 0.01)
	test.That(t, model.Distortion.ModelType(), test.ShouldEqual, transform.BrownConradyDistortionType)

	_, err = d.CameraModel("lidar")
	test.That(t, errors.Is(err, transform.ErrNoIntrinsics), test.ShouldBeTrue)

	c, ok := d.Collection("10")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, c.Detected("top_left_camera"), test.ShouldBeTrue)
	test.That(t, c.Detected("top_right_camera"), test.ShouldBeFalse)
	test.That(t, c.Detected("unknown"), test.ShouldBeFalse)
	test.That(t, c.Label("top_left_camera").Points()[1], test.ShouldResemble, r2.Point{X: 150, Y: 100})
	test.That(t, c.Label("top_left_camera").CheckSize(6), test.ShouldBeNil)
	test.That(t, errors.Is(c.Label("top_left_camera").CheckSize(54), ErrMismatchedDetection), test.ShouldBeTrue)

	poses, err := c.Poses()
	test.That(t, err, test.ShouldBeNil)
	rootTCamera, err := referenceframe.ComposeChain(left.Chain, poses)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(rootTCamera.Point(), r3.Vector{Y: 0.1}, 1e-9), test.ShouldBeTrue)
	test.That(t, rootTCamera.Orientation().AxisAngles().Theta, test.ShouldAlmostEqual, math.Pi/2)

	test.That(t, d.CheckSensors("test dataset", "top_left_camera", "top_right_camera"), test.ShouldBeNil)
	err = d.CheckSensors("test dataset", "top_left_camera", "depth_camera")
	test.That(t, err.Error(), test.ShouldEqual, `sensor "depth_camera" not found in test dataset`)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Read(strings.NewReader(`{"sensors": []}`))
	test.That(t, err, test.ShouldNotBeNil)

	d, err := Read(strings.NewReader(`{"sensors": null, "collections": {"1": null}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Sensors.Len(), test.ShouldEqual, 0)
	test.That(t, d.SortedCollectionKeys(), test.ShouldBeEmpty)
}

func TestDatasetIntrinsicsFallback(t *testing.T) {
	d, err := Read(strings.NewReader(`{
		"sensors": {"left": {"msg_type": "Image", "chain": []}},
		"K": {"left": [400, 0, 200, 0, 400, 100, 0, 0, 1]}
	}`))
	test.That(t, err, test.ShouldBeNil)
	model, err := d.CameraModel("left")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Ppy, test.ShouldEqual, 100.)
}

func TestSensorsRoundTrip(t *testing.T) {
	sensors := NewSensors()
	sensors.Add("b", &Sensor{MsgType: MsgTypeImage})
	sensors.Add("a", &Sensor{MsgType: "LaserScan"})
	sensors.Add("b", &Sensor{MsgType: "PointCloud2"})
	test.That(t, sensors.Names(), test.ShouldResemble, []string{"b", "a"})

	data, err := sensors.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.Index(string(data), `"b"`), test.ShouldBeLessThan, strings.Index(string(data), `"a"`))

	var decoded Sensors
	test.That(t, decoded.UnmarshalJSON(data), test.ShouldBeNil)
	test.That(t, decoded.Names(), test.ShouldResemble, []string{"b", "a"})
	b, _ := decoded.Get("b")
	test.That(t, b.MsgType, test.ShouldEqual, "PointCloud2")
}

func TestTransformPose(t *testing.T) {
	p := spatialmath.NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &spatialmath.R4AA{Theta: 0.5, RX: 1})
	tf := NewTransform(p)
	// quaternion is stored x, y, z, w
	test.That(t, tf.Quat[3], test.ShouldAlmostEqual, math.Cos(0.25))
	test.That(t, tf.Quat[0], test.ShouldAlmostEqual, math.Sin(0.25))

	back, err := tf.Pose()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqualEps(p, back, 1e-9), test.ShouldBeTrue)

	rodr := Transform{Trans: []float64{1, 2, 3}, Rodr: []float64{0.5, 0, 0}}
	back, err = rodr.Pose()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqualEps(p, back, 1e-9), test.ShouldBeTrue)

	for _, bad := range []Transform{
		{Trans: []float64{1, 2}},
		{Trans: []float64{1, 2, 3}, Quat: []float64{0, 0, 1}},
		{Trans: []float64{1, 2, 3}},
	} {
		_, err := bad.Pose()
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestChessboardsRoundTrip(t *testing.T) {
	doc := NewChessboards(9, 6, 0.1)
	test.That(t, doc.NumberCorners, test.ShouldEqual, 54)
	doc.Collections["0"] = NewTransform(spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}))
	doc.Points = [][]float64{{0, 0.1}, {0, 0}, {0, 0}, {1, 1}}

	path := filepath.Join(t.TempDir(), "chessboards.json")
	test.That(t, WriteChessboards(path, doc), test.ShouldBeNil)
	back, err := ReadChessboards(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, doc)
}
