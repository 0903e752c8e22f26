// Package testutils builds deterministic synthetic rigs for tests: cameras with known intrinsics and
// poses looking at a chessboard with a known pose, and the dataset such a rig would have recorded.
package testutils

import (
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/calibeval/dataset"
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/spatialmath"
)

// RootFrame is the root frame every synthetic camera chain starts from.
const RootFrame = "base_link"

// SyntheticCamera is a camera of a synthetic rig.
type SyntheticCamera struct {
	Name        string
	K           []float64
	D           []float64
	RootTCamera spatialmath.Pose
}

// OpticalFrame is the frame name the camera's chain ends in.
func (c SyntheticCamera) OpticalFrame() string {
	return c.Name + "_optical"
}

// Model returns the camera's pinhole model.
func (c SyntheticCamera) Model() *transform.PinholeCameraModel {
	model, err := transform.NewPinholeCameraModel(c.K, c.D)
	if err != nil {
		panic(err)
	}
	return model
}

// SyntheticCollection places the pattern for one collection. Cameras named in Undetected report no
// detection.
type SyntheticCollection struct {
	Key          string
	RootTPattern spatialmath.Pose
	Undetected   []string
}

// SyntheticRig is the full description a synthetic dataset is generated from.
type SyntheticRig struct {
	CountX, CountY int
	SquareSize     float64
	Cameras        []SyntheticCamera
	Collections    []SyntheticCollection
}

// DefaultK is a 640x480 camera matrix.
var DefaultK = []float64{600, 0, 320, 0, 600, 240, 0, 0, 1}

// DefaultCameras returns a left camera at the root and a right camera 10cm along x, turned slightly
// toward the left one.
func DefaultCameras() []SyntheticCamera {
	return []SyntheticCamera{
		{
			Name:        "left_camera",
			K:           DefaultK,
			RootTCamera: spatialmath.NewZeroPose(),
		},
		{
			Name: "right_camera",
			K:    []float64{610, 0, 315, 0, 605, 245, 0, 0, 1},
			RootTCamera: spatialmath.NewPose(
				r3.Vector{X: 0.1, Y: 0, Z: 0},
				&spatialmath.R4AA{Theta: -0.05, RX: 0, RY: 1, RZ: 0},
			),
		},
	}
}

// DefaultCollections returns n collections with the pattern two meters in front of the rig, moved and
// tilted a little differently each time.
func DefaultCollections(n, countX, countY int, squareSize float64) []SyntheticCollection {
	width, height := float64(countX-1)*squareSize, float64(countY-1)*squareSize
	collections := make([]SyntheticCollection, n)
	for i := range collections {
		f := float64(i)
		collections[i] = SyntheticCollection{
			Key: fmt.Sprint(i),
			RootTPattern: spatialmath.NewPose(
				r3.Vector{X: -width/2 + 0.05*f, Y: -height/2 - 0.03*f, Z: 2 + 0.1*f},
				&spatialmath.R4AA{Theta: 0.1 + 0.05*f, RX: 1, RY: 0.5, RZ: 0.1},
			),
		}
	}
	return collections
}

// NewDefaultRig returns a two-camera rig observing a 9x6 pattern in three collections.
func NewDefaultRig() SyntheticRig {
	return SyntheticRig{
		CountX:      9,
		CountY:      6,
		SquareSize:  0.1,
		Cameras:     DefaultCameras(),
		Collections: DefaultCollections(3, 9, 6, 0.1),
	}
}

// PatternCorners lays out the inner corners of a pattern row by row, y outer and x inner.
func PatternCorners(countX, countY int, squareSize float64) []r3.Vector {
	pts := make([]r3.Vector, 0, countX*countY)
	for y := 0; y < countY; y++ {
		for x := 0; x < countX; x++ {
			pts = append(pts, r3.Vector{X: float64(x) * squareSize, Y: float64(y) * squareSize})
		}
	}
	return pts
}

// CameraTPattern returns the pose of the pattern in the camera frame.
func (c SyntheticCamera) CameraTPattern(rootTPattern spatialmath.Pose) spatialmath.Pose {
	return spatialmath.PoseBetween(c.RootTCamera, rootTPattern)
}

// Project returns the pixels the camera sees the pattern points at.
func (c SyntheticCamera) Project(cameraTPattern spatialmath.Pose, pts []r3.Vector) []dataset.Pixel {
	model := c.Model()
	pixels := make([]dataset.Pixel, len(pts))
	for i, pt := range pts {
		px := model.Project(spatialmath.TransformPoint(cameraTPattern, pt))
		pixels[i] = dataset.Pixel{X: px.X, Y: px.Y}
	}
	return pixels
}

// Dataset builds the dataset the rig would record. Every collection stores each camera's chain edge
// from the root, each camera's pattern pose under its optical frame name, and the direct relative
// transform between every ordered pair of cameras.
func (rig SyntheticRig) Dataset() *dataset.Dataset {
	d := &dataset.Dataset{
		Sensors:     dataset.NewSensors(),
		Collections: map[string]*dataset.Collection{},
	}
	d.CalibrationConfig.CalibrationPattern.Dimension.X = float64(rig.CountX)
	d.CalibrationConfig.CalibrationPattern.Dimension.Y = float64(rig.CountY)
	d.CalibrationConfig.CalibrationPattern.Size = rig.SquareSize

	for _, cam := range rig.Cameras {
		d.Sensors.Add(cam.Name, &dataset.Sensor{
			Name:       cam.Name,
			MsgType:    dataset.MsgTypeImage,
			CameraInfo: &dataset.CameraInfo{K: cam.K, D: cam.D},
			Chain:      referenceframe.Chain{{Parent: RootFrame, Child: cam.OpticalFrame()}},
		})
	}

	corners := PatternCorners(rig.CountX, rig.CountY, rig.SquareSize)
	for _, sc := range rig.Collections {
		c := &dataset.Collection{
			Labels:     map[string]dataset.Label{},
			Transforms: map[string]dataset.Transform{},
		}
		undetected := map[string]bool{}
		for _, name := range sc.Undetected {
			undetected[name] = true
		}
		for _, cam := range rig.Cameras {
			cameraTPattern := cam.CameraTPattern(sc.RootTPattern)
			c.Transforms[referenceframe.EdgeKey(RootFrame, cam.OpticalFrame())] = dataset.NewTransform(cam.RootTCamera)
			c.Transforms[cam.OpticalFrame()] = dataset.NewTransform(cameraTPattern)
			if undetected[cam.Name] {
				c.Labels[cam.Name] = dataset.Label{}
				continue
			}
			c.Labels[cam.Name] = dataset.Label{Detected: true, Idxs: cam.Project(cameraTPattern, corners)}
		}
		for _, from := range rig.Cameras {
			for _, to := range rig.Cameras {
				if from.Name == to.Name {
					continue
				}
				key := referenceframe.EdgeKey(from.Name, to.Name)
				c.Transforms[key] = dataset.NewTransform(spatialmath.PoseBetween(from.RootTCamera, to.RootTCamera))
			}
		}
		d.Collections[sc.Key] = c
	}
	return d
}
