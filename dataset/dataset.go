// Package dataset reads and writes the calibration dataset files shared by every calibration method:
// the rig's sensors, the per-collection pattern detections and transforms, and the calibration pattern.
package dataset

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/calibeval/rimage/transform"
	"go.viam.com/calibeval/utils"
)

// MsgTypeImage is the message type of camera sensors.
const MsgTypeImage = "Image"

// ErrMismatchedDetection is returned when a detection does not have one pixel per pattern corner.
var ErrMismatchedDetection = errors.New("detection does not match the pattern corner count")

// Dataset is one calibration dataset file. Several files, one per calibration method, may describe the
// same physical collections; they are matched by collection key and sensor name.
type Dataset struct {
	Sensors           Sensors                `json:"sensors"`
	Collections       map[string]*Collection `json:"collections"`
	CalibrationConfig CalibrationConfig      `json:"calibration_config"`
	// Intrinsics holds row-major camera matrices keyed by sensor, for tools that store them beside the
	// sensors instead of inside each sensor's camera_info.
	Intrinsics map[string][]float64 `json:"K,omitempty"`
}

// CalibrationConfig holds the settings the dataset was captured with.
type CalibrationConfig struct {
	CalibrationPattern CalibrationPattern `json:"calibration_pattern"`
}

// CalibrationPattern describes the chessboard: its inner corner counts and the square edge length.
type CalibrationPattern struct {
	Dimension struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"dimension"`
	Size float64 `json:"size"`
}

// Corners returns the inner corner counts along x and y.
func (p CalibrationPattern) Corners() (int, int, error) {
	x, y := p.Dimension.X, p.Dimension.Y
	if x != math.Trunc(x) || y != math.Trunc(y) || x < 1 || y < 1 {
		return 0, 0, errors.Errorf("calibration pattern dimension must be positive integers, got (%v, %v)", x, y)
	}
	return int(x), int(y), nil
}

// Load reads a dataset from a JSON file.
func Load(path string) (*Dataset, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening dataset file")
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	d, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return d, nil
}

// Read parses a dataset from JSON.
func Read(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	d := &Dataset{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	for key, c := range d.Collections {
		if c == nil {
			delete(d.Collections, key)
		}
	}
	return d, nil
}

// SortedCollectionKeys returns the collection keys in ascending numeric order.
func (d *Dataset) SortedCollectionKeys() []string {
	keys := make([]string, 0, len(d.Collections))
	for key := range d.Collections {
		keys = append(keys, key)
	}
	return utils.SortNumericKeys(keys)
}

// Collection returns the collection with the given key.
func (d *Dataset) Collection(key string) (*Collection, bool) {
	c, ok := d.Collections[key]
	return c, ok
}

// CheckSensors returns an error for the first named sensor the dataset does not declare.
func (d *Dataset) CheckSensors(source string, names ...string) error {
	for _, name := range names {
		if _, ok := d.Sensors.Get(name); !ok {
			return utils.NewSensorNotFoundError(name, source)
		}
	}
	return nil
}

// CameraModel returns the pinhole model of a sensor. The sensor's own camera_info wins over the
// dataset-level matrices; the latter carry no distortion.
func (d *Dataset) CameraModel(name string) (*transform.PinholeCameraModel, error) {
	if s, ok := d.Sensors.Get(name); ok && s.CameraInfo != nil && len(s.CameraInfo.K) > 0 {
		return s.Model()
	}
	if k, ok := d.Intrinsics[name]; ok {
		return transform.NewPinholeCameraModel(k, nil)
	}
	return nil, transform.NewNoIntrinsicsError("no camera matrix for sensor " + name)
}
