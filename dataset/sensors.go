package dataset

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/rimage/transform"
)

// CameraInfo is the calibration of a camera sensor, with K the row-major camera matrix and D the
// distortion coefficients of DistortionModel, plumb_bob when empty.
type CameraInfo struct {
	Width           int       `json:"width,omitempty"`
	Height          int       `json:"height,omitempty"`
	DistortionModel string    `json:"distortion_model,omitempty"`
	K               []float64 `json:"K"`
	D               []float64 `json:"D"`
}

// Sensor is one sensor of the rig.
type Sensor struct {
	Name       string               `json:"_name,omitempty"`
	MsgType    string               `json:"msg_type"`
	CameraInfo *CameraInfo          `json:"camera_info,omitempty"`
	Chain      referenceframe.Chain `json:"chain"`
}

// IsCamera reports whether the sensor produces images.
func (s *Sensor) IsCamera() bool {
	return s.MsgType == MsgTypeImage
}

// Model returns the sensor's pinhole camera model.
func (s *Sensor) Model() (*transform.PinholeCameraModel, error) {
	if s.CameraInfo == nil {
		return nil, transform.NewNoIntrinsicsError("sensor has no camera_info")
	}
	model, err := transform.NewPinholeCameraModelWithDistortion(
		s.CameraInfo.K, transform.DistortionType(s.CameraInfo.DistortionModel), s.CameraInfo.D)
	if err != nil {
		return nil, err
	}
	model.Width, model.Height = s.CameraInfo.Width, s.CameraInfo.Height
	return model, nil
}

// Sensors keeps sensors in the order the dataset declares them.
type Sensors struct {
	names  []string
	byName map[string]*Sensor
}

// NewSensors returns an empty sensor list.
func NewSensors() Sensors {
	return Sensors{byName: map[string]*Sensor{}}
}

// Add appends a sensor, replacing any sensor of the same name in place.
func (s *Sensors) Add(name string, sensor *Sensor) {
	if s.byName == nil {
		s.byName = map[string]*Sensor{}
	}
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = sensor
}

// Names returns the sensor names in declared order.
func (s Sensors) Names() []string {
	return append([]string(nil), s.names...)
}

// Get returns the named sensor.
func (s Sensors) Get(name string) (*Sensor, bool) {
	sensor, ok := s.byName[name]
	return sensor, ok
}

// Len returns the number of sensors.
func (s Sensors) Len() int {
	return len(s.names)
}

// UnmarshalJSON decodes a JSON object of sensors, remembering the key order.
func (s *Sensors) UnmarshalJSON(data []byte) error {
	*s = NewSensors()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("sensors must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected sensor key %v", tok)
		}
		sensor := &Sensor{}
		if err := dec.Decode(sensor); err != nil {
			return errors.Wrapf(err, "decoding sensor %q", name)
		}
		s.Add(name, sensor)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the sensors as a JSON object in declared order.
func (s Sensors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
