package utils

import (
	"github.com/pkg/errors"
)

// NewSensorNotFoundError is used when a sensor is not declared in a dataset.
func NewSensorNotFoundError(sensor, source string) error {
	return errors.Errorf("sensor %q not found in %s", sensor, source)
}
