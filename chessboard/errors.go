package chessboard

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrPatternNotDetected is returned when no camera in a collection yields a pattern pose.
var ErrPatternNotDetected = errors.New("chessboard not detected by any camera")

// CollectionError identifies the collection a resolution failure happened in.
type CollectionError struct {
	Collection string
	Sensor     string
	Err        error
}

func (e *CollectionError) Error() string {
	if e.Sensor == "" {
		return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("collection %s, sensor %s: %v", e.Collection, e.Sensor, e.Err)
}

// Unwrap returns the underlying error.
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// NewPatternNotDetectedError returns the error for a collection no camera could resolve.
func NewPatternNotDetectedError(collection string) error {
	return &CollectionError{Collection: collection, Err: ErrPatternNotDetected}
}
