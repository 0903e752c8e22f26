package evaluation

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/calibeval/dataset"
)

var (
	// ErrMissingDetectionPair is returned for a collection where one of the two sensors under test did
	// not detect the pattern.
	ErrMissingDetectionPair = errors.New("pattern not detected by both sensors")
	// ErrDegenerateScale is returned when the mean homogeneous coordinate of the projected points is
	// zero or not finite, so the projection cannot be brought back to pixels.
	ErrDegenerateScale = errors.New("projected points have a degenerate homogeneous scale")
)

// CollectionError identifies the collection and calibration method an evaluation failure happened in.
type CollectionError struct {
	Collection string
	Method     string
	Err        error
}

func (e *CollectionError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("collection %s, method %s: %v", e.Collection, e.Method, e.Err)
}

// Unwrap returns the underlying error.
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// skippable reports whether an error excludes a single collection without failing the run.
func skippable(err error) bool {
	return errors.Is(err, ErrMissingDetectionPair) ||
		errors.Is(err, ErrDegenerateScale) ||
		errors.Is(err, dataset.ErrMismatchedDetection)
}
