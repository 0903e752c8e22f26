package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrMissingTransform is returned when a chain names an edge that is not present in the transform set.
var ErrMissingTransform = errors.New("transform missing from collection")

// NewMissingTransformError returns an error indicating that the transform for the given edge is absent.
func NewMissingTransformError(key string) error {
	return errors.Wrapf(ErrMissingTransform, "no transform for edge %q", key)
}
