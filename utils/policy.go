package utils

import (
	"strings"

	"github.com/pkg/errors"
)

// FailurePolicy decides what a batch run does when a single collection cannot be processed.
type FailurePolicy string

const (
	// FailurePolicyAbort stops the whole run on the first failing collection.
	FailurePolicyAbort = FailurePolicy("abort")
	// FailurePolicySkip excludes the failing collection and continues.
	FailurePolicySkip = FailurePolicy("skip")
)

// ParseFailurePolicy parses a policy name. The empty string yields FailurePolicyAbort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailurePolicyAbort:
		return FailurePolicyAbort, nil
	case FailurePolicySkip:
		return FailurePolicySkip, nil
	default:
		return "", errors.Errorf("unknown failure policy %q, expected %q or %q", s, FailurePolicyAbort, FailurePolicySkip)
	}
}

// ShouldAbort reports whether a failure should terminate the run.
func (p FailurePolicy) ShouldAbort() bool {
	return p != FailurePolicySkip
}
