package utils

import (
	"math"
	"sort"
	"strconv"
)

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SortNumericKeys sorts string keys by their integer value. Keys that are not integers
// sort after all integer keys, lexically among themselves.
func SortNumericKeys(keys []string) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, errA := strconv.Atoi(sorted[i])
		b, errB := strconv.Atoi(sorted[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return sorted[i] < sorted[j]
		}
	})
	return sorted
}
