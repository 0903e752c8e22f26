package evaluation

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// MethodSummary is the error statistics of one method over every accepted collection.
type MethodSummary struct {
	Method string `json:"method"`
	Points int    `json:"points"`
	// MeanAbsX and MeanAbsY are the mean absolute error per axis in pixels.
	MeanAbsX float64 `json:"mean_abs_x"`
	MeanAbsY float64 `json:"mean_abs_y"`
	// Std is the population standard deviation of both axes' errors taken together.
	Std  float64 `json:"std"`
	StdX float64 `json:"std_x"`
	StdY float64 `json:"std_y"`
}

type methodSamples struct {
	xs, ys []float64
}

// Aggregator folds accepted collections into per-method statistics. Collections are kept in the order
// they are added.
type Aggregator struct {
	methods             []string
	pointsPerCollection int
	samples             map[string]*methodSamples
	collections         []CollectionResult
}

// NewAggregator returns an aggregator for the given methods, each collection contributing
// pointsPerCollection errors per method.
func NewAggregator(methods []string, pointsPerCollection int) *Aggregator {
	samples := make(map[string]*methodSamples, len(methods))
	for _, m := range methods {
		samples[m] = &methodSamples{}
	}
	return &Aggregator{
		methods:             append([]string(nil), methods...),
		pointsPerCollection: pointsPerCollection,
		samples:             samples,
	}
}

// Add accepts a collection. It must carry every method exactly once with pointsPerCollection errors.
func (a *Aggregator) Add(result *CollectionResult) error {
	if len(result.Methods) != len(a.methods) {
		return errors.Errorf("collection %s has %d methods, expected %d", result.Collection, len(result.Methods), len(a.methods))
	}
	for _, m := range result.Methods {
		if _, ok := a.samples[m.Method]; !ok {
			return errors.Errorf("collection %s has unknown method %q", result.Collection, m.Method)
		}
		if len(m.Errors) != a.pointsPerCollection {
			return errors.Errorf("collection %s, method %s has %d errors, expected %d",
				result.Collection, m.Method, len(m.Errors), a.pointsPerCollection)
		}
	}
	for _, m := range result.Methods {
		s := a.samples[m.Method]
		for _, e := range m.Errors {
			s.xs = append(s.xs, e.X)
			s.ys = append(s.ys, e.Y)
		}
	}
	a.collections = append(a.collections, *result)
	return nil
}

// Accepted returns the keys of the accepted collections in the order they were added.
func (a *Aggregator) Accepted() []string {
	keys := make([]string, len(a.collections))
	for i, c := range a.collections {
		keys[i] = c.Collection
	}
	return keys
}

// TotalPoints is the number of errors each method contributed.
func (a *Aggregator) TotalPoints() int {
	return len(a.collections) * a.pointsPerCollection
}

// Summary returns the statistics of every method in the order the methods were given. Nothing accepted
// yields zero statistics.
func (a *Aggregator) Summary() []MethodSummary {
	total := a.TotalPoints()
	summaries := make([]MethodSummary, 0, len(a.methods))
	for _, m := range a.methods {
		s := a.samples[m]
		summary := MethodSummary{Method: m, Points: total}
		if total > 0 {
			summary.MeanAbsX = sumAbs(s.xs) / float64(total)
			summary.MeanAbsY = sumAbs(s.ys) / float64(total)
			summary.StdX = populationStd(s.xs)
			summary.StdY = populationStd(s.ys)
			summary.Std = populationStd(append(append([]float64(nil), s.xs...), s.ys...))
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Report assembles the accepted collections and the summary.
func (a *Aggregator) Report(firstSensor, secondSensor string) *Report {
	return &Report{
		FirstSensor:  firstSensor,
		SecondSensor: secondSensor,
		TotalPoints:  a.TotalPoints(),
		Collections:  append([]CollectionResult(nil), a.collections...),
		Summary:      a.Summary(),
	}
}

func sumAbs(values []float64) float64 {
	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}
	return floats.Sum(abs)
}

func populationStd(values []float64) float64 {
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return 0
	}
	return std
}
