package evaluation

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func handFixture() []*CollectionResult {
	return []*CollectionResult{
		{Collection: "3", Methods: []MethodErrors{
			{Method: "opt", Errors: []r2.Point{{X: 1, Y: -2}, {X: 0, Y: 1}, {X: -3, Y: 0}, {X: 2, Y: 2}}},
			{Method: "stereo", Errors: []r2.Point{{X: 0.5, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0}}},
		}},
		{Collection: "12", Methods: []MethodErrors{
			{Method: "opt", Errors: []r2.Point{{X: 1, Y: 1}, {X: -1, Y: -1}, {X: 0, Y: 2}, {X: 4, Y: -2}}},
			{Method: "stereo", Errors: []r2.Point{{X: -0.5, Y: 0}, {X: -0.5, Y: 0}, {X: -0.5, Y: 0}, {X: -0.5, Y: 0}}},
		}},
	}
}

func TestAggregatorHandComputed(t *testing.T) {
	agg := NewAggregator([]string{"opt", "stereo"}, 4)
	for _, c := range handFixture() {
		test.That(t, agg.Add(c), test.ShouldBeNil)
	}
	test.That(t, agg.Accepted(), test.ShouldResemble, []string{"3", "12"})
	test.That(t, agg.TotalPoints(), test.ShouldEqual, 8)

	summary := agg.Summary()
	test.That(t, summary, test.ShouldHaveLength, 2)

	opt := summary[0]
	test.That(t, opt.Method, test.ShouldEqual, "opt")
	test.That(t, opt.Points, test.ShouldEqual, 8)
	// sum|x| = 12, sum|y| = 11 over 2 collections of 4 points
	test.That(t, opt.MeanAbsX, test.ShouldEqual, 12./8)
	test.That(t, opt.MeanAbsY, test.ShouldEqual, 11./8)
	// x: mean 0.5, sum of squared deviations 30
	test.That(t, opt.StdX, test.ShouldAlmostEqual, math.Sqrt(30./8))
	// y: mean 0.125, sum of squares 19
	test.That(t, opt.StdY, test.ShouldAlmostEqual, math.Sqrt(19./8-0.125*0.125))
	// both axes: 16 values, sum 5, sum of squares 51
	test.That(t, opt.Std, test.ShouldAlmostEqual, math.Sqrt(51./16-(5./16)*(5./16)))

	stereo := summary[1]
	test.That(t, stereo.MeanAbsX, test.ShouldEqual, 0.5)
	test.That(t, stereo.MeanAbsY, test.ShouldEqual, 0.)
	test.That(t, stereo.StdX, test.ShouldAlmostEqual, 0.5)
	test.That(t, stereo.StdY, test.ShouldEqual, 0.)
	test.That(t, stereo.Std, test.ShouldAlmostEqual, math.Sqrt(0.125))
}

func TestAggregatorRejectsMalformedCollections(t *testing.T) {
	agg := NewAggregator([]string{"opt", "stereo"}, 4)
	fixture := handFixture()

	short := *fixture[0]
	short.Methods = short.Methods[:1]
	test.That(t, agg.Add(&short), test.ShouldNotBeNil)

	unknown := *fixture[0]
	unknown.Methods = []MethodErrors{fixture[0].Methods[0], {Method: "kalibr", Errors: fixture[0].Methods[1].Errors}}
	err := agg.Add(&unknown)
	test.That(t, err.Error(), test.ShouldContainSubstring, "kalibr")

	truncated := *fixture[0]
	truncated.Methods = []MethodErrors{
		{Method: "opt", Errors: fixture[0].Methods[0].Errors[:3]},
		fixture[0].Methods[1],
	}
	test.That(t, agg.Add(&truncated), test.ShouldNotBeNil)

	// nothing partial was kept
	test.That(t, agg.Accepted(), test.ShouldBeEmpty)
	for _, s := range agg.Summary() {
		test.That(t, s, test.ShouldResemble, MethodSummary{Method: s.Method})
	}
}
