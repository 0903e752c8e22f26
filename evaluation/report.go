package evaluation

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/calibeval/utils"
)

// Report is the outcome of an evaluation run.
type Report struct {
	FirstSensor  string             `json:"first_sensor"`
	SecondSensor string             `json:"second_sensor"`
	TotalPoints  int                `json:"total_points"`
	Collections  []CollectionResult `json:"collections"`
	Summary      []MethodSummary    `json:"summary"`
}

// Accepted returns the keys of the collections the statistics cover, in evaluation order.
func (r *Report) Accepted() []string {
	keys := make([]string, len(r.Collections))
	for i, c := range r.Collections {
		keys[i] = c.Collection
	}
	return keys
}

// Methods returns the method tags in result set order.
func (r *Report) Methods() []string {
	methods := make([]string, len(r.Summary))
	for i, s := range r.Summary {
		methods[i] = s.Method
	}
	return methods
}

// CollectionTable renders the largest absolute error per axis of every method in every collection.
func (r *Report) CollectionTable() string {
	t := table.NewWriter()
	header := table.Row{"Collection"}
	for _, m := range r.Methods() {
		header = append(header, m+" max |x|", m+" max |y|")
	}
	t.AppendHeader(header)
	for _, c := range r.Collections {
		row := table.Row{c.Collection}
		for _, m := range c.Methods {
			row = append(row, fmt.Sprintf("%.4f", m.MaxX), fmt.Sprintf("%.4f", m.MaxY))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// String renders the summary: mean absolute error and standard deviations per method, in pixels.
func (r *Report) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s -> %s, %d points per method", r.FirstSensor, r.SecondSensor, r.TotalPoints))
	t.AppendHeader(table.Row{"Method", "Avg |x|", "Avg |y|", "Std", "Std x", "Std y"})
	for _, s := range r.Summary {
		t.AppendRow(table.Row{
			s.Method,
			fmt.Sprintf("%.4f", s.MeanAbsX),
			fmt.Sprintf("%.4f", s.MeanAbsY),
			fmt.Sprintf("%.4f", s.Std),
			fmt.Sprintf("%.4f", s.StdX),
			fmt.Sprintf("%.4f", s.StdY),
		})
	}
	return t.Render()
}

// WriteTo writes the per-collection table followed by the summary.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%s\n\n%s\n", r.CollectionTable(), r.String())
	return int64(n), err
}

// WriteJSON writes the report as JSON. Per-point errors are left out.
func (r *Report) WriteJSON(path string) error {
	return utils.WriteJSONFile(path, r)
}
