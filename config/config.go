// Package config defines the configuration of an evaluation run.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/calibeval/chessboard"
	"go.viam.com/calibeval/evaluation"
	"go.viam.com/calibeval/utils"
)

// Output names the optional files a run writes besides the printed summary.
type Output struct {
	JSON string `json:"json,omitempty"`
	Plot string `json:"plot,omitempty"`
}

// A Config describes an evaluation run: the ground-truth dataset, the two sensors under test and the
// calibration results to compare.
type Config struct {
	ConfigFilePath string `json:"-"`

	TestDataset  string                       `json:"test_dataset"`
	FirstSensor  string                       `json:"first_sensor"`
	SecondSensor string                       `json:"second_sensor"`
	Results      []evaluation.ResultSetConfig `json:"results"`

	OnSolveFailure       utils.FailurePolicy `json:"on_solve_failure,omitempty"`
	OnPatternNotDetected utils.FailurePolicy `json:"on_pattern_not_detected,omitempty"`
	// Subdivisions overrides the number of segments per lattice gap. Zero means the default.
	Subdivisions int    `json:"subdivisions,omitempty"`
	Output       Output `json:"output"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.TestDataset == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "test_dataset")
	}
	if c.FirstSensor == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "first_sensor")
	}
	if c.SecondSensor == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "second_sensor")
	}
	if c.FirstSensor == c.SecondSensor {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("first_sensor and second_sensor must differ, both are %q", c.FirstSensor))
	}
	if len(c.Results) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "results")
	}
	seen := make(map[string]bool, len(c.Results))
	for idx, r := range c.Results {
		resultPath := joinPath(path, fmt.Sprintf("results.%d", idx))
		if err := r.Validate(resultPath); err != nil {
			return err
		}
		if seen[r.Name] {
			return goutils.NewConfigValidationError(resultPath, errors.Errorf("duplicate result name %q", r.Name))
		}
		seen[r.Name] = true
	}
	if _, err := utils.ParseFailurePolicy(string(c.OnSolveFailure)); err != nil {
		return goutils.NewConfigValidationError(joinPath(path, "on_solve_failure"), err)
	}
	if _, err := utils.ParseFailurePolicy(string(c.OnPatternNotDetected)); err != nil {
		return goutils.NewConfigValidationError(joinPath(path, "on_pattern_not_detected"), err)
	}
	if c.Subdivisions < 0 {
		return goutils.NewConfigValidationError(joinPath(path, "subdivisions"),
			errors.Errorf("must not be negative, got %d", c.Subdivisions))
	}
	return nil
}

// normalize fills defaults and canonical spellings. It assumes the config is valid.
func (c *Config) normalize() {
	c.OnSolveFailure, _ = utils.ParseFailurePolicy(string(c.OnSolveFailure))
	c.OnPatternNotDetected, _ = utils.ParseFailurePolicy(string(c.OnPatternNotDetected))
	for i := range c.Results {
		c.Results[i].Representation, _ = evaluation.ParseRepresentation(string(c.Results[i].Representation))
	}
	if c.Subdivisions == 0 {
		c.Subdivisions = chessboard.DefaultSubdivisions
	}
}

// Process validates the config and fills in its defaults.
func (c *Config) Process() error {
	if err := c.Validate(""); err != nil {
		return err
	}
	c.normalize()
	return nil
}

// ParseResult parses a result given as "name:representation:path". The representation may be left
// empty ("name::path") for the default.
func ParseResult(s string) (evaluation.ResultSetConfig, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return evaluation.ResultSetConfig{}, errors.Errorf("result %q must have the form name:representation:path", s)
	}
	cfg := evaluation.ResultSetConfig{
		Name:           parts[0],
		Representation: evaluation.Representation(parts[1]),
		Path:           parts[2],
	}
	if err := cfg.Validate(s); err != nil {
		return evaluation.ResultSetConfig{}, err
	}
	return cfg, nil
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
