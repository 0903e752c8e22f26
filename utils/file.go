package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// ResolveFile joins fn onto the module root, so tests can name fixtures like "dataset/data/x.json"
// from any package.
func ResolveFile(fn string) string {
	//nolint:dogsled
	_, here, _, _ := runtime.Caller(0)
	root, err := filepath.Abs(filepath.Join(filepath.Dir(here), ".."))
	if err != nil {
		panic(err)
	}
	return filepath.Join(root, fn)
}

// ReadJSONFile decodes the JSON file at path into v.
func ReadJSONFile(path string, v interface{}) error {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

// WriteJSONFile writes v as indented JSON, creating parent directories as needed.
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrapf(err, "creating directory for %s", path)
		}
	}
	//nolint:gosec
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
