package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Read reads a config from the given file. Environment variables written as ${VAR} are expanded first.
// Relative dataset and output paths are taken relative to the config file.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	if err := cfg.Process(); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}
	cfg.resolvePaths()
	return &cfg, nil
}

func (c *Config) resolvePaths() {
	if c.ConfigFilePath == "" {
		return
	}
	dir := filepath.Dir(c.ConfigFilePath)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.TestDataset = resolve(c.TestDataset)
	for i := range c.Results {
		c.Results[i].Path = resolve(c.Results[i].Path)
	}
	c.Output.JSON = resolve(c.Output.JSON)
	c.Output.Plot = resolve(c.Output.Plot)
}
