package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tinyrange/imgdoc"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML file given with -config. Flags given on the
// command line win over values from the file.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Synth   SynthConfig   `yaml:"synth"`
	Query   QueryConfig   `yaml:"query"`
}

type LibraryConfig struct {
	// Path, if set, is tried before every other location.
	Path        string   `yaml:"path,omitempty"`
	SearchPaths []string `yaml:"searchPaths,omitempty"`
}

type SynthConfig struct {
	Bounds     string `yaml:"bounds,omitempty"`
	TileWidth  uint32 `yaml:"tileWidth,omitempty"`
	TileHeight uint32 `yaml:"tileHeight,omitempty"`
	TileDepth  uint32 `yaml:"tileDepth,omitempty"`
	Columns    int    `yaml:"columns,omitempty"`
	Rows       int    `yaml:"rows,omitempty"`
	PixelType  string `yaml:"pixelType,omitempty"`
}

type QueryConfig struct {
	Max int `yaml:"max,omitempty"`
}

// LoadConfig reads and decodes the config file at path. Unknown keys are an
// error; an empty file is not.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply hands the library settings to the loader. It must run before the
// first engine call.
func (c Config) apply() error {
	if c.Library.Path != "" {
		if err := os.Setenv(imgdoc.LibraryEnv, c.Library.Path); err != nil {
			return fmt.Errorf("set %s: %w", imgdoc.LibraryEnv, err)
		}
	}
	for _, dir := range c.Library.SearchPaths {
		imgdoc.AddSearchPath(dir)
	}
	return nil
}
