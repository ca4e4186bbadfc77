// Package config loads hszinc's CLI configuration from the user's XDG
// config directory, following the same load-or-create shape aretext uses
// for its own config file (app/config.go): a missing file falls back to an
// embedded default and is written out; a present file is parsed and
// validated.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is hszinc's on-disk CLI configuration.
type Config struct {
	// DatasetFile is the default entity/tag dataset fixture path used when
	// --dataset is not passed on the command line. Empty means none.
	DatasetFile string `yaml:"dataset_file"`

	// OutputMode names the default rendering for grid output. Validate
	// accepts "zinc" and "json"; hszinc does not read this field, and its
	// grid output is always Zinc.
	OutputMode string `yaml:"output_mode"`
}

var defaultConfig = Config{
	DatasetFile: "",
	OutputMode:  "zinc",
}

const relPath = "hszinc/config.yaml"

// Path returns the location hszinc reads and writes its config file.
func Path() (string, error) {
	path, err := xdg.ConfigFile(relPath)
	if err != nil {
		return "", errors.Wrap(err, "config.Path")
	}
	return path, nil
}

// LoadOrCreate loads the config file if it exists and writes out the
// built-in default otherwise. Passing forceDefault true skips the
// filesystem entirely and returns the built-in default, mirroring
// aretext's "-noconfig" escape hatch. overridePath, if non-empty, is read
// directly instead of the XDG default location (but is never created if
// missing, unlike the default location).
func LoadOrCreate(forceDefault bool, overridePath string) (Config, error) {
	if forceDefault {
		slog.Info("using default hszinc config")
		return defaultConfig, nil
	}

	if overridePath != "" {
		return load(overridePath)
	}

	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	slog.Info("loading hszinc config", "path", path)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("writing default hszinc config", "path", path)
		if err := writeDefault(path); err != nil {
			return Config{}, errors.Wrapf(err, "writing default config to %q", path)
		}
		return defaultConfig, nil
	} else if err != nil {
		return Config{}, errors.Wrapf(err, "loading config from %q", path)
	}
	return parse(path, data)
}

// load reads and validates the config file at path, which must already
// exist.
func load(path string) (Config, error) {
	slog.Info("loading hszinc config", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config from %q", path)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config at %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config at %q", path)
	}
	return cfg, nil
}

// Validate reports whether the config holds acceptable values.
func (c Config) Validate() error {
	switch c.OutputMode {
	case "", "zinc", "json":
		return nil
	default:
		return fmt.Errorf("unknown output_mode %q (want zinc or json)", c.OutputMode)
	}
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(defaultConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
