package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestValidateAcceptsKnownOutputModes(t *testing.T) {
	for _, mode := range []string{"", "zinc", "json"} {
		c := Config{OutputMode: mode}
		assert.NoError(t, c.Validate(), "mode %q", mode)
	}
}

func TestValidateRejectsUnknownOutputMode(t *testing.T) {
	c := Config{OutputMode: "csv"}
	assert.Error(t, c.Validate())
}

func TestWriteDefaultProducesValidatableYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hszinc", "config.yaml")

	require.NoError(t, writeDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, defaultConfig, cfg)
}

func TestLoadOrCreateForceDefaultSkipsFilesystem(t *testing.T) {
	cfg, err := LoadOrCreate(true, "/should/not/be/read.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, cfg)
}

func TestLoadOrCreateWithOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset_file: fixtures.yaml\noutput_mode: json\n"), 0o644))

	cfg, err := LoadOrCreate(false, path)
	require.NoError(t, err)
	assert.Equal(t, Config{DatasetFile: "fixtures.yaml", OutputMode: "json"}, cfg)
}

func TestLoadOrCreateWithOverridePathMissingFileErrors(t *testing.T) {
	_, err := LoadOrCreate(false, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPathContainsRelPath(t *testing.T) {
	path, err := Path()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.FromSlash(relPath))
}
