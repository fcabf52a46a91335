package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.InDelta(t, 0.7, cfg.Pipeline.FuzzyThreshold, 1e-9)
	assert.Equal(t, int64(25165824), cfg.Limits.MaxUploadBytes)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("KPIDASH_SERVER_PORT", "9090")
	t.Setenv("KPIDASH_LOGGING_FORMAT", "text")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFrom_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o644))

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	t.Setenv("KPIDASH_PIPELINE_FUZZY_THRESHOLD", "3.5")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Logging:  LoggingConfig{Format: "json"},
		Limits:   LimitsConfig{MaxUploadBytes: 1},
		Pipeline: PipelineConfig{FuzzyThreshold: 0.7},
	}
	require.NoError(t, cfg.Validate())

	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}
