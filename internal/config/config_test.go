package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "log_score", cfg.Settlement.Strategy)
	assert.Equal(t, 24, cfg.Settlement.Precision)
	assert.Equal(t, 4, cfg.Settlement.ProbabilityPlaces)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := writeFile(t, "settle.toml", `
log_level = "debug"

[settlement]
strategy = "log_odds_force"
precision = 30

[report]
currency = "€"
`)
	t.Setenv("SETTLE_REPORT_FORMAT", "yaml")
	t.Setenv("SETTLE_PROBABILITY_PLACES", "6")
	t.Setenv("SETTLE_PRECISION", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "log_odds_force", cfg.Settlement.Strategy)
	assert.Equal(t, 30, cfg.Settlement.Precision)
	assert.Equal(t, 6, cfg.Settlement.ProbabilityPlaces)
	assert.Equal(t, "€", cfg.Report.Currency)
	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, "en", cfg.Report.Language)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Report, cfg.Report)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeFile(t, "bad.toml", "[settlement\nstrategy = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Settlement.Strategy = "lmsr"
	cfg.Settlement.Precision = 2
	cfg.Report.Format = "html"
	cfg.Report.Language = "!!"
	cfg.LogLevel = "trace"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"unknown strategy", "precision must be", "probability_places", "unknown format", "language", "log_level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadNormalizesCase(t *testing.T) {
	path := writeFile(t, "settle.toml", `
log_level = "DEBUG"
log_format = "Text"

[settlement]
strategy = "LOG_ODDS_FORCE"

[report]
format = "YAML"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "log_odds_force", cfg.Settlement.Strategy)
	assert.Equal(t, "yaml", cfg.Report.Format)
}

func TestValidateIsCaseSensitive(t *testing.T) {
	cfg := Defaults()
	cfg.Settlement.Strategy = "LOG_SCORE"
	cfg.LogLevel = "DEBUG"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
	assert.Contains(t, err.Error(), "log_level")
}
