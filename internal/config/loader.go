package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SETTLE_* environment variable overrides, and
// returns the final Config. A missing file leaves the defaults in place and
// enumerated settings are lowercased. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	cfg.Normalize()

	return &cfg, nil
}

// applyEnvOverrides reads well-known SETTLE_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Settlement ──
	setStr(&cfg.Settlement.Strategy, "SETTLE_STRATEGY")
	setInt(&cfg.Settlement.Precision, "SETTLE_PRECISION")
	setInt(&cfg.Settlement.ProbabilityPlaces, "SETTLE_PROBABILITY_PLACES")

	// ── Report ──
	setStr(&cfg.Report.Format, "SETTLE_REPORT_FORMAT")
	setStr(&cfg.Report.Currency, "SETTLE_REPORT_CURRENCY")
	setStr(&cfg.Report.Language, "SETTLE_REPORT_LANGUAGE")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SETTLE_LOG_LEVEL")
	setStr(&cfg.LogFormat, "SETTLE_LOG_FORMAT")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
