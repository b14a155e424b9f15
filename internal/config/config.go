// Package config defines the settlement tool's configuration and provides
// validation helpers.
package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SETTLE_* environment variables.
type Config struct {
	Settlement SettlementConfig `toml:"settlement"`
	Report     ReportConfig     `toml:"report"`
	LogLevel   string           `toml:"log_level"`
	LogFormat  string           `toml:"log_format"`
}

// SettlementConfig selects and tunes the settlement engine.
type SettlementConfig struct {
	// Strategy is "log_score" or "log_odds_force". A scenario file may
	// override it.
	Strategy string `toml:"strategy"`
	// Precision is the number of fractional digits kept by ln, exp and
	// division.
	Precision int `toml:"precision"`
	// ProbabilityPlaces is the rounding applied to every bet probability.
	ProbabilityPlaces int `toml:"probability_places"`
}

// ReportConfig controls how settled ledgers are rendered.
type ReportConfig struct {
	Format   string `toml:"format"`   // "table" or "yaml"
	Currency string `toml:"currency"` // prefix for dollar amounts
	Language string `toml:"language"` // BCP 47 tag used for digit grouping
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in settle.example.toml.
func Defaults() Config {
	return Config{
		Settlement: SettlementConfig{
			Strategy:          "log_score",
			Precision:         24,
			ProbabilityPlaces: 4,
		},
		Report: ReportConfig{
			Format:   "table",
			Currency: "$",
			Language: "en",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

var validStrategies = map[string]bool{
	"log_score":      true,
	"log_odds_force": true,
}

var validFormats = map[string]bool{
	"table": true,
	"yaml":  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Normalize lowercases the enumerated settings so they match the names the
// registry, renderer and logger expect.
func (c *Config) Normalize() {
	c.Settlement.Strategy = strings.ToLower(strings.TrimSpace(c.Settlement.Strategy))
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validStrategies[c.Settlement.Strategy] {
		errs = append(errs, fmt.Sprintf("settlement: unknown strategy %q (valid: log_score, log_odds_force)", c.Settlement.Strategy))
	}
	if c.Settlement.Precision < 4 || c.Settlement.Precision > 100 {
		errs = append(errs, fmt.Sprintf("settlement: precision must be 4-100, got %d", c.Settlement.Precision))
	}
	if c.Settlement.ProbabilityPlaces < 1 || c.Settlement.ProbabilityPlaces > c.Settlement.Precision {
		errs = append(errs, fmt.Sprintf("settlement: probability_places must be 1-%d, got %d",
			c.Settlement.Precision, c.Settlement.ProbabilityPlaces))
	}

	if !validFormats[c.Report.Format] {
		errs = append(errs, fmt.Sprintf("report: unknown format %q (valid: table, yaml)", c.Report.Format))
	}
	if _, err := language.Parse(c.Report.Language); err != nil {
		errs = append(errs, fmt.Sprintf("report: language %q: %v", c.Report.Language, err))
	}

	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q (valid: json, text)", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
