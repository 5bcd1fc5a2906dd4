package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/dispatchgo/internal/report"
)

// Playbook formats. FormatAuto picks loaders by file extension.
const (
	FormatAuto  = "auto"
	FormatHCL   = "hcl"
	FormatYAML  = "yaml"
	FormatJSONC = "jsonc"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	formats    = []string{FormatAuto, FormatHCL, FormatYAML, FormatJSONC}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PlaybookPath is a playbook file or a directory of playbook files.
	PlaybookPath string
	Format       string

	LogFormat string
	LogLevel  string

	OutputFormat string
	// Stats adds the registry statistics to the report.
	Stats bool
	// Strong is the default strength of connect steps.
	Strong bool

	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults for empty fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlaybookPath == "" {
		return nil, errors.New("PlaybookPath is a required configuration field and cannot be empty")
	}
	if cfg.Format == "" {
		cfg.Format = FormatAuto
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = report.FormatText
	}

	var errs []error
	check := func(name, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("invalid %s %q: must be one of %v", name, value, allowed))
		}
	}
	check("format", cfg.Format, formats)
	check("log-format", cfg.LogFormat, logFormats)
	check("log-level", cfg.LogLevel, logLevels)
	check("output", cfg.OutputFormat, report.Formats)
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
