package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dispatchgo/internal/app"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// DISPATCHGO_LOG_LEVEL for --log-level.
const EnvPrefix = "DISPATCHGO"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, a ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, a...)}
}

func newFlagSet(output io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("dispatchgo", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dispatchgo - Run signal dispatch playbooks.

Usage:
  dispatchgo [options] [PLAYBOOK_PATH]

Arguments:
  PLAYBOOK_PATH
    Path to a playbook file (.hcl, .yaml, .yml, .jsonc, .json) or a directory
    of playbook files.

Every option can also be set from the environment as DISPATCHGO_<OPTION>,
with dashes replaced by underscores, or from the file given to --config.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringP("playbook", "p", "", "Path to the playbook file or directory.")
	flagSet.String("format", app.FormatAuto, "Playbook format. Options: 'auto', 'hcl', 'yaml' or 'jsonc'.")
	flagSet.StringP("output", "o", "text", "Report format. Options: 'text' or 'json'.")
	flagSet.Bool("stats", false, "Include registry statistics in the report.")
	flagSet.Bool("strong", false, "Connect receivers strongly unless a step says otherwise.")
	flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flagSet.String("config", "", "Path to a config file (yaml, toml or json) providing option values.")
	return flagSet
}

// Parse processes command-line arguments, layered over DISPATCHGO_*
// environment variables and an optional config file. It returns a populated
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := newFlagSet(output)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	if flagSet.NArg() > 1 {
		return nil, false, usageError("unexpected argument: %s", flagSet.Arg(1))
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flagSet); err != nil {
		return nil, false, usageError("binding flags: %v", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, false, usageError("reading config file %s: %v", path, err)
		}
		slog.Debug("Config file loaded.", "path", path)
	}

	path := v.GetString("playbook")
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Playbook path determined.", "path", path)

	if path == "" {
		slog.Debug("No playbook path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		PlaybookPath:    path,
		Format:          strings.ToLower(v.GetString("format")),
		LogFormat:       strings.ToLower(v.GetString("log-format")),
		LogLevel:        strings.ToLower(v.GetString("log-level")),
		OutputFormat:    strings.ToLower(v.GetString("output")),
		Stats:           v.GetBool("stats"),
		Strong:          v.GetBool("strong"),
		HealthcheckPort: v.GetInt("healthcheck-port"),
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
