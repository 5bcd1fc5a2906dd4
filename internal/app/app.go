package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/dispatchgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	config   *Config
	logger   *slog.Logger
	registry *registry.Registry
}

// NewApp is the constructor for the main application. Reports and receiver
// output go to outW and logs to logW. With no modules, the core modules are
// registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All receiver modules registered.", "count", len(modules), "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		config:   cfg,
		logger:   logger,
		registry: reg,
	}
}

// Registry returns the application's receiver-kind registry. This is
// primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
