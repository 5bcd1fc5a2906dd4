package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/internal/executor"
	"github.com/specialistvlad/dispatchgo/internal/report"
)

// ErrReceiversFailed is returned by Run when the playbook completed but at
// least one receiver failed.
var ErrReceiversFailed = errors.New("one or more receivers failed")

// Run loads the playbook, executes it and writes the report. Each run gets
// its own dispatch registry and run ID.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	model, err := a.loadPlaybook(ctx)
	if err != nil {
		return err
	}

	reg := dispatch.New(dispatch.WithLogger(logger))
	if a.config.HealthcheckPort > 0 {
		stop := a.startHealthcheckServer(ctx, a.config.HealthcheckPort, reg)
		defer stop()
	}

	logger.Info("🚀 Starting playbook run.", "path", a.config.PlaybookPath)
	exec := executor.New(a.registry,
		executor.WithOutput(a.outW),
		executor.WithStrong(a.config.Strong),
		executor.WithDispatch(reg),
	)
	result, runErr := exec.Execute(ctx, model)
	if result != nil {
		opts := report.Options{RunID: runID, Stats: a.config.Stats}
		if err := report.Write(a.outW, a.config.OutputFormat, result, opts); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	logger.Info("🏁 Playbook run finished.", "sends", len(result.Sends))

	if result.Failed() {
		return ErrReceiversFailed
	}
	return nil
}
