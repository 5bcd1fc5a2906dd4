// Package trace provides a dispatch plugin that logs every receiver
// invocation with its duration and outcome.
package trace

import (
	"context"
	"log/slog"
	"time"

	"github.com/specialistvlad/dispatchgo/dispatch"
)

// Plugin logs receiver invocations.
type Plugin struct {
	dispatch.BasePlugin
	logger *slog.Logger
	level  slog.Level
}

// New returns a Plugin that logs to logger at level.
func New(logger *slog.Logger, level slog.Level) *Plugin {
	return &Plugin{logger: logger, level: level}
}

// WrapReceiver times next and logs the call. Failures are logged at warn
// level or above.
func (p *Plugin) WrapReceiver(r *dispatch.Receiver, next dispatch.Handler) dispatch.Handler {
	return func(call *dispatch.Call) (any, error) {
		start := time.Now()
		value, err := next(call)
		attrs := []any{
			"receiver", r.Name(),
			"signal", call.Signal,
			"sender", call.Sender,
			"duration", time.Since(start),
		}
		if err != nil {
			p.logger.Log(context.Background(), max(p.level, slog.LevelWarn), "Receiver failed.", append(attrs, "error", err)...)
			return value, err
		}
		p.logger.Log(context.Background(), p.level, "Receiver invoked.", attrs...)
		return value, nil
	}
}
