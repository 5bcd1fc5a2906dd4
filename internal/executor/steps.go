package executor

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/plugins/closed"
	"github.com/specialistvlad/dispatchgo/plugins/loop"
	"github.com/specialistvlad/dispatchgo/plugins/trace"
)

// pluginFactories builds the plugins a playbook can install by name.
var pluginFactories = map[string]func(e *Executor, logger *slog.Logger) dispatch.Plugin{
	"trace": func(_ *Executor, logger *slog.Logger) dispatch.Plugin {
		return trace.New(logger, slog.LevelInfo)
	},
	"closed": func(*Executor, *slog.Logger) dispatch.Plugin {
		return closed.New()
	},
	"loop": func(e *Executor, logger *slog.Logger) dispatch.Plugin {
		l := loop.New(loop.WithLogger(logger))
		e.loops = append(e.loops, l)
		return l
	},
}

// Plugins returns the names of the plugins a playbook can install.
func Plugins() []string {
	return slices.Sorted(maps.Keys(pluginFactories))
}

func (e *Executor) runStep(ctx context.Context, step *config.Step, result *Result) error {
	ctx = ctxlog.With(ctx, "step", step.Source)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running step.", "action", step.String())

	switch step.Kind {
	case config.StepPlugin:
		return e.installPlugin(logger, step.Plugin)
	case config.StepConnect:
		var opts []dispatch.ConnectOption
		strong := e.strong
		if step.Strong != nil {
			strong = *step.Strong
		}
		if strong {
			opts = append(opts, dispatch.Strong())
		}
		if len(step.Args) > 0 {
			opts = append(opts, dispatch.WithArgs(step.Args...))
		}
		if len(step.Named) > 0 {
			opts = append(opts, dispatch.WithNamed(step.Named))
		}
		return e.dispatch.Connect(e.receivers[step.Receiver], Signal(step.Signal), Sender(step.Sender), opts...)
	case config.StepDisconnect:
		return e.dispatch.Disconnect(e.receivers[step.Receiver], Signal(step.Signal), Sender(step.Sender))
	case config.StepSend:
		sr := e.send(step)
		if sr.Err != nil {
			logger.Warn("Send stopped at a failing receiver.", "error", sr.Err)
		}
		result.Sends = append(result.Sends, sr)
		return nil
	case config.StepReset:
		e.dispatch.Reset()
		clear(e.plugins)
		e.closeLoops()
		return nil
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (e *Executor) installPlugin(logger *slog.Logger, name string) error {
	factory, ok := pluginFactories[name]
	if !ok {
		return fmt.Errorf("unknown plugin %q%s", name, config.Suggest(name, Plugins()))
	}
	if _, installed := e.plugins[name]; installed {
		return fmt.Errorf("plugin %q is already installed", name)
	}
	p := factory(e, logger)
	e.plugins[name] = p
	e.dispatch.InstallPlugin(p)
	return nil
}

func (e *Executor) send(step *config.Step) SendResult {
	signal, sender := Signal(step.Signal), Sender(step.Sender)
	opts := []dispatch.SendOption{dispatch.Args(step.Args...), dispatch.Named(step.Named)}

	responses, err := e.dispatchRecovered(step.ModeOrDefault(), signal, sender, opts)

	sr := SendResult{
		Source:    step.Source,
		Mode:      step.ModeOrDefault(),
		Signal:    signal,
		Sender:    sender,
		Responses: make([]Response, 0, len(responses)),
		Err:       err,
	}
	for _, r := range responses {
		sr.Responses = append(sr.Responses, Response{Receiver: r.Receiver.Name(), Value: r.Value, Err: r.Err})
	}
	return sr
}

// dispatchRecovered sends in mode. Send and SendExact let a receiver's panic
// through; it is turned into a *dispatch.PanicError so the run can go on.
func (e *Executor) dispatchRecovered(mode string, signal dispatch.Signal, sender any, opts []dispatch.SendOption) (responses []dispatch.Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			responses, err = nil, &dispatch.PanicError{Value: v, Stack: string(debug.Stack())}
		}
	}()
	switch mode {
	case config.ModeExact:
		return e.dispatch.SendExact(signal, sender, opts...)
	case config.ModeRobust:
		return e.dispatch.SendRobust(signal, sender, opts...)
	default:
		return e.dispatch.Send(signal, sender, opts...)
	}
}

// Signal maps the reserved playbook name for the wildcard signal to
// dispatch.All. Other values are used as they are.
func Signal(v any) dispatch.Signal {
	if v == config.AllSignal {
		return dispatch.All
	}
	return v
}

// Sender maps the reserved playbook sender names to dispatch.Any and
// dispatch.Anonymous. A missing sender is anonymous.
func Sender(v any) any {
	switch v {
	case nil, config.AnonymousSender:
		return dispatch.Anonymous
	case config.AnySender:
		return dispatch.Any
	default:
		return v
	}
}
