// Package executor runs playbook steps against a dispatch registry.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/internal/registry"
	"github.com/specialistvlad/dispatchgo/plugins/loop"
)

// Response is the outcome of one receiver during a send step.
type Response struct {
	Receiver string
	Value    any
	Err      error
}

// SendResult records one send step.
type SendResult struct {
	Source    string
	Mode      string
	Signal    any
	Sender    any
	Responses []Response
	// Err is set when a propagating send stopped at a failing receiver.
	Err error
}

// Result is what a playbook run produced.
type Result struct {
	Sends []SendResult
	Stats dispatch.Stats
}

// Failed reports whether any send recorded an error, either its own or one
// collected from a receiver.
func (r *Result) Failed() bool {
	for _, s := range r.Sends {
		if s.Err != nil {
			return true
		}
		for _, resp := range s.Responses {
			if resp.Err != nil {
				return true
			}
		}
	}
	return false
}

// Executor runs playbooks. An Executor is not safe for concurrent use.
type Executor struct {
	kinds    *registry.Registry
	out      io.Writer
	strong   bool
	dispatch *dispatch.Registry

	receivers map[string]*dispatch.Receiver
	plugins   map[string]dispatch.Plugin
	loops     []*loop.Loop
}

// Option configures an Executor.
type Option func(*Executor)

// WithOutput sets where receivers write user-facing output.
func WithOutput(w io.Writer) Option {
	return func(e *Executor) { e.out = w }
}

// WithStrong makes connect steps that do not say otherwise hold their
// receiver strongly.
func WithStrong(strong bool) Option {
	return func(e *Executor) { e.strong = strong }
}

// WithDispatch runs steps against reg instead of a fresh registry.
func WithDispatch(reg *dispatch.Registry) Option {
	return func(e *Executor) { e.dispatch = reg }
}

// New creates an Executor building receivers from kinds.
func New(kinds *registry.Registry, opts ...Option) *Executor {
	e := &Executor{kinds: kinds, out: io.Discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates model, builds its receivers and runs its steps in order.
//
// A propagating send that fails is recorded and the run goes on. Any other
// step error ends the run; the result so far is returned with it.
func (e *Executor) Execute(ctx context.Context, model *config.Model) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if err := errors.Join(model.Validate(), e.kinds.Validate(ctx, model)); err != nil {
		return nil, fmt.Errorf("invalid playbook: %w", err)
	}

	if e.dispatch == nil {
		e.dispatch = dispatch.New(dispatch.WithLogger(logger))
	}
	e.receivers = make(map[string]*dispatch.Receiver, len(model.Receivers))
	e.plugins = make(map[string]dispatch.Plugin)
	defer e.closeLoops()

	env := registry.Env{Out: e.out, Logger: logger}
	for _, def := range model.Receivers {
		recv, err := e.kinds.Build(def, env)
		if err != nil {
			return nil, err
		}
		e.receivers[def.Name] = recv
	}

	result := &Result{}
	logger.Info("▶️ Running playbook.", "receivers", len(model.Receivers), "steps", len(model.Steps))
	for _, step := range model.Steps {
		if err := ctx.Err(); err != nil {
			result.Stats = e.dispatch.Stats()
			return result, err
		}
		if err := e.runStep(ctx, step, result); err != nil {
			result.Stats = e.dispatch.Stats()
			return result, fmt.Errorf("%s: %s: %w", step.Source, step, err)
		}
	}
	result.Stats = e.dispatch.Stats()
	logger.Info("✅ Playbook finished.", "sends", len(result.Sends), "failed", result.Failed())
	return result, nil
}

func (e *Executor) closeLoops() {
	for _, l := range e.loops {
		l.Close()
	}
	e.loops = nil
}
