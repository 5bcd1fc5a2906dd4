// Package echo provides receiver kinds that answer with a fixed outcome:
// "echo" returns a value, "fail" returns an error and "panic" panics.
package echo

import (
	"errors"
	"maps"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// newEcho returns the "value" setting when it is set. Otherwise it returns
// the bound arguments: the named ones, minus signal and sender, plus surplus
// positional ones under "args". A call with no arguments returns nil.
func newEcho(def *config.ReceiverDefinition, _ registry.Env) (dispatch.Handler, error) {
	value, fixed := def.Settings["value"]
	return func(call *dispatch.Call) (any, error) {
		if fixed {
			return value, nil
		}
		out := make(map[string]any, len(call.Named)+1)
		maps.Copy(out, call.Named)
		delete(out, "signal")
		delete(out, "sender")
		if len(call.Args) > 0 {
			out["args"] = call.Args
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}, nil
}

func newFail(def *config.ReceiverDefinition, _ registry.Env) (dispatch.Handler, error) {
	msg, err := registry.StringSetting(def, "message", def.Name+" failed")
	if err != nil {
		return nil, err
	}
	failure := errors.New(msg)
	return func(*dispatch.Call) (any, error) {
		return nil, failure
	}, nil
}

func newPanic(def *config.ReceiverDefinition, _ registry.Env) (dispatch.Handler, error) {
	msg, err := registry.StringSetting(def, "message", def.Name+" panicked")
	if err != nil {
		return nil, err
	}
	return func(*dispatch.Call) (any, error) {
		panic(msg)
	}, nil
}

// Register registers the kinds with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("echo", &registry.RegisteredKind{
		Description: "returns the value setting, or the bound arguments",
		Settings:    []string{"value"},
		New:         newEcho,
	})
	r.RegisterKind("fail", &registry.RegisteredKind{
		Description: "returns an error",
		Settings:    []string{"message"},
		New:         newFail,
	})
	r.RegisterKind("panic", &registry.RegisteredKind{
		Description: "panics",
		Settings:    []string{"message"},
		New:         newPanic,
	})
}
