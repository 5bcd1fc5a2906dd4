// Package print provides the "print" receiver kind, which writes each call it
// receives as one line of output.
package print

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Format renders a call as "signal=S sender=S k=v ...". Named arguments are
// sorted; surplus positional arguments come last as args=[...].
func Format(call *dispatch.Call) string {
	var b strings.Builder
	fmt.Fprintf(&b, "signal=%v sender=%v", call.Signal, call.Sender)
	for _, k := range slices.Sorted(maps.Keys(call.Named)) {
		if k == "signal" || k == "sender" {
			continue
		}
		v := call.Named[k]
		if s, ok := v.(string); ok {
			fmt.Fprintf(&b, " %s=%q", k, s)
		} else {
			fmt.Fprintf(&b, " %s=%v", k, v)
		}
	}
	if len(call.Args) > 0 {
		fmt.Fprintf(&b, " args=%v", call.Args)
	}
	return b.String()
}

func newPrint(def *config.ReceiverDefinition, env registry.Env) (dispatch.Handler, error) {
	prefix, err := registry.StringSetting(def, "prefix", "")
	if err != nil {
		return nil, err
	}
	return func(call *dispatch.Call) (any, error) {
		line := prefix + Format(call)
		if _, err := fmt.Fprintln(env.Out, line); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return line, nil
	}, nil
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("print", &registry.RegisteredKind{
		Description: "writes the call to the output and returns the written line",
		Settings:    []string{"prefix"},
		New:         newPrint,
	})
}
