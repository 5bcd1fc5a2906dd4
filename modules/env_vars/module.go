// Package env_vars provides the "env" receiver kind, which answers with the
// value of an environment variable.
package env_vars

import (
	"fmt"
	"os"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// newEnv looks up the variable named by the "name" setting. A bound "name"
// argument overrides the setting; "default" is returned for unset variables.
func newEnv(def *config.ReceiverDefinition, _ registry.Env) (dispatch.Handler, error) {
	name, err := registry.StringSetting(def, "name", "")
	if err != nil {
		return nil, err
	}
	fallback, err := registry.StringSetting(def, "default", "")
	if err != nil {
		return nil, err
	}
	return func(call *dispatch.Call) (any, error) {
		key := name
		if v, ok := call.Get("name"); ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("env: name must be a string, got %T", v)
			}
			key = s
		}
		if key == "" {
			return nil, fmt.Errorf("env: no variable name given")
		}
		if v, ok := os.LookupEnv(key); ok {
			return v, nil
		}
		return fallback, nil
	}, nil
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("env", &registry.RegisteredKind{
		Description: "returns an environment variable",
		Settings:    []string{"name", "default"},
		New:         newEnv,
	})
}
