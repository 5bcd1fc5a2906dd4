package registry

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
)

// Module is the interface that all receiver modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Env is what a factory may use when building a receiver.
type Env struct {
	// Out is where receivers write user-facing output.
	Out    io.Writer
	Logger *slog.Logger
}

// Factory builds the function behind a receiver definition.
type Factory func(def *config.ReceiverDefinition, env Env) (dispatch.Handler, error)

// RegisteredKind describes a receiver kind.
type RegisteredKind struct {
	Description string
	// Settings lists the setting keys the kind understands.
	Settings []string
	New      Factory
}

// Registry holds the receiver kinds for a single application instance.
type Registry struct {
	kinds map[string]*RegisteredKind
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]*RegisteredKind)}
}

// RegisterKind registers a receiver kind. Registering a name twice is a
// programming error and panics.
func (r *Registry) RegisterKind(name string, kind *RegisteredKind) {
	if _, exists := r.kinds[name]; exists {
		panic(fmt.Sprintf("receiver kind with name '%s' already registered", name))
	}
	if kind == nil || kind.New == nil {
		panic(fmt.Sprintf("receiver kind '%s' has no factory", name))
	}
	slog.Debug("Registering receiver kind.", "name", name)
	r.kinds[name] = kind
}

// Kind returns the kind registered as name.
func (r *Registry) Kind(name string) (*RegisteredKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.kinds))
}
