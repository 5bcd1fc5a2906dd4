package config

import "context"

// Loader is the interface for a format-specific playbook loader.
type Loader interface {
	// Load reads every playbook file found under paths, in lexical order, and
	// translates them into one format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Extensions lists the file extensions the loader reads, with the dot.
	Extensions() []string
}
