package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
)

// Validate checks every receiver definition in model against the registered
// kinds: the kind must exist, settings must be ones the kind understands, and
// a parameter may be declared only once.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, def := range model.Receivers {
		kind, ok := r.kinds[def.Kind]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: receiver %q: unknown kind %q%s", def.Source, def.Name, def.Kind, config.Suggest(def.Kind, r.Kinds())))
			continue
		}
		for key := range def.Settings {
			if !slices.Contains(kind.Settings, key) {
				errs = append(errs, fmt.Errorf("%s: receiver %q: kind %q has no setting %q%s", def.Source, def.Name, def.Kind, key, config.Suggest(key, kind.Settings)))
			}
		}
		seen := make(map[string]struct{})
		for _, name := range slices.Concat(def.Params, def.Optional) {
			if _, dup := seen[name]; dup {
				errs = append(errs, fmt.Errorf("%s: receiver %q: parameter %q declared twice", def.Source, def.Name, name))
			}
			seen[name] = struct{}{}
		}
		logger.Debug("Validated receiver definition.", "receiver", def.Name, "kind", def.Kind)
	}
	return errors.Join(errs...)
}
