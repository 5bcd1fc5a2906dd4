package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"
)

// Validate checks the model for structural mistakes that do not depend on
// which receiver kinds or plugins are registered. It reports every problem
// it finds.
func (m *Model) Validate() error {
	var errs []error
	names := m.ReceiverNames()

	for _, def := range m.Receivers {
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("%s: receiver has no name", def.Source))
		}
		if def.Kind == "" {
			errs = append(errs, fmt.Errorf("%s: receiver %q has no kind", def.Source, def.Name))
		}
	}

	for _, step := range m.Steps {
		switch step.Kind {
		case StepPlugin:
			if step.Plugin == "" {
				errs = append(errs, fmt.Errorf("%s: plugin step has no plugin name", step.Source))
			}
		case StepConnect, StepDisconnect:
			if !slices.Contains(names, step.Receiver) {
				errs = append(errs, fmt.Errorf("%s: unknown receiver %q%s", step.Source, step.Receiver, Suggest(step.Receiver, names)))
			}
			if step.Signal == nil {
				errs = append(errs, fmt.Errorf("%s: %s step has no signal", step.Source, step.Kind))
			}
		case StepSend:
			if step.Signal == nil {
				errs = append(errs, fmt.Errorf("%s: send step has no signal", step.Source))
			}
			modes := []string{ModeSend, ModeExact, ModeRobust}
			if step.Mode != "" && !slices.Contains(modes, step.Mode) {
				errs = append(errs, fmt.Errorf("%s: unknown send mode %q%s", step.Source, step.Mode, Suggest(step.Mode, modes)))
			}
		case StepReset:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown step kind %q", step.Source, step.Kind))
		}
	}
	return errors.Join(errs...)
}

// Suggest returns a "did you mean" hint naming the candidate closest to name,
// or an empty string when nothing is close enough.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
