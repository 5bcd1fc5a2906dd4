package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/internal/document"
	"github.com/specialistvlad/dispatchgo/internal/hcl"
)

func newLoaders() map[string]config.Loader {
	return map[string]config.Loader{
		FormatHCL:   hcl.NewLoader(),
		FormatYAML:  document.NewYAMLLoader(),
		FormatJSONC: document.NewJSONCLoader(),
	}
}

// loadPlaybook reads the configured playbook. A directory is read by every
// loader in turn, in the order hcl, yaml, jsonc; a file by the loader that
// owns its extension unless a format is forced.
func (a *App) loadPlaybook(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	path := a.config.PlaybookPath
	loaders := newLoaders()

	var selected []string
	switch {
	case a.config.Format != FormatAuto:
		selected = []string{a.config.Format}
	default:
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load playbook: %w", err)
		}
		if info.IsDir() {
			selected = []string{FormatHCL, FormatYAML, FormatJSONC}
			break
		}
		ext := filepath.Ext(path)
		for _, name := range []string{FormatHCL, FormatYAML, FormatJSONC} {
			if slices.Contains(loaders[name].Extensions(), ext) {
				selected = []string{name}
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("failed to load playbook: no loader for %q files", ext)
		}
	}

	model := &config.Model{}
	for _, name := range selected {
		logger.Debug("Loading playbook.", "format", name, "path", path)
		m, err := loaders[name].Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load playbook: %w", err)
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("failed to load playbook: %w", err)
		}
	}
	logger.Debug("Playbook loaded into unified model.", "receivers", len(model.Receivers), "steps", len(model.Steps))
	return model, nil
}
