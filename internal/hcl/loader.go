package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/internal/fsutil"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL playbook loader.
func NewLoader() *Loader {
	return &Loader{evalCtx: newEvalContext()}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// Load parses every .hcl file under paths and merges their blocks into one
// model, file by file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.loadFile(file, hclFile, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "receivers", len(model.Receivers), "steps", len(model.Steps))
	return model, nil
}

// LoadSource parses a single in-memory file. filename is used in sources and
// error messages only.
func (l *Loader) LoadSource(filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	model := &config.Model{}
	if err := l.loadFile(filename, hclFile, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (l *Loader) loadFile(filename string, file *hcl.File, model *config.Model) error {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("failed to decode HCL file %s: not native HCL syntax", filename)
	}
	return l.translateBody(filename, body, model)
}
