package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/ctxlog"
	"github.com/specialistvlad/dispatchgo/internal/fsutil"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is a document syntax.
type Format string

const (
	YAML  Format = "yaml"
	JSONC Format = "jsonc"
)

// Loader reads playbooks of one Format.
type Loader struct {
	format Format
}

var _ config.Loader = (*Loader)(nil)

// NewYAMLLoader returns a loader for .yaml and .yml playbooks.
func NewYAMLLoader() *Loader {
	return &Loader{format: YAML}
}

// NewJSONCLoader returns a loader for .jsonc and .json playbooks. Comments
// and trailing commas are allowed in both.
func NewJSONCLoader() *Loader {
	return &Loader{format: JSONC}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	if l.format == YAML {
		return []string{".yaml", ".yml"}
	}
	return []string{".jsonc", ".json"}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Document loader started.", "format", l.format, "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered playbook documents.", "count", len(files))

	model := &config.Model{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		fileModel, err := l.Parse(file, data)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, err
		}
	}

	logger.Debug("Document loading complete.", "receivers", len(model.Receivers), "steps", len(model.Steps))
	return model, nil
}

// Parse decodes a single document. filename is used in sources and error
// messages only.
func (l *Loader) Parse(filename string, data []byte) (*config.Model, error) {
	var doc playbook
	var err error
	if l.format == YAML {
		err = decodeYAML(data, &doc)
	} else {
		err = decodeJSONC(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return doc.translate(filename)
}

func decodeYAML(data []byte, doc *playbook) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSONC(data []byte, doc *playbook) error {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for i := range doc.Receivers {
		doc.Receivers[i].Settings = normalizeMap(doc.Receivers[i].Settings)
	}
	for i := range doc.Steps {
		s := &doc.Steps[i]
		if c := s.Connect; c != nil {
			c.Signal, c.Sender = normalize(c.Signal), normalize(c.Sender)
			c.Arguments, c.Named = normalizeSlice(c.Arguments), normalizeMap(c.Named)
		}
		if d := s.Disconnect; d != nil {
			d.Signal, d.Sender = normalize(d.Signal), normalize(d.Sender)
		}
		if d := s.Send; d != nil {
			d.Signal, d.Sender = normalize(d.Signal), normalize(d.Sender)
			d.Arguments, d.Named = normalizeSlice(d.Arguments), normalizeMap(d.Named)
		}
	}
	return nil
}

// normalize replaces json.Number values with int when integral and float64
// otherwise, matching what the YAML decoder produces.
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		f, _ := v.Float64()
		return f
	case []any:
		return normalizeSlice(v)
	case map[string]any:
		return normalizeMap(v)
	default:
		return v
	}
}

func normalizeSlice(s []any) []any {
	for i, v := range s {
		s[i] = normalize(v)
	}
	return s
}

func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalize(v)
	}
	return m
}
