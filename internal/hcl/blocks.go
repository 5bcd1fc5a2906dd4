package hcl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dispatchgo/internal/config"
)

type receiverBlock struct {
	Kind     string         `hcl:"kind"`
	Params   []string       `hcl:"params,optional"`
	Optional []string       `hcl:"optional,optional"`
	Variadic bool           `hcl:"variadic,optional"`
	Keywords bool           `hcl:"keywords,optional"`
	Settings hcl.Expression `hcl:"settings,optional"`
}

type connectBlock struct {
	Signal    hcl.Expression `hcl:"signal"`
	Sender    hcl.Expression `hcl:"sender,optional"`
	Strong    *bool          `hcl:"strong,optional"`
	Arguments hcl.Expression `hcl:"arguments,optional"`
	Named     hcl.Expression `hcl:"named,optional"`
}

type disconnectBlock struct {
	Signal hcl.Expression `hcl:"signal"`
	Sender hcl.Expression `hcl:"sender,optional"`
}

type sendBlock struct {
	Signal    hcl.Expression `hcl:"signal"`
	Sender    hcl.Expression `hcl:"sender,optional"`
	Mode      string         `hcl:"mode,optional"`
	Arguments hcl.Expression `hcl:"arguments,optional"`
	Named     hcl.Expression `hcl:"named,optional"`
}

// emptyBlock rejects every attribute.
type emptyBlock struct{}

// blockLabels is the number of labels each block type takes.
var blockLabels = map[string]int{
	"receiver":   1,
	"plugin":     1,
	"connect":    1,
	"disconnect": 1,
	"send":       0,
	"reset":      0,
}

// translateBody appends every top-level block of body to model, in source
// order.
func (l *Loader) translateBody(filename string, body *hclsyntax.Body, model *config.Model) error {
	if len(body.Attributes) > 0 {
		name := slices.Sorted(maps.Keys(body.Attributes))[0]
		return fmt.Errorf("%s:%d: unexpected top-level attribute %q", filename, body.Attributes[name].SrcRange.Start.Line, name)
	}

	for _, block := range body.Blocks {
		source := fmt.Sprintf("%s:%d", filename, block.DefRange().Start.Line)
		want, ok := blockLabels[block.Type]
		if !ok {
			types := slices.Sorted(maps.Keys(blockLabels))
			return fmt.Errorf("%s: unknown block type %q%s", source, block.Type, config.Suggest(block.Type, types))
		}
		if len(block.Labels) != want {
			return fmt.Errorf("%s: %s block takes %d label(s), got %d", source, block.Type, want, len(block.Labels))
		}
		if err := l.translateBlock(block, source, model); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

func (l *Loader) translateBlock(block *hclsyntax.Block, source string, model *config.Model) error {
	switch block.Type {
	case "receiver":
		def, err := l.translateReceiver(block, source)
		if err != nil {
			return err
		}
		return model.Merge(&config.Model{Receivers: []*config.ReceiverDefinition{def}})
	case "plugin":
		if err := l.decode(block, &emptyBlock{}); err != nil {
			return err
		}
		model.Steps = append(model.Steps, &config.Step{Kind: config.StepPlugin, Source: source, Plugin: block.Labels[0]})
	case "connect":
		step, err := l.translateConnect(block, source)
		if err != nil {
			return err
		}
		model.Steps = append(model.Steps, step)
	case "disconnect":
		var b disconnectBlock
		if err := l.decode(block, &b); err != nil {
			return err
		}
		step := &config.Step{Kind: config.StepDisconnect, Source: source, Receiver: block.Labels[0]}
		if err := l.signalAndSender(b.Signal, b.Sender, step); err != nil {
			return err
		}
		model.Steps = append(model.Steps, step)
	case "send":
		step, err := l.translateSend(block, source)
		if err != nil {
			return err
		}
		model.Steps = append(model.Steps, step)
	case "reset":
		if err := l.decode(block, &emptyBlock{}); err != nil {
			return err
		}
		model.Steps = append(model.Steps, &config.Step{Kind: config.StepReset, Source: source})
	}
	return nil
}

func (l *Loader) translateReceiver(block *hclsyntax.Block, source string) (*config.ReceiverDefinition, error) {
	var b receiverBlock
	if err := l.decode(block, &b); err != nil {
		return nil, err
	}
	settings, err := exprMap(b.Settings, l.evalCtx, "settings")
	if err != nil {
		return nil, err
	}
	return &config.ReceiverDefinition{
		Name:     block.Labels[0],
		Kind:     b.Kind,
		Params:   b.Params,
		Optional: b.Optional,
		Variadic: b.Variadic,
		Keywords: b.Keywords,
		Settings: settings,
		Source:   source,
	}, nil
}

func (l *Loader) translateConnect(block *hclsyntax.Block, source string) (*config.Step, error) {
	var b connectBlock
	if err := l.decode(block, &b); err != nil {
		return nil, err
	}
	step := &config.Step{Kind: config.StepConnect, Source: source, Receiver: block.Labels[0], Strong: b.Strong}
	if err := l.signalAndSender(b.Signal, b.Sender, step); err != nil {
		return nil, err
	}
	var err error
	if step.Args, err = exprList(b.Arguments, l.evalCtx, "arguments"); err != nil {
		return nil, err
	}
	if step.Named, err = exprMap(b.Named, l.evalCtx, "named"); err != nil {
		return nil, err
	}
	return step, nil
}

func (l *Loader) translateSend(block *hclsyntax.Block, source string) (*config.Step, error) {
	var b sendBlock
	if err := l.decode(block, &b); err != nil {
		return nil, err
	}
	step := &config.Step{Kind: config.StepSend, Source: source, Mode: b.Mode}
	if err := l.signalAndSender(b.Signal, b.Sender, step); err != nil {
		return nil, err
	}
	var err error
	if step.Args, err = exprList(b.Arguments, l.evalCtx, "arguments"); err != nil {
		return nil, err
	}
	if step.Named, err = exprMap(b.Named, l.evalCtx, "named"); err != nil {
		return nil, err
	}
	return step, nil
}

func (l *Loader) signalAndSender(signal, sender hcl.Expression, step *config.Step) error {
	var err error
	if step.Signal, err = exprValue(signal, l.evalCtx); err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}
	if step.Signal == nil {
		return fmt.Errorf("%s block needs a signal", step.Kind)
	}
	if step.Sender, err = exprValue(sender, l.evalCtx); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	return nil
}

func (l *Loader) decode(block *hclsyntax.Block, dst any) error {
	if diags := gohcl.DecodeBody(block.Body, l.evalCtx, dst); diags.HasErrors() {
		return diags
	}
	return nil
}
