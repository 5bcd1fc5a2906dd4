package document

import (
	"fmt"

	"github.com/specialistvlad/dispatchgo/internal/config"
)

type playbook struct {
	Receivers []receiverDoc `yaml:"receivers" json:"receivers"`
	Steps     []stepDoc     `yaml:"steps" json:"steps"`
}

type receiverDoc struct {
	Name     string         `yaml:"name" json:"name"`
	Kind     string         `yaml:"kind" json:"kind"`
	Params   []string       `yaml:"params" json:"params"`
	Optional []string       `yaml:"optional" json:"optional"`
	Variadic bool           `yaml:"variadic" json:"variadic"`
	Keywords bool           `yaml:"keywords" json:"keywords"`
	Settings map[string]any `yaml:"settings" json:"settings"`
}

type stepDoc struct {
	Plugin     *string        `yaml:"plugin" json:"plugin"`
	Connect    *connectDoc    `yaml:"connect" json:"connect"`
	Disconnect *disconnectDoc `yaml:"disconnect" json:"disconnect"`
	Send       *sendDoc       `yaml:"send" json:"send"`
	Reset      *struct{}      `yaml:"reset" json:"reset"`
}

type connectDoc struct {
	Receiver  string         `yaml:"receiver" json:"receiver"`
	Signal    any            `yaml:"signal" json:"signal"`
	Sender    any            `yaml:"sender" json:"sender"`
	Strong    *bool          `yaml:"strong" json:"strong"`
	Arguments []any          `yaml:"arguments" json:"arguments"`
	Named     map[string]any `yaml:"named" json:"named"`
}

type disconnectDoc struct {
	Receiver string `yaml:"receiver" json:"receiver"`
	Signal   any    `yaml:"signal" json:"signal"`
	Sender   any    `yaml:"sender" json:"sender"`
}

type sendDoc struct {
	Signal    any            `yaml:"signal" json:"signal"`
	Sender    any            `yaml:"sender" json:"sender"`
	Mode      string         `yaml:"mode" json:"mode"`
	Arguments []any          `yaml:"arguments" json:"arguments"`
	Named     map[string]any `yaml:"named" json:"named"`
}

// translate converts a decoded document into the playbook model.
func (p *playbook) translate(filename string) (*config.Model, error) {
	model := &config.Model{}
	for i, r := range p.Receivers {
		def := &config.ReceiverDefinition{
			Name:     r.Name,
			Kind:     r.Kind,
			Params:   r.Params,
			Optional: r.Optional,
			Variadic: r.Variadic,
			Keywords: r.Keywords,
			Settings: r.Settings,
			Source:   fmt.Sprintf("%s: receiver %d", filename, i+1),
		}
		if err := model.Merge(&config.Model{Receivers: []*config.ReceiverDefinition{def}}); err != nil {
			return nil, err
		}
	}
	for i, s := range p.Steps {
		source := fmt.Sprintf("%s: step %d", filename, i+1)
		step, err := s.translate(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		model.Steps = append(model.Steps, step)
	}
	return model, nil
}

func (s *stepDoc) translate(source string) (*config.Step, error) {
	set := 0
	for _, present := range []bool{s.Plugin != nil, s.Connect != nil, s.Disconnect != nil, s.Send != nil, s.Reset != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("a step must name exactly one of plugin, connect, disconnect, send or reset; got %d", set)
	}

	switch {
	case s.Plugin != nil:
		return &config.Step{Kind: config.StepPlugin, Source: source, Plugin: *s.Plugin}, nil
	case s.Connect != nil:
		c := s.Connect
		return &config.Step{
			Kind:     config.StepConnect,
			Source:   source,
			Receiver: c.Receiver,
			Signal:   c.Signal,
			Sender:   c.Sender,
			Strong:   c.Strong,
			Args:     c.Arguments,
			Named:    c.Named,
		}, nil
	case s.Disconnect != nil:
		d := s.Disconnect
		return &config.Step{Kind: config.StepDisconnect, Source: source, Receiver: d.Receiver, Signal: d.Signal, Sender: d.Sender}, nil
	case s.Send != nil:
		d := s.Send
		return &config.Step{
			Kind:   config.StepSend,
			Source: source,
			Signal: d.Signal,
			Sender: d.Sender,
			Mode:   d.Mode,
			Args:   d.Arguments,
			Named:  d.Named,
		}, nil
	default:
		return &config.Step{Kind: config.StepReset, Source: source}, nil
	}
}
