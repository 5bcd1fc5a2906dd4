package config

import (
	"fmt"
)

// Reserved string values that stand for the dispatch sentinels wherever a
// playbook names a signal or a sender.
const (
	AllSignal       = "@all"
	AnySender       = "@any"
	AnonymousSender = "@anonymous"
)

// Model is the unified, format-agnostic representation of a playbook.
type Model struct {
	Receivers []*ReceiverDefinition
	Steps     []*Step
}

// ReceiverDefinition declares a named receiver built from a registered kind.
type ReceiverDefinition struct {
	Name     string
	Kind     string
	Params   []string
	Optional []string
	Variadic bool
	Keywords bool
	// Settings are passed to the kind's factory untouched.
	Settings map[string]any
	Source   string
}

// StepKind names what a step does.
type StepKind string

const (
	StepPlugin     StepKind = "plugin"
	StepConnect    StepKind = "connect"
	StepDisconnect StepKind = "disconnect"
	StepSend       StepKind = "send"
	StepReset      StepKind = "reset"
)

// Send modes.
const (
	ModeSend   = "send"
	ModeExact  = "exact"
	ModeRobust = "robust"
)

// Step is one playbook instruction. Which fields are meaningful depends on
// Kind.
type Step struct {
	Kind   StepKind
	Source string

	// Receiver names the receiver of connect and disconnect steps.
	Receiver string
	// Plugin names the plugin of plugin steps.
	Plugin string

	Signal any
	Sender any

	// Strong overrides the run's default connection strength when set.
	Strong *bool
	// Mode is one of the send modes; empty means ModeSend.
	Mode string

	Args  []any
	Named map[string]any
}

// String renders the step for logs and reports.
func (s *Step) String() string {
	switch s.Kind {
	case StepPlugin:
		return fmt.Sprintf("plugin %q", s.Plugin)
	case StepConnect, StepDisconnect:
		return fmt.Sprintf("%s %q signal=%v sender=%v", s.Kind, s.Receiver, s.Signal, s.senderOrDefault())
	case StepSend:
		return fmt.Sprintf("%s signal=%v sender=%v", s.ModeOrDefault(), s.Signal, s.senderOrDefault())
	default:
		return string(s.Kind)
	}
}

// ModeOrDefault returns the send mode, defaulting to ModeSend.
func (s *Step) ModeOrDefault() string {
	if s.Mode == "" {
		return ModeSend
	}
	return s.Mode
}

func (s *Step) senderOrDefault() any {
	if s.Sender == nil {
		return AnonymousSender
	}
	return s.Sender
}

// Receiver returns the receiver definition called name.
func (m *Model) Receiver(name string) (*ReceiverDefinition, bool) {
	for _, def := range m.Receivers {
		if def.Name == name {
			return def, true
		}
	}
	return nil, false
}

// ReceiverNames returns the declared receiver names in declaration order.
func (m *Model) ReceiverNames() []string {
	names := make([]string, len(m.Receivers))
	for i, def := range m.Receivers {
		names[i] = def.Name
	}
	return names
}

// Merge appends other's receivers and steps to m. Receiver names must stay
// unique.
func (m *Model) Merge(other *Model) error {
	for _, def := range other.Receivers {
		if prev, ok := m.Receiver(def.Name); ok {
			return fmt.Errorf("receiver %q declared twice (%s and %s)", def.Name, prev.Source, def.Source)
		}
		m.Receivers = append(m.Receivers, def)
	}
	m.Steps = append(m.Steps, other.Steps...)
	return nil
}
