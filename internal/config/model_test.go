package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		input      string
		candidates []string
		want       string
	}{
		{name: "close match", input: "prnt", candidates: []string{"print", "echo"}, want: ` (did you mean "print"?)`},
		{name: "exact match", input: "echo", candidates: []string{"print", "echo"}, want: ` (did you mean "echo"?)`},
		{name: "too far", input: "completely-different", candidates: []string{"print", "echo"}, want: ""},
		{name: "no candidates", input: "print", candidates: nil, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Suggest(tc.input, tc.candidates))
		})
	}
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	model := &Model{
		Receivers: []*ReceiverDefinition{
			{Name: "printer", Kind: "print", Source: "main.hcl:1"},
			{Name: "nameless", Source: "main.hcl:5"},
		},
		Steps: []*Step{
			{Kind: StepConnect, Receiver: "printr", Signal: "ping", Source: "main.hcl:10"},
			{Kind: StepSend, Source: "main.hcl:14"},
			{Kind: StepSend, Signal: "ping", Mode: "robustt", Source: "main.hcl:16"},
			{Kind: StepPlugin, Source: "main.hcl:18"},
			{Kind: StepReset, Source: "main.hcl:20"},
		},
	}

	// --- Act ---
	err := model.Validate()

	// --- Assert ---
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `main.hcl:5: receiver "nameless" has no kind`)
	assert.Contains(t, msg, `main.hcl:10: unknown receiver "printr" (did you mean "printer"?)`)
	assert.Contains(t, msg, "main.hcl:14: send step has no signal")
	assert.Contains(t, msg, `main.hcl:16: unknown send mode "robustt" (did you mean "robust"?)`)
	assert.Contains(t, msg, "main.hcl:18: plugin step has no plugin name")
}

func TestModel_Merge(t *testing.T) {
	t.Parallel()

	a := &Model{
		Receivers: []*ReceiverDefinition{{Name: "one", Kind: "print", Source: "a.hcl:1"}},
		Steps:     []*Step{{Kind: StepReset}},
	}
	b := &Model{
		Receivers: []*ReceiverDefinition{{Name: "two", Kind: "echo", Source: "b.yaml: receiver 1"}},
		Steps:     []*Step{{Kind: StepSend, Signal: "x"}},
	}

	require.NoError(t, a.Merge(b))
	assert.Equal(t, []string{"one", "two"}, a.ReceiverNames())
	assert.Len(t, a.Steps, 2)
	require.NoError(t, a.Validate())

	err := a.Merge(&Model{Receivers: []*ReceiverDefinition{{Name: "one", Source: "c.hcl:3"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `receiver "one" declared twice (a.hcl:1 and c.hcl:3)`)
}

func TestStep_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `connect "printer" signal=ping sender=@anonymous`, (&Step{Kind: StepConnect, Receiver: "printer", Signal: "ping"}).String())
	assert.Equal(t, "robust signal=ping sender=a", (&Step{Kind: StepSend, Signal: "ping", Sender: "a", Mode: ModeRobust}).String())
	assert.Equal(t, `plugin "trace"`, (&Step{Kind: StepPlugin, Plugin: "trace"}).String())
	assert.Equal(t, "reset", (&Step{Kind: StepReset}).String())
}
