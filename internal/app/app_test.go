package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dispatchgo/internal/app"
	"github.com/specialistvlad/dispatchgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hclPlaybook = `
receiver "printer" {
  kind   = "print"
  params = ["message"]
}

receiver "answer" {
  kind     = "echo"
  settings = { value = 42 }
}

connect "printer" {
  signal = "greet"
  sender = any
}

connect "answer" {
  signal = all
  sender = "door"
}

send {
  signal = "greet"
  sender = "door"
  named  = { message = "hello" }
}
`

func TestRun_HCLPlaybook(t *testing.T) {
	t.Parallel()

	// --- Act ---
	res := testutil.RunPlaybook(t, map[string]string{"main.hcl": hclPlaybook}, app.Config{Stats: true})

	// --- Assert ---
	require.NoError(t, res.Err, res.LogOutput)
	assert.Contains(t, res.Output, "signal=greet sender=door message=\"hello\"\n")
	assert.Contains(t, res.Output, "send greet from door")
	assert.Contains(t, res.Output, "✓ answer → 42")
	assert.Contains(t, res.Output, "  connections      2\n")
	assert.Contains(t, res.LogOutput, "Starting playbook run.")
}

func TestRun_MixedDirectoryJSONReport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"receivers.hcl": `receiver "echoer" {
  kind   = "echo"
  params = ["x"]
}`,
		"steps.yaml": `
steps:
  - connect: {receiver: echoer, signal: 1}
  - send: {signal: 1, arguments: [7]}
`,
		"more.jsonc": `{"steps": [{"send": {"signal": 1, "named": {"x": "y"}}}]}`,
	}

	// --- Act ---
	res := testutil.RunPlaybook(t, files, app.Config{OutputFormat: "json", LogFormat: "json"})

	// --- Assert ---
	require.NoError(t, res.Err, res.LogOutput)

	var doc struct {
		RunID string `json:"run_id"`
		Sends []struct {
			Signal    string `json:"signal"`
			Responses []struct {
				Receiver string `json:"receiver"`
				Value    any    `json:"value"`
			} `json:"responses"`
		} `json:"sends"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Output), &doc))
	assert.NotEmpty(t, doc.RunID)

	type resp = struct {
		Receiver string `json:"receiver"`
		Value    any    `json:"value"`
	}
	var got [][]resp
	for _, s := range doc.Sends {
		got = append(got, s.Responses)
	}
	want := [][]resp{
		{{Receiver: "echoer", Value: map[string]any{"x": float64(7)}}},
		{{Receiver: "echoer", Value: map[string]any{"x": "y"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("responses mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FailingReceiver(t *testing.T) {
	t.Parallel()

	res := testutil.RunPlaybook(t, map[string]string{"play.yml": `
receivers:
  - {name: boom, kind: fail, settings: {message: "out of coffee"}}
steps:
  - connect: {receiver: boom, signal: brew}
  - send: {signal: brew, mode: robust}
`}, app.Config{})

	require.ErrorIs(t, res.Err, app.ErrReceiversFailed)
	assert.Contains(t, res.Output, "✗ boom: out of coffee")
}

func TestRun_InvalidPlaybook(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "unknown kind",
			files:   map[string]string{"main.hcl": `receiver "p" { kind = "prnt" }`},
			wantErr: `unknown kind "prnt" (did you mean "print"?)`,
		},
		{
			name:    "syntax error",
			files:   map[string]string{"main.hcl": `receiver "p" {`},
			wantErr: "failed to load playbook",
		},
		{
			name:    "unknown receiver",
			files:   map[string]string{"main.hcl": "connect \"ghost\" {\n  signal = \"x\"\n}"},
			wantErr: `unknown receiver "ghost"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := testutil.RunPlaybook(t, tc.files, app.Config{})
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tc.wantErr)
		})
	}
}

func TestRun_SingleFileUsesItsLoader(t *testing.T) {
	t.Parallel()

	res := testutil.RunPlaybook(t, map[string]string{
		"a.yaml": "steps:\n  - reset: {}\n",
		"b.hcl":  `receiver "p" { kind = "nope" }`,
	}, app.Config{PlaybookPath: "a.yaml"})

	require.NoError(t, res.Err, res.LogOutput)
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	res := testutil.RunPlaybookWithContext(ctx, t, map[string]string{"p.yaml": "steps:\n  - reset: {}\n"}, app.Config{})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}
