package env_vars

import (
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/config"
	"github.com/specialistvlad/dispatchgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	t.Setenv("DISPATCHGO_TEST_COLOR", "blue")

	// --- Arrange ---
	kinds := registry.New()
	(&Module{}).Register(kinds)
	recv, err := kinds.Build(&config.ReceiverDefinition{
		Name:     "color",
		Kind:     "env",
		Optional: []string{"name"},
		Settings: map[string]any{"name": "DISPATCHGO_TEST_COLOR", "default": "none"},
	}, registry.Env{})
	require.NoError(t, err)
	reg := dispatch.New(dispatch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, reg.Connect(recv, "lookup", nil, dispatch.Strong()))

	testCases := []struct {
		name string
		opts []dispatch.SendOption
		want any
	}{
		{name: "setting", want: "blue"},
		{name: "argument overrides", opts: []dispatch.SendOption{dispatch.Args("DISPATCHGO_TEST_UNSET_VARIABLE")}, want: "none"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			responses, err := reg.Send("lookup", nil, tc.opts...)

			// --- Assert ---
			require.NoError(t, err)
			require.Len(t, responses, 1)
			assert.Equal(t, tc.want, responses[0].Value)
		})
	}
}

func TestEnv_NoName(t *testing.T) {
	t.Parallel()

	kinds := registry.New()
	(&Module{}).Register(kinds)
	recv, err := kinds.Build(&config.ReceiverDefinition{Name: "e", Kind: "env"}, registry.Env{})
	require.NoError(t, err)
	reg := dispatch.New(dispatch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, reg.Connect(recv, "lookup", nil, dispatch.Strong()))

	_, err = reg.Send("lookup", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env: no variable name given")
}
