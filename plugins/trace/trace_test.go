package trace

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlugin_LogsInvocations(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := dispatch.New(dispatch.WithPlugins(New(logger, slog.LevelInfo)))

	ok := dispatch.Func(func(*dispatch.Call) (any, error) { return 1, nil }, dispatch.Name("ok-receiver"))
	bad := dispatch.Func(func(*dispatch.Call) (any, error) { return nil, errors.New("nope") }, dispatch.Name("bad-receiver"))
	require.NoError(t, reg.Connect(ok, "ping", "a", dispatch.Strong()))
	require.NoError(t, reg.Connect(bad, "ping", "a", dispatch.Strong()))

	// --- Act ---
	responses, err := reg.SendRobust("ping", "a")

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, responses, 2)
	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="Receiver invoked." receiver=ok-receiver signal=ping sender=a`)
	assert.Contains(t, out, `level=WARN msg="Receiver failed." receiver=bad-receiver`)
	assert.Contains(t, out, "error=nope")
}
