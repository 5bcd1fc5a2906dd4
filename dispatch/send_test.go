package dispatch

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(err error) *Receiver {
	return Func(func(*Call) (any, error) { return nil, err }, Name("failing"))
}

func TestSendRobust_CollectsErrors(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := newTestRegistry()
	r1 := failing(errBoom)
	r2 := constant(42)
	require.NoError(t, reg.Connect(r1, "ping", "a"))
	require.NoError(t, reg.Connect(r2, "ping", "a"))

	// --- Act ---
	responses, err := reg.SendRobust("ping", "a")

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Same(t, r1, responses[0].Receiver)
	assert.Same(t, errBoom, responses[0].Err, "the receiver's error is recorded as is")
	assert.Nil(t, responses[0].Value)
	assert.Same(t, r2, responses[1].Receiver)
	assert.Equal(t, 42, responses[1].Value)
	assert.NoError(t, responses[1].Err)
}

func TestSend_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := newTestRegistry()
	called := false
	first := constant("first")
	r1 := failing(errBoom)
	r2 := Func(func(*Call) (any, error) { called = true; return nil, nil })
	require.NoError(t, reg.Connect(first, "ping", "a"))
	require.NoError(t, reg.Connect(r1, "ping", "a"))
	require.NoError(t, reg.Connect(r2, "ping", "a"))

	// --- Act ---
	responses, err := reg.Send("ping", "a")

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var re *ReceiverError
	require.ErrorAs(t, err, &re)
	assert.Same(t, r1, re.Receiver)
	assert.Equal(t, []any{"first"}, valuesOf(responses), "responses gathered before the failure are returned")
	assert.False(t, called)
	runtime.KeepAlive(first)
	runtime.KeepAlive(r2)
}

func TestSendExact_PropagatesFailure(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	r := failing(errBoom)
	require.NoError(t, reg.Connect(r, "ping", "a"))

	responses, err := reg.SendExact("ping", "a")

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, responses)
	runtime.KeepAlive(r)
}

func TestSendRobust_RecoversPanics(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	p := Func(func(*Call) (any, error) { panic("kaboom") })
	after := constant("after")
	require.NoError(t, reg.Connect(p, "ping", "a"))
	require.NoError(t, reg.Connect(after, "ping", "a"))

	responses, err := reg.SendRobust("ping", "a")

	require.NoError(t, err)
	require.Len(t, responses, 2)
	var pe *PanicError
	require.ErrorAs(t, responses[0].Err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.Contains(t, pe.Stack, "goroutine")
	assert.Equal(t, "after", responses[1].Value)
	runtime.KeepAlive(p)
	runtime.KeepAlive(after)
}

func TestSend_PanicsPropagate(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	p := Func(func(*Call) (any, error) { panic("kaboom") })
	require.NoError(t, reg.Connect(p, "ping", "a"))

	assert.PanicsWithValue(t, "kaboom", func() { _, _ = reg.Send("ping", "a") })
	runtime.KeepAlive(p)
}

func TestSend_BindErrors(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	strict := constant("strict", Params("required"))
	ok := constant("ok")
	require.NoError(t, reg.Connect(strict, "ping", "a"))
	require.NoError(t, reg.Connect(ok, "ping", "a"))

	_, err := reg.Send("ping", "a")
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Reason, `missing required argument "required"`)

	responses, err := reg.SendRobust("ping", "a")
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.ErrorAs(t, responses[0].Err, &be)
	assert.Equal(t, "ok", responses[1].Value)

	responses, err = reg.Send("ping", "a", Named(map[string]any{"required": true}))
	require.NoError(t, err)
	assert.Equal(t, []any{"strict", "ok"}, valuesOf(responses))
	runtime.KeepAlive(strict)
	runtime.KeepAlive(ok)
}

func TestSend_ArgumentMerge(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := newTestRegistry()
	var got *Call
	r := Func(func(call *Call) (any, error) { got = call; return nil, nil }, Variadic(), Keywords())
	require.NoError(t, reg.Connect(r, "ping", "a",
		WithArgs(1, 2),
		WithNamed(map[string]any{"a": 3, "b": 4}),
	))

	// --- Act ---
	_, err := reg.Send("ping", "a",
		Args(5, 6),
		Named(map[string]any{"a": 7, "c": 8}),
	)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []any{1, 2, 5, 6}, got.Args)
	assert.Equal(t, map[string]any{"a": 7, "b": 4, "c": 8, "signal": "ping", "sender": "a"}, got.Named)
	v, ok := got.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	runtime.KeepAlive(r)
}

func TestSend_CountsSends(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	for range 3 {
		_, err := reg.Send("ping", nil)
		require.NoError(t, err)
	}
	_, err := reg.SendExact("ping", nil)
	require.NoError(t, err)
	_, err = reg.SendRobust("ping", nil)
	require.NoError(t, err)

	assert.Equal(t, 5, reg.Stats().Sends)
}
