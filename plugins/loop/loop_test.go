package loop

import (
	"bytes"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goroutineID returns the "goroutine N" header of the current stack.
func goroutineID() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	if i := bytes.IndexByte(buf, '['); i > 0 {
		buf = buf[:i]
	}
	return string(bytes.TrimSpace(buf))
}

func TestLoop_RunsReceiversOnLoopGoroutine(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	l := New()
	t.Cleanup(func() { _ = l.Close() })
	reg := dispatch.New(dispatch.WithPlugins(l))

	var loopID string
	require.NoError(t, l.Do(func() { loopID = goroutineID() }))

	r := dispatch.Func(func(*dispatch.Call) (any, error) { return goroutineID(), nil })
	require.NoError(t, reg.Connect(r, "ping", dispatch.Any, dispatch.Strong()))

	// --- Act ---
	responses, err := reg.Send("ping", nil)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, loopID, responses[0].Value)
	assert.NotEqual(t, goroutineID(), responses[0].Value)
}

func TestLoop_SerializesConcurrentSends(t *testing.T) {
	t.Parallel()

	l := New(WithQueue(4))
	t.Cleanup(func() { _ = l.Close() })
	reg := dispatch.New(dispatch.WithPlugins(l))

	// counter is only touched on the loop goroutine, so no lock is needed.
	counter := 0
	r := dispatch.Func(func(*dispatch.Call) (any, error) { counter++; return counter, nil })
	require.NoError(t, reg.Connect(r, "inc", dispatch.Any, dispatch.Strong()))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Send("inc", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, l.Do(func() { final = counter }))
	assert.Equal(t, 10, final)
}

func TestLoop_ErrorsAndPanicsReachTheSender(t *testing.T) {
	t.Parallel()

	l := New()
	t.Cleanup(func() { _ = l.Close() })
	reg := dispatch.New(dispatch.WithPlugins(l))
	errBad := errors.New("bad")
	failing := dispatch.Func(func(*dispatch.Call) (any, error) { return nil, errBad })
	panicking := dispatch.Func(func(*dispatch.Call) (any, error) { panic("on the loop") })
	require.NoError(t, reg.Connect(failing, "ping", dispatch.Any, dispatch.Strong()))
	require.NoError(t, reg.Connect(panicking, "ping", dispatch.Any, dispatch.Strong()))

	responses, err := reg.SendRobust("ping", nil)

	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.ErrorIs(t, responses[0].Err, errBad)
	var pe *dispatch.PanicError
	require.ErrorAs(t, responses[1].Err, &pe)
	assert.Equal(t, "on the loop", pe.Value)
}

func TestLoop_ClosedLoopSkipsReceivers(t *testing.T) {
	t.Parallel()

	l := New()
	reg := dispatch.New(dispatch.WithPlugins(l))
	r := dispatch.Func(func(*dispatch.Call) (any, error) { return "ran", nil })
	require.NoError(t, reg.Connect(r, "ping", dispatch.Any, dispatch.Strong()))

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	responses, err := reg.Send("ping", nil)
	require.NoError(t, err)
	assert.Empty(t, responses)
	assert.ErrorIs(t, l.Do(func() {}), ErrClosed)

	wrapped := l.WrapReceiver(r, func(*dispatch.Call) (any, error) { return nil, nil })
	_, err = wrapped(&dispatch.Call{})
	assert.ErrorIs(t, err, ErrClosed)
}
