package dispatch

import (
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	defaultWait = 5 * time.Second
	pollEvery   = 10 * time.Millisecond
)

// widget is a heap object used as a sender or as a method receiver target.
type widget struct {
	name  string
	calls int
}

func (w *widget) onPing(call *Call) (any, error) {
	w.calls++
	return w.name, nil
}

func (w *widget) onOther(call *Call) (any, error) {
	return "other:" + w.name, nil
}

func newTestRegistry(opts ...Option) *Registry {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

// constant returns a receiver that always answers v.
func constant(v any, opts ...ReceiverOption) *Receiver {
	return Func(func(*Call) (any, error) { return v, nil }, opts...)
}

func receiversOf(responses []Response) []*Receiver {
	out := make([]*Receiver, len(responses))
	for i, r := range responses {
		out[i] = r.Receiver
	}
	return out
}

func valuesOf(responses []Response) []any {
	out := make([]any, len(responses))
	for i, r := range responses {
		out[i] = r.Value
	}
	return out
}

func requireEmpty(t *testing.T, r *Registry) {
	t.Helper()
	st := r.Stats()
	require.True(t, st.Empty(), "registry should hold nothing, got %+v", st)
}

// requireEventuallyEmpty forces collections until every cleanup has run.
func requireEventuallyEmpty(t *testing.T, r *Registry) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return r.Stats().Empty()
	}, defaultWait, pollEvery, "registry was not pruned: %+v", r.Stats())
}
