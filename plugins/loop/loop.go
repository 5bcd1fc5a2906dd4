// Package loop provides a dispatch plugin that runs every receiver on a single
// dedicated goroutine, for code that must not be entered concurrently.
//
// The sender still waits for each receiver's result, so Send keeps its
// synchronous contract. A receiver running on the loop must not send a signal
// that reaches another receiver wrapped by the same loop: the nested call would
// wait for the loop goroutine it is running on.
package loop

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/specialistvlad/dispatchgo/dispatch"
)

// ErrClosed is returned for calls submitted after Close.
var ErrClosed = errors.New("loop: closed")

// Loop is a dispatch plugin backed by one goroutine.
type Loop struct {
	dispatch.BasePlugin

	logger *slog.Logger
	queue  int

	mu     sync.RWMutex
	closed bool
	calls  chan func()
	done   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithQueue sets how many calls may wait for the loop before senders block.
func WithQueue(n int) Option {
	return func(l *Loop) { l.queue = n }
}

// New starts a Loop. Call Close to stop its goroutine.
func New(opts ...Option) *Loop {
	l := &Loop{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	l.calls = make(chan func(), l.queue)
	l.done = make(chan struct{})
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for fn := range l.calls {
		fn()
	}
	l.logger.Debug("Loop drained and stopped.")
}

// IsLive reports false once the loop is closed, so its receivers are skipped
// instead of failing.
func (l *Loop) IsLive(*dispatch.Receiver) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.closed
}

type result struct {
	value    any
	err      error
	panicked bool
	panicVal any
}

// WrapReceiver runs next on the loop goroutine and waits for it. A panic in
// the receiver is raised again on the sender's goroutine.
func (l *Loop) WrapReceiver(r *dispatch.Receiver, next dispatch.Handler) dispatch.Handler {
	return func(call *dispatch.Call) (any, error) {
		done := make(chan result, 1)
		if err := l.submit(func() { done <- invoke(next, call) }); err != nil {
			return nil, err
		}
		res := <-done
		if res.panicked {
			panic(res.panicVal)
		}
		return res.value, res.err
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(fn func()) error {
	done := make(chan struct{})
	if err := l.submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func (l *Loop) submit(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	l.calls <- fn
	return nil
}

func invoke(fn dispatch.Handler, call *dispatch.Call) (res result) {
	defer func() {
		if v := recover(); v != nil {
			res = result{panicked: true, panicVal: v}
		}
	}()
	res.value, res.err = fn(call)
	return res
}

// Close stops accepting calls, waits for queued calls to finish and stops
// the goroutine. It is safe to call more than once.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.calls)
	l.mu.Unlock()

	<-l.done
	return nil
}
