package dispatch

import (
	"maps"
	"slices"
)

// Response is the outcome of one receiver invocation.
type Response struct {
	Receiver *Receiver
	Value    any
	// Err is only set by SendRobust.
	Err error
}

// SendOption supplies arguments for a send.
type SendOption func(*sendConfig)

type sendConfig struct {
	args  []any
	named map[string]any
}

// Args appends positional arguments to the send.
func Args(args ...any) SendOption {
	return func(c *sendConfig) { c.args = append(c.args, args...) }
}

// Named adds named arguments to the send.
func Named(named map[string]any) SendOption {
	return func(c *sendConfig) {
		if c.named == nil {
			c.named = make(map[string]any, len(named))
		}
		maps.Copy(c.named, named)
	}
}

type dispatchMode int

const (
	modeAll dispatchMode = iota
	modeExact
	modeRobust
)

func (m dispatchMode) String() string {
	switch m {
	case modeExact:
		return "send_exact"
	case modeRobust:
		return "send_robust"
	default:
		return "send"
	}
}

// Send invokes every live receiver connected for signal from sender, for
// All signals from sender, for signal from Any, and for All from Any, in that
// order and at most once each. A nil sender means Anonymous.
//
// Send stops at the first receiver that fails and returns the responses
// gathered so far together with a *ReceiverError.
func (r *Registry) Send(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return r.dispatch(modeAll, signal, sender, opts)
}

// SendExact is like Send but only reaches receivers connected for exactly
// this sender and signal.
func (r *Registry) SendExact(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return r.dispatch(modeExact, signal, sender, opts)
}

// SendRobust is like Send but never stops early. A receiver's error, a
// binding failure or a recovered panic is recorded in its Response.Err.
// The returned error is only set for invalid arguments.
func (r *Registry) SendRobust(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return r.dispatch(modeRobust, signal, sender, opts)
}

func (r *Registry) dispatch(mode dispatchMode, signal Signal, sender any, opts []SendOption) ([]Response, error) {
	if err := checkSignal(signal); err != nil {
		return nil, &ConfigError{Op: mode.String(), Signal: signal, Sender: sender, Err: err}
	}
	sender = normalizeSender(sender)
	if err := checkSender(sender); err != nil {
		return nil, &ConfigError{Op: mode.String(), Signal: signal, Sender: sender, Err: err}
	}
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r.mu.Lock()
	targets := r.targets(sender, signal, mode == modeExact)
	plugins := slices.Clone(r.plugins)
	r.sends++
	r.mu.Unlock()

	r.logger.Debug("Dispatching signal.", "mode", mode, "signal", signal, "sender", sender, "targets", len(targets))

	responses := make([]Response, 0, len(targets))
	for _, t := range targets {
		recv, fn, ok := live(t.ref, plugins)
		if !ok {
			continue
		}
		for _, p := range plugins {
			fn = p.WrapReceiver(recv, fn)
		}

		var value any
		call, err := bind(recv, signal, sender, t.extra, cfg.args, cfg.named)
		if err == nil {
			if mode == modeRobust {
				value, err = invokeRecovered(fn, call)
			} else {
				value, err = fn(call)
			}
		}
		if err != nil {
			if mode != modeRobust {
				return responses, &ReceiverError{Receiver: recv, Err: err}
			}
			r.logger.Debug("Receiver failed, continuing.", "receiver", recv.name, "signal", signal, "error", err)
		}
		responses = append(responses, Response{Receiver: recv, Value: value, Err: err})
	}
	return responses, nil
}

// live resolves a connection to an invocable receiver, consulting plugins.
func live(h ref, plugins []Plugin) (*Receiver, Handler, bool) {
	recv := h.get()
	if recv == nil {
		return nil, nil, false
	}
	fn, ok := recv.callable()
	if !ok {
		return nil, nil, false
	}
	for _, p := range plugins {
		if !p.IsLive(recv) {
			return nil, nil, false
		}
	}
	return recv, fn, true
}

func invokeRecovered(fn Handler, call *Call) (value any, err error) {
	defer func() {
		if v := recover(); v != nil {
			value, err = nil, newPanicError(v)
		}
	}()
	return fn(call)
}
