package dispatch

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"weak"
)

// Handler is the calling convention shared by every receiver.
type Handler func(call *Call) (any, error)

// Call carries the arguments bound for one receiver invocation.
type Call struct {
	Signal Signal
	Sender any

	// Args holds the positional arguments left over after the declared
	// parameters were bound. It is empty unless the receiver is variadic.
	Args []any

	// Named holds the declared parameters that were bound and, for receivers
	// accepting arbitrary keywords, every other named argument.
	Named map[string]any
}

// Get returns the named argument name and whether it was bound.
func (c *Call) Get(name string) (any, bool) {
	v, ok := c.Named[name]
	return v, ok
}

// Receiver is a handle to something that can be invoked when a signal is
// dispatched. Receivers are built with Func, Method or Reflect.
type Receiver struct {
	name string
	sig  Signature
	id   any

	// fn is set for function receivers.
	fn Handler

	// resolve and collect are set for method receivers, whose liveness is
	// governed by the bound object rather than by the handle.
	resolve func() (Handler, any, bool)
	collect func(f func()) (runtime.Cleanup, bool)
}

// ReceiverOption configures a Receiver.
type ReceiverOption func(*Receiver)

// Name sets the name used for the receiver in logs and errors.
func Name(name string) ReceiverOption {
	return func(r *Receiver) { r.name = name }
}

// Params declares required parameters, in positional order.
func Params(names ...string) ReceiverOption {
	return func(r *Receiver) {
		for _, n := range names {
			r.sig.Params = append(r.sig.Params, Param{Name: n})
		}
	}
}

// Optional declares optional parameters, in positional order after those
// already declared.
func Optional(names ...string) ReceiverOption {
	return func(r *Receiver) {
		for _, n := range names {
			r.sig.Params = append(r.sig.Params, Param{Name: n, Optional: true})
		}
	}
}

// Variadic makes the receiver accept surplus positional arguments in Call.Args.
func Variadic() ReceiverOption {
	return func(r *Receiver) { r.sig.Variadic = true }
}

// Keywords makes the receiver accept every named argument, declared or not.
func Keywords() ReceiverOption {
	return func(r *Receiver) { r.sig.Keywords = true }
}

// WithSignature replaces the receiver's signature.
func WithSignature(sig Signature) ReceiverOption {
	return func(r *Receiver) { r.sig = sig }
}

// Func returns a receiver for fn. The receiver's identity is the returned
// handle: connecting it weakly keeps it registered only while the caller
// holds on to the handle.
func Func(fn Handler, opts ...ReceiverOption) *Receiver {
	if fn == nil {
		panic("dispatch: Func requires a function")
	}
	r := &Receiver{
		name: funcName(reflect.ValueOf(fn).Pointer()),
		fn:   fn,
	}
	r.id = weak.Make(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// methodID identifies a method receiver by its object and code pointer.
type methodID struct {
	target any
	code   uintptr
}

// Method returns a receiver that calls fn with obj. The receiver does not keep
// obj alive: once obj is collected, the receiver is dropped from every weak
// connection. Handles made for the same obj and fn share one identity.
//
// fn should be a method expression such as (*T).OnEvent. A closure over obj
// would keep obj reachable forever.
func Method[T any](obj *T, fn func(*T, *Call) (any, error), opts ...ReceiverOption) *Receiver {
	if obj == nil || fn == nil {
		panic("dispatch: Method requires an object and a function")
	}
	wp := weak.Make(obj)
	code := reflect.ValueOf(fn).Pointer()
	r := &Receiver{
		name: fmt.Sprintf("%T.%s", obj, shortName(funcName(code))),
		id:   methodID{target: wp, code: code},
		resolve: func() (Handler, any, bool) {
			p := wp.Value()
			if p == nil {
				return nil, nil, false
			}
			return func(call *Call) (any, error) { return fn(p, call) }, p, true
		},
		collect: func(f func()) (runtime.Cleanup, bool) {
			p := wp.Value()
			if p == nil {
				return runtime.Cleanup{}, false
			}
			return runtime.AddCleanup(p, runCleanup, f), true
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the receiver's identity. Two receivers with equal IDs are the
// same receiver as far as a Registry is concerned.
func (r *Receiver) ID() any { return r.id }

// Name returns the receiver's name.
func (r *Receiver) Name() string { return r.name }

func (r *Receiver) String() string { return r.name }

// Signature returns the parameters the receiver declared.
func (r *Receiver) Signature() Signature { return r.sig }

// Target returns the object a method receiver is bound to, or nil for
// function receivers and for methods whose object was collected.
func (r *Receiver) Target() any {
	if r.resolve == nil {
		return nil
	}
	_, target, _ := r.resolve()
	return target
}

// Alive reports whether the receiver can still be invoked.
func (r *Receiver) Alive() bool {
	_, ok := r.callable()
	return ok
}

func (r *Receiver) callable() (Handler, bool) {
	if r.resolve != nil {
		fn, _, ok := r.resolve()
		return fn, ok
	}
	return r.fn, true
}

// onCollect arranges for f to run once the receiver can no longer be
// invoked.
func (r *Receiver) onCollect(f func()) (runtime.Cleanup, bool) {
	if r.collect != nil {
		return r.collect(f)
	}
	return runtime.AddCleanup(r, runCleanup, f), true
}

func funcName(pc uintptr) string {
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return fmt.Sprintf("func@%#x", pc)
}

// shortName trims the package path and receiver type from a function name.
func shortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
