package dispatch

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Param is one declared receiver parameter.
type Param struct {
	Name     string
	Optional bool
}

// Signature describes the arguments a receiver accepts.
type Signature struct {
	// Params are bound from positional arguments first, in order, and then
	// from named arguments.
	Params []Param

	// Variadic receivers get surplus positional arguments in Call.Args.
	Variadic bool

	// Keywords receivers get every named argument, declared or not.
	Keywords bool
}

// Names returns the declared parameter names in order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+2)
	for _, p := range s.Params {
		if p.Optional {
			parts = append(parts, p.Name+"?")
		} else {
			parts = append(parts, p.Name)
		}
	}
	if s.Variadic {
		parts = append(parts, "args...")
	}
	if s.Keywords {
		parts = append(parts, "named...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// declaredAfter reports whether name is a parameter at index n or later.
func (s Signature) declaredAfter(name string, n int) bool {
	return slices.ContainsFunc(s.Params[n:], func(p Param) bool { return p.Name == name })
}

// bind merges connect-time and send-time arguments and fits them to the
// receiver's signature. Positional arguments are the connect-time ones
// followed by the send-time ones; send-time named arguments override
// connect-time ones. The signal and sender are offered as named arguments.
func bind(r *Receiver, signal Signal, sender any, extra Extra, args []any, named map[string]any) (*Call, error) {
	sig := r.sig
	fail := func(format string, a ...any) (*Call, error) {
		return nil, &BindError{Receiver: r.name, Reason: fmt.Sprintf(format, a...)}
	}

	positional := make([]any, 0, len(extra.Args)+len(args))
	positional = append(positional, extra.Args...)
	positional = append(positional, args...)

	merged := make(map[string]any, len(extra.Named)+len(named)+2)
	maps.Copy(merged, extra.Named)
	maps.Copy(merged, named)
	for _, reserved := range []string{"signal", "sender"} {
		if _, ok := merged[reserved]; ok {
			return fail("named argument %q is reserved", reserved)
		}
	}
	merged["signal"] = signal
	merged["sender"] = sender

	if len(positional) > len(sig.Params) && !sig.Variadic {
		return fail("takes %d positional arguments but %d were given", len(sig.Params), len(positional))
	}

	call := &Call{
		Signal: signal,
		Sender: sender,
		Named:  make(map[string]any, len(merged)),
	}

	n := min(len(positional), len(sig.Params))
	for i, p := range sig.Params[:n] {
		if _, dup := merged[p.Name]; dup {
			return fail("argument %q given both positionally and by name", p.Name)
		}
		call.Named[p.Name] = positional[i]
	}
	if len(positional) > n {
		call.Args = positional[n:]
	}

	for k, v := range merged {
		if sig.Keywords || sig.declaredAfter(k, n) {
			call.Named[k] = v
		}
	}

	for _, p := range sig.Params {
		if p.Optional {
			continue
		}
		if _, ok := call.Named[p.Name]; !ok {
			return fail("missing required argument %q", p.Name)
		}
	}
	return call, nil
}
