package dispatch

import "weak"

// ref is how one connection holds its receiver.
//
// A strong ref keeps the receiver, and the object of a method receiver,
// reachable. A weak ref to a function receiver holds a weak pointer to the
// handle. A weak ref to a method receiver keeps the handle, which itself only
// holds its object weakly.
type ref struct {
	id     any
	strong *Receiver
	weak   weak.Pointer[Receiver]
	pin    any
}

func newRef(r *Receiver, weakly bool) ref {
	switch {
	case !weakly:
		return ref{id: r.id, strong: r, pin: r.Target()}
	case r.resolve != nil:
		return ref{id: r.id, strong: r}
	default:
		return ref{id: r.id, weak: weak.Make(r)}
	}
}

// get returns the receiver if it can still be invoked.
func (h ref) get() *Receiver {
	r := h.strong
	if r == nil {
		r = h.weak.Value()
	}
	if r == nil || !r.Alive() {
		return nil
	}
	return r
}

func (h ref) isWeak() bool {
	return h.strong == nil || (h.pin == nil && h.strong.resolve != nil)
}
