package dispatch

import (
	"fmt"
	"runtime"
	"weak"
)

// WeakRef identifies a heap object without keeping it alive. WeakRefs made
// from the same pointer are equal, so a WeakRef can be used as a sender: the
// registry drops every connection made for it once the object is collected.
//
// Plain pointers used as senders are compared by identity but keep their
// object reachable for as long as a connection exists.
type WeakRef[T any] struct {
	p weak.Pointer[T]
}

// Weak returns a WeakRef for p.
func Weak[T any](p *T) WeakRef[T] {
	return WeakRef[T]{p: weak.Make(p)}
}

// Value returns the referenced object, or nil once it has been collected.
func (w WeakRef[T]) Value() *T {
	return w.p.Value()
}

func (w WeakRef[T]) String() string {
	if p := w.p.Value(); p != nil {
		return fmt.Sprintf("weak(%p)", p)
	}
	return fmt.Sprintf("weak(%T: collected)", (*T)(nil))
}

// onCollect arranges for f to run after the referenced object is collected.
// It reports false if the object is already gone.
func (w WeakRef[T]) onCollect(f func()) (runtime.Cleanup, bool) {
	p := w.p.Value()
	if p == nil {
		return runtime.Cleanup{}, false
	}
	return runtime.AddCleanup(p, runCleanup, f), true
}

// collectable is implemented by senders whose lifetime can be observed.
type collectable interface {
	onCollect(f func()) (runtime.Cleanup, bool)
}

func runCleanup(f func()) { f() }
