// Package dispatch is an in-process signal dispatcher.
//
// Receivers subscribe to (signal, sender) pairs on a Registry and are invoked
// synchronously, on the caller's goroutine, when a matching signal is sent.
// The registry does not keep receivers or senders alive: a receiver connected
// weakly (the default) and a sender wrapped with Weak are removed from the
// registry automatically once the garbage collector reclaims them.
//
// Two sentinels act as wildcards. A receiver connected to All receives every
// signal from its sender, and a receiver connected to the sender Any receives
// the signal from every sender. Send and SendRobust deliver to the union of
// the four matching lists, in this order and without duplicates:
//
//	(sender, signal), (sender, All), (Any, signal), (Any, All)
//
// SendExact delivers to the (sender, signal) list only.
//
// Receivers declare the arguments they accept with a Signature. Arguments
// given at connect time are prepended to those given at send time, and the
// binder filters what a receiver did not declare, so senders can pass more
// information than any single receiver needs.
//
// Plugins installed on a registry can veto a receiver's liveness and wrap its
// invocation, for example to run it on a dedicated goroutine.
//
// The package-level functions operate on a process-wide default registry.
package dispatch
