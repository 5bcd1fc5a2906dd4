package dispatch

import "iter"

var std = New()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return std }

// Connect registers recv on the default registry.
func Connect(recv *Receiver, signal Signal, sender any, opts ...ConnectOption) error {
	return std.Connect(recv, signal, sender, opts...)
}

// Disconnect removes recv from the default registry.
func Disconnect(recv *Receiver, signal Signal, sender any) error {
	return std.Disconnect(recv, signal, sender)
}

// Send dispatches signal on the default registry.
func Send(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return std.Send(signal, sender, opts...)
}

// SendExact dispatches signal on the default registry without wildcards.
func SendExact(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return std.SendExact(signal, sender, opts...)
}

// SendRobust dispatches signal on the default registry, collecting failures.
func SendRobust(signal Signal, sender any, opts ...SendOption) ([]Response, error) {
	return std.SendRobust(signal, sender, opts...)
}

// AllReceivers lists the receivers of the default registry a Send would reach.
func AllReceivers(sender any, signal Signal) iter.Seq2[*Receiver, Extra] {
	return std.AllReceivers(sender, signal)
}

// InstallPlugin adds p to the default registry.
func InstallPlugin(p Plugin) { std.InstallPlugin(p) }

// RemovePlugin removes p from the default registry.
func RemovePlugin(p Plugin) error { return std.RemovePlugin(p) }

// Reset clears the default registry.
func Reset() { std.Reset() }
