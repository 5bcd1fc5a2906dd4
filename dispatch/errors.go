package dispatch

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrNilSignal is returned when nil is used as a signal.
	ErrNilSignal = errors.New("signal cannot be nil")

	// ErrUncomparable is returned when a signal or sender cannot be used as a
	// map key.
	ErrUncomparable = errors.New("value is not comparable")

	// ErrNilReceiver is returned when a nil receiver is connected or disconnected.
	ErrNilReceiver = errors.New("receiver cannot be nil")

	// ErrNotConnected is returned by Disconnect for an unknown connection.
	ErrNotConnected = errors.New("no such connection")

	// ErrCollected is returned by Connect for a receiver or sender whose
	// object has already been collected.
	ErrCollected = errors.New("object has been collected")

	// ErrPluginNotInstalled is returned by RemovePlugin for an unknown plugin.
	ErrPluginNotInstalled = errors.New("plugin is not installed")
)

// ConfigError reports an invalid argument to a registry operation. The
// registry is left unchanged.
type ConfigError struct {
	Op     string
	Signal Signal
	Sender any
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dispatch: %s: %v (signal=%v, sender=%v)", e.Op, e.Err, e.Signal, e.Sender)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LookupError reports a disconnect for a connection that does not exist.
type LookupError struct {
	Signal   Signal
	Sender   any
	Receiver string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("dispatch: disconnect %s: %v (signal=%v, sender=%v)", e.Receiver, e.Err, e.Signal, e.Sender)
}

func (e *LookupError) Unwrap() error { return e.Err }

// ReceiverError wraps the failure of a receiver invoked by Send or SendExact.
type ReceiverError struct {
	Receiver *Receiver
	Err      error
}

func (e *ReceiverError) Error() string {
	return fmt.Sprintf("dispatch: receiver %s failed: %v", e.Receiver, e.Err)
}

func (e *ReceiverError) Unwrap() error { return e.Err }

// BindError reports that the arguments of a send could not be bound to a
// receiver's signature.
type BindError struct {
	Receiver string
	Reason   string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("dispatch: cannot bind arguments for %s: %s", e.Receiver, e.Reason)
}

// PanicError is a panic recovered from a receiver by SendRobust.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("receiver panicked: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsLookupError reports whether err is or wraps a *LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
