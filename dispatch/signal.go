package dispatch

import (
	"reflect"
)

// Signal identifies a category of event. Any comparable value except nil can
// be used as a signal.
type Signal = any

// sentinel is a unique identity that prints by name.
type sentinel struct {
	name string
}

func (s *sentinel) String() string { return s.name }

var (
	// All is the wildcard signal. A receiver connected to All receives every
	// signal sent by its sender.
	All Signal = &sentinel{name: "All"}

	// Any is the wildcard sender. A receiver connected to Any receives the
	// signal from every sender.
	Any any = &sentinel{name: "Any"}

	// Anonymous is the sender used when none is given.
	Anonymous any = &sentinel{name: "Anonymous"}
)

func checkSignal(signal Signal) error {
	if signal == nil {
		return ErrNilSignal
	}
	if !reflect.ValueOf(signal).Comparable() {
		return ErrUncomparable
	}
	return nil
}

func normalizeSender(sender any) any {
	if sender == nil {
		return Anonymous
	}
	return sender
}

func checkSender(sender any) error {
	if !reflect.ValueOf(sender).Comparable() {
		return ErrUncomparable
	}
	return nil
}
