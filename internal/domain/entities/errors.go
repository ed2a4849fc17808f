package entities

import "errors"

var (
	// ErrNoReceiver is returned when a message is sent and nothing listens on
	// the other side of the channel.
	ErrNoReceiver = errors.New("no receiver attached to the message channel")

	// ErrRegistryLookup wraps every failure of a latest-version lookup.
	ErrRegistryLookup = errors.New("registry lookup failed")

	// ErrUnknownAction is returned for messages whose action is not recognised.
	ErrUnknownAction = errors.New("unknown message action")

	// ErrInvalidPackageName is returned when a lookup is requested for a name
	// outside the npm grammar.
	ErrInvalidPackageName = errors.New("invalid package name")

	// ErrSessionClosed is returned by page session operations after Close.
	ErrSessionClosed = errors.New("page session closed")
)
