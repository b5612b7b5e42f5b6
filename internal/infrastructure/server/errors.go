package server

import "errors"

// Common errors in the server package
var (
	// ErrSessionClosed is returned when attempting to use a closed session
	ErrSessionClosed = errors.New("session is closed")

	// ErrNoTransport is returned when a gateway is started without a transport
	ErrNoTransport = errors.New("no transport specified")
)
