package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for listener and connection conditions.
var (
	// ErrConnectionClosed is returned when the producer closed the connection,
	// the socket reached EOF, or the connection was closed locally.
	ErrConnectionClosed = errors.New("server: connection closed")

	// ErrListenerClosed is wrapped by the TransportError returned from
	// AcceptOnce after the listener has been closed.
	ErrListenerClosed = errors.New("server: listener closed")
)

// TransportError reports a socket-level failure: bind, accept, read or write.
//
// A TransportError from AcceptOnce leaves the listener usable unless it wraps
// ErrListenerClosed. A TransportError from a Connection ends that connection.
type TransportError struct {
	Op  string // "bind", "accept", "read" or "write"
	Err error  // Underlying error
}

// Error returns the error message with the failed operation.
func (e *TransportError) Error() string {
	return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HandshakeError reports an inbound request that did not complete the
// WebSocket upgrade. Only the attempted connection is affected.
type HandshakeError struct {
	RemoteAddr string
	Err        error
}

// Error returns the error message.
func (e *HandshakeError) Error() string {
	if e.RemoteAddr == "" {
		return fmt.Sprintf("server: handshake: %v", e.Err)
	}
	return fmt.Sprintf("server: handshake from %s: %v", e.RemoteAddr, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// IsListenerClosed reports whether err means the listener can no longer accept.
func IsListenerClosed(err error) bool {
	return errors.Is(err, ErrListenerClosed)
}
