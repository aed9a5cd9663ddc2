package protocol

import (
	"errors"
	"fmt"
)

// Decode errors. A *DecodeError matches one of these with errors.Is.
var (
	ErrInvalidData      = errors.New("protocol: invalid data")
	ErrUnsupportedFrame = errors.New("protocol: unsupported frame, only text frames are supported")
	ErrUnknownCodec     = errors.New("protocol: unknown codec")
	ErrUnknownControl   = errors.New("protocol: unknown control message")
)

// DecodeErrorKind classifies a DecodeError.
type DecodeErrorKind uint8

const (
	InvalidData      DecodeErrorKind = 0x01 // Malformed or too-short frame
	UnsupportedFrame DecodeErrorKind = 0x02 // Non-text application frame
)

// String returns the string representation of the decode error kind.
func (k DecodeErrorKind) String() string {
	switch k {
	case InvalidData:
		return "InvalidData"
	case UnsupportedFrame:
		return "UnsupportedFrame"
	default:
		return "Unknown"
	}
}

// DecodeError reports a frame that could not be turned into an Event.
// It never ends the connection it was read from.
type DecodeError struct {
	Kind   DecodeErrorKind
	Reason string // Short description of what was wrong
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	base := e.sentinel().Error()
	if e.Reason == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, e.Reason)
}

// Unwrap returns the matching sentinel for errors.Is.
func (e *DecodeError) Unwrap() error {
	return e.sentinel()
}

func (e *DecodeError) sentinel() error {
	if e.Kind == UnsupportedFrame {
		return ErrUnsupportedFrame
	}
	return ErrInvalidData
}

func invalidData(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: InvalidData, Reason: fmt.Sprintf(format, args...)}
}

// NewUnsupportedFrame returns the error for a non-text frame of the given
// transport message type.
func NewUnsupportedFrame(messageType string) *DecodeError {
	return &DecodeError{Kind: UnsupportedFrame, Reason: messageType}
}
