package protocol

import "time"

// ControlType identifies the type of control message sent to the producer.
type ControlType uint8

const (
	ControlSetProgressInterval ControlType = 0x01 // Request a new progress update interval
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlSetProgressInterval:
		return "SetProgressInterval"
	default:
		return "Unknown"
	}
}

// Control is a message sent back to the producer.
type Control interface {
	ControlType() ControlType
}

// SetProgressInterval asks the producer to send ProgressChanged events at the
// given interval. The interval travels in whole milliseconds.
type SetProgressInterval struct {
	Interval time.Duration
}

// ControlType implements Control.
func (SetProgressInterval) ControlType() ControlType { return ControlSetProgressInterval }

// Millis returns the interval in milliseconds as sent on the wire.
func (c SetProgressInterval) Millis() int64 {
	return c.Interval.Milliseconds()
}
