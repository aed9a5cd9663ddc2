package protocol

import (
	"fmt"
	"strings"
)

// Codec translates between wire frames and typed messages. A connection uses
// exactly one Codec for its lifetime.
//
// Decode is pure: it performs no I/O and keeps no state between calls, so a
// single Codec value may be shared by any number of connections.
type Codec interface {
	// Name returns the configuration name of the codec.
	Name() string

	// Decode turns one text frame into an Event, or returns a *DecodeError.
	Decode(frame []byte) (Event, error)

	// EncodeEvent is the producer-side inverse of Decode.
	EncodeEvent(ev Event) ([]byte, error)

	// EncodeControl serializes a control message for the producer.
	EncodeControl(c Control) ([]byte, error)
}

// Codec names accepted by CodecByName.
const (
	CodecTagged = "tagged"
	CodecJSON   = "json"
)

// DefaultCodec is the codec used when none is configured.
var DefaultCodec Codec = TaggedCodec{}

// CodecByName returns the codec registered under name. The empty name selects
// DefaultCodec.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultCodec, nil
	case CodecTagged:
		return TaggedCodec{}, nil
	case CodecJSON:
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
