package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Discriminant keys of the structured grammar.
const (
	KeyTrackChanged           = "TrackChanged"
	KeyStateChanged           = "StateChanged"
	KeyProgressChanged        = "ProgressChanged"
	KeyProgressUpdateInterval = "ProgressUpdateInterval"
)

// JSONCodec implements the structured grammar: every frame is a JSON object
// with exactly one key naming the variant.
//
//	{"TrackChanged": {"uid": "...", "state": 2, "duration_ms": 180000, ...}}
//	{"StateChanged": 1}
//	{"ProgressChanged": 0.25}
//	{"ProgressUpdateInterval": 1000}   (outbound)
type JSONCodec struct{}

// trackJSON is the wire shape of TrackInfo.
type trackJSON struct {
	UID           string   `json:"uid"`
	URI           string   `json:"uri"`
	State         int64    `json:"state"`
	DurationMs    int64    `json:"duration_ms"`
	Title         string   `json:"title"`
	Album         string   `json:"album"`
	Artist        []string `json:"artist"`
	CoverURL      *string  `json:"cover_url"`
	BackgroundURL *string  `json:"background_url"`
}

// Name implements Codec.
func (JSONCodec) Name() string { return CodecJSON }

// Decode implements Codec.
func (JSONCodec) Decode(frame []byte) (Event, error) {
	key, payload, err := splitObject(frame)
	if err != nil {
		return nil, err
	}

	switch key {
	case KeyTrackChanged:
		var t trackJSON
		if err := decodePayload(payload, &t); err != nil {
			return nil, invalidData("%s: %v", key, err)
		}
		return TrackChanged{Track: TrackInfo{
			UID:           t.UID,
			URI:           t.URI,
			State:         StateFromCode(t.State),
			Duration:      millisDuration(t.DurationMs),
			Title:         t.Title,
			Album:         t.Album,
			Artists:       t.Artist,
			CoverURL:      t.CoverURL,
			BackgroundURL: t.BackgroundURL,
		}}, nil

	case KeyStateChanged:
		var code int64
		if err := decodePayload(payload, &code); err != nil {
			return nil, invalidData("%s: %v", key, err)
		}
		return StateChanged{State: StateFromCode(code)}, nil

	case KeyProgressChanged:
		var fraction float64
		if err := decodePayload(payload, &fraction); err != nil {
			return nil, invalidData("%s: %v", key, err)
		}
		return ProgressChanged{Fraction: fraction}, nil

	default:
		return nil, invalidData("unknown message kind %q", key)
	}
}

// EncodeEvent implements Codec.
func (JSONCodec) EncodeEvent(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case TrackChanged:
		t := e.Track
		artists := t.Artists
		if artists == nil {
			artists = []string{}
		}
		return json.Marshal(map[string]trackJSON{KeyTrackChanged: {
			UID:           t.UID,
			URI:           t.URI,
			State:         int64(t.State.Code()),
			DurationMs:    t.Duration.Milliseconds(),
			Title:         t.Title,
			Album:         t.Album,
			Artist:        artists,
			CoverURL:      t.CoverURL,
			BackgroundURL: t.BackgroundURL,
		}})

	case StateChanged:
		return json.Marshal(map[string]int{KeyStateChanged: e.State.Code()})

	case ProgressChanged:
		return json.Marshal(map[string]float64{KeyProgressChanged: e.Fraction})

	default:
		return nil, fmt.Errorf("protocol: cannot encode event %T", ev)
	}
}

// EncodeControl implements Codec.
func (JSONCodec) EncodeControl(c Control) ([]byte, error) {
	switch m := c.(type) {
	case SetProgressInterval:
		return json.Marshal(map[string]int64{KeyProgressUpdateInterval: m.Millis()})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownControl, c)
	}
}

// DecodeControl parses an outbound control frame. It is used by producers
// and tests; the receiver never reads control frames.
func (JSONCodec) DecodeControl(frame []byte) (Control, error) {
	key, payload, err := splitObject(frame)
	if err != nil {
		return nil, err
	}
	if key != KeyProgressUpdateInterval {
		return nil, invalidData("unknown control message %q", key)
	}
	var ms int64
	if err := decodePayload(payload, &ms); err != nil {
		return nil, invalidData("%s: %v", key, err)
	}
	return SetProgressInterval{Interval: millisDuration(ms)}, nil
}

// splitObject returns the single key of a JSON object and its raw value.
func splitObject(frame []byte) (string, json.RawMessage, error) {
	if len(bytes.TrimSpace(frame)) == 0 {
		return "", nil, invalidData("empty frame")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(frame, &obj); err != nil {
		return "", nil, invalidData("malformed object: %v", err)
	}
	if len(obj) != 1 {
		return "", nil, invalidData("expected exactly one key, got %d", len(obj))
	}
	for key, payload := range obj {
		return key, payload, nil
	}
	return "", nil, invalidData("empty object")
}

var errNullPayload = errors.New("null payload")

// decodePayload decodes a variant payload. JSON null is rejected; unknown
// object fields are ignored.
func decodePayload(data json.RawMessage, v any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullPayload
	}
	return json.Unmarshal(data, v)
}
