package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Tagged positional grammar.
//
//	TRACK_CHANGED;uid;uri;state;duration_ms;title;album;artist;cover;background
//	STATE_CHANGED;state
//	PROGRESS_CHANGED;fraction
//	SET_PROGRESS_INTERVAL;milliseconds   (outbound)
const (
	// Delimiter separates fields in a tagged frame.
	Delimiter = ";"

	// EscapedDelimiter stands in for a literal Delimiter inside free-text
	// fields (title, album, artist).
	EscapedDelimiter = "{SEMICOLON}"

	// NoValue is the sentinel for an absent cover or background URL.
	NoValue = "NONE"

	TagTrackChanged        = "TRACK_CHANGED"
	TagStateChanged        = "STATE_CHANGED"
	TagProgressChanged     = "PROGRESS_CHANGED"
	TagSetProgressInterval = "SET_PROGRESS_INTERVAL"
)

// trackFields is the minimum number of fields after TRACK_CHANGED.
const trackFields = 9

const maxMillis = uint64(math.MaxInt64 / int64(time.Millisecond))

// TaggedCodec implements the tagged positional grammar.
//
// Numeric fields are lenient: a value that does not parse becomes zero rather
// than rejecting the frame.
type TaggedCodec struct{}

// Name implements Codec.
func (TaggedCodec) Name() string { return CodecTagged }

// Decode implements Codec.
func (TaggedCodec) Decode(frame []byte) (Event, error) {
	if len(frame) == 0 {
		return nil, invalidData("empty frame")
	}

	fields := strings.Split(string(frame), Delimiter)
	tag, fields := fields[0], fields[1:]

	switch tag {
	case TagTrackChanged:
		if len(fields) < trackFields {
			return nil, invalidData("%s needs %d fields, got %d", tag, trackFields, len(fields))
		}
		return TrackChanged{Track: parseTrack(fields)}, nil

	case TagStateChanged:
		if len(fields) < 1 {
			return nil, invalidData("%s needs a state field", tag)
		}
		return StateChanged{State: StateFromCode(parseInt(fields[0]))}, nil

	case TagProgressChanged:
		if len(fields) < 1 {
			return nil, invalidData("%s needs a fraction field", tag)
		}
		return ProgressChanged{Fraction: parseFloat(fields[0])}, nil

	default:
		return nil, invalidData("unknown message kind %q", tag)
	}
}

func parseTrack(f []string) TrackInfo {
	return TrackInfo{
		UID:           f[0],
		URI:           f[1],
		State:         StateFromCode(parseInt(f[2])),
		Duration:      parseMillis(f[3]),
		Title:         unescapeText(f[4]),
		Album:         unescapeText(f[5]),
		Artists:       []string{unescapeText(f[6])},
		CoverURL:      parseOptional(f[7]),
		BackgroundURL: parseOptional(f[8]),
	}
}

// EncodeEvent implements Codec.
func (TaggedCodec) EncodeEvent(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case TrackChanged:
		t := e.Track
		return []byte(strings.Join([]string{
			TagTrackChanged,
			t.UID,
			t.URI,
			strconv.Itoa(t.State.Code()),
			strconv.FormatInt(t.Duration.Milliseconds(), 10),
			escapeText(t.Title),
			escapeText(t.Album),
			escapeText(t.Artist()),
			formatOptional(t.CoverURL),
			formatOptional(t.BackgroundURL),
		}, Delimiter)), nil

	case StateChanged:
		return []byte(TagStateChanged + Delimiter + strconv.Itoa(e.State.Code())), nil

	case ProgressChanged:
		return []byte(TagProgressChanged + Delimiter + strconv.FormatFloat(e.Fraction, 'g', -1, 64)), nil

	default:
		return nil, fmt.Errorf("protocol: cannot encode event %T", ev)
	}
}

// EncodeControl implements Codec.
func (TaggedCodec) EncodeControl(c Control) ([]byte, error) {
	switch m := c.(type) {
	case SetProgressInterval:
		return []byte(TagSetProgressInterval + Delimiter + strconv.FormatInt(m.Millis(), 10)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownControl, c)
	}
}

// DecodeControl parses an outbound control frame. It is used by producers
// and tests; the receiver never reads control frames.
func (TaggedCodec) DecodeControl(frame []byte) (Control, error) {
	tag, value, ok := strings.Cut(string(frame), Delimiter)
	if !ok || tag != TagSetProgressInterval {
		return nil, invalidData("unknown control frame %q", frame)
	}
	return SetProgressInterval{Interval: parseMillis(value)}, nil
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseMillis reads a non-negative millisecond count. Negative, malformed and
// overflowing values are zero.
func parseMillis(s string) time.Duration {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > maxMillis {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// millisDuration converts a decoded millisecond count. Negative and
// overflowing values are zero.
func millisDuration(ms int64) time.Duration {
	if ms < 0 || uint64(ms) > maxMillis {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseOptional(s string) *string {
	if s == "" || s == NoValue {
		return nil
	}
	return &s
}

func formatOptional(s *string) string {
	if s == nil || *s == "" {
		return NoValue
	}
	return *s
}

func unescapeText(s string) string {
	return strings.ReplaceAll(s, EscapedDelimiter, Delimiter)
}

func escapeText(s string) string {
	return strings.ReplaceAll(s, Delimiter, EscapedDelimiter)
}
