package protocol

import (
	"slices"
	"strings"
	"time"
)

// TrackInfo describes the track currently loaded in the player.
//
// A TrackInfo is treated as an immutable value: holders that need to change a
// field should Clone it first.
type TrackInfo struct {
	UID   string        // Opaque track identifier
	URI   string        // Opaque track URI
	State PlaybackState // Playback state when the track was reported
	// Duration is the track length, millisecond granularity.
	Duration time.Duration
	Title    string
	Album    string
	// Artists is ordered. The tagged grammar only ever carries one name.
	Artists []string
	// CoverURL and BackgroundURL are nil when the producer reports no art.
	CoverURL      *string
	BackgroundURL *string
}

// Clone returns a deep copy of the track.
func (t TrackInfo) Clone() TrackInfo {
	c := t
	c.Artists = slices.Clone(t.Artists)
	c.CoverURL = cloneOptional(t.CoverURL)
	c.BackgroundURL = cloneOptional(t.BackgroundURL)
	return c
}

// WithState returns a copy of the track carrying the given state.
func (t TrackInfo) WithState(state PlaybackState) TrackInfo {
	c := t.Clone()
	c.State = state
	return c
}

// Equal reports whether two tracks are structurally identical, including
// the playback state.
func (t TrackInfo) Equal(other TrackInfo) bool {
	return t.UID == other.UID &&
		t.URI == other.URI &&
		t.State == other.State &&
		t.Duration == other.Duration &&
		t.Title == other.Title &&
		t.Album == other.Album &&
		slices.Equal(t.Artists, other.Artists) &&
		optionalEqual(t.CoverURL, other.CoverURL) &&
		optionalEqual(t.BackgroundURL, other.BackgroundURL)
}

// SameTrack reports whether a and b refer to the same track. Only the UID is
// compared; state and every other field are ignored.
func SameTrack(a, b TrackInfo) bool {
	return a.UID == b.UID
}

// Artist returns the artists joined for display.
func (t TrackInfo) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// Optional returns a pointer to s, for building TrackInfo literals.
func Optional(s string) *string {
	return &s
}

func cloneOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
