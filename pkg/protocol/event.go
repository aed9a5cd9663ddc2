package protocol

// EventKind identifies the variant of an Event.
type EventKind uint8

const (
	KindTrackChanged    EventKind = 0x01 // TRACK_CHANGED / TrackChanged
	KindStateChanged    EventKind = 0x02 // STATE_CHANGED / StateChanged
	KindProgressChanged EventKind = 0x03 // PROGRESS_CHANGED / ProgressChanged
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case KindTrackChanged:
		return "TrackChanged"
	case KindStateChanged:
		return "StateChanged"
	case KindProgressChanged:
		return "ProgressChanged"
	default:
		return "Unknown"
	}
}

// Event is a decoded producer message. The implementations in this package
// (TrackChanged, StateChanged, ProgressChanged) are the only ones.
type Event interface {
	Kind() EventKind
	isEvent()
}

// TrackChanged is sent when the player loads a different track.
type TrackChanged struct {
	Track TrackInfo
}

// StateChanged is sent when the player starts, pauses or stops. It is not sent
// alongside a track change.
type StateChanged struct {
	State PlaybackState
}

// ProgressChanged is sent periodically while playing. Fraction is the
// position within the track, nominally in [0,1]; it is passed through as
// received and never clamped.
type ProgressChanged struct {
	Fraction float64
}

func (TrackChanged) Kind() EventKind    { return KindTrackChanged }
func (StateChanged) Kind() EventKind    { return KindStateChanged }
func (ProgressChanged) Kind() EventKind { return KindProgressChanged }

func (TrackChanged) isEvent()    {}
func (StateChanged) isEvent()    {}
func (ProgressChanged) isEvent() {}
