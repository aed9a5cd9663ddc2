package protocol

// PlaybackState is the player state reported by the producer.
//
// The zero value is Stopped.
type PlaybackState uint8

const (
	Stopped PlaybackState = 0
	Paused  PlaybackState = 1
	Playing PlaybackState = 2
)

// StateFromCode converts a wire state code to a PlaybackState.
//
// The conversion is total: 2 is Playing, 1 is Paused, and every other value,
// including out-of-range codes, is Stopped.
func StateFromCode(code int64) PlaybackState {
	switch code {
	case 2:
		return Playing
	case 1:
		return Paused
	default:
		return Stopped
	}
}

// Code returns the wire code for the state.
func (s PlaybackState) Code() int {
	switch s {
	case Playing:
		return 2
	case Paused:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}
