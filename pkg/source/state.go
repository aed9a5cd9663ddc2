package source

// LoopState is the state of a delivery loop.
//
//	Idle -> Accepting -> Connected -> (Accepting | Closed)
//
// Closed is terminal and reachable from every state.
type LoopState uint8

const (
	Idle LoopState = iota
	Accepting
	Connected
	Closed
)

// String returns the string representation of the state.
func (s LoopState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Accepting:
		return "Accepting"
	case Connected:
		return "Connected"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}
