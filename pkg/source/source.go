package source

// Source is the capability shared by both delivery models: Stream, which
// hands events to its caller, and Watcher, which merges them into a Handle.
type Source interface {
	State() LoopState
	Token() *Token
	Close() error
}

var (
	_ Source = (*Stream)(nil)
	_ Source = (*Watcher)(nil)
)
