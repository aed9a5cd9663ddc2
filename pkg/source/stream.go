package source

import (
	"errors"
	"iter"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

// Stream delivers decoded events to the goroutine that calls Next. It
// reconnects transparently when the producer goes away and ends only when
// its Token is cancelled or the listener is closed.
type Stream struct {
	loop *Loop
}

// NewStream returns a Stream over l. The Stream owns l: Close closes it.
func NewStream(l *server.Listener, opts ...Option) *Stream {
	return &Stream{loop: NewLoop(l, opts...)}
}

// Next blocks until the next event or error. See Loop.Next for the error
// contract.
func (s *Stream) Next() (protocol.Event, error) {
	return s.loop.Next()
}

// Events returns the stream as a sequence of (event, error) pairs.
//
// Recoverable errors are yielded with a nil event and the sequence continues.
// The sequence ends after a cancelled Token, or after yielding the terminal
// listener error.
//
//	for ev, err := range stream.Events() {
//	    if err != nil {
//	        log.Println(err)
//	        continue
//	    }
//	    ...
//	}
func (s *Stream) Events() iter.Seq2[protocol.Event, error] {
	return func(yield func(protocol.Event, error) bool) {
		for {
			ev, err := s.loop.Next()
			if err != nil && s.loop.State() == Closed {
				if !errors.Is(err, ErrStopped) {
					yield(nil, err)
				}
				return
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

// State returns the current loop state.
func (s *Stream) State() LoopState {
	return s.loop.State()
}

// Token returns the cancellation token driving the stream.
func (s *Stream) Token() *Token {
	return s.loop.Token()
}

// Close stops the stream and closes its listener. A blocked Next returns
// ErrStopped.
func (s *Stream) Close() error {
	return s.loop.Close()
}
