package source

import (
	"log/slog"
	"time"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

type options struct {
	token            *Token
	progressInterval time.Duration
	logger           *slog.Logger

	// Watcher callbacks.
	onEvent       func(protocol.Event)
	onTrackChange func(protocol.TrackInfo)
	onError       func(error)
}

// Option configures a Stream or Watcher.
type Option func(*options)

// WithToken drives the loop with an existing Token instead of a fresh one.
func WithToken(token *Token) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithProgressInterval overrides the listener's configured progress interval
// sent to each new producer. Zero or negative sends nothing.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

// WithLogger sets the logger. The default is the listener's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// OnEvent registers a Watcher callback invoked for every decoded event, after
// the snapshot has been updated. It runs on the watcher goroutine.
func OnEvent(fn func(protocol.Event)) Option {
	return func(o *options) {
		o.onEvent = fn
	}
}

// OnTrackChange registers a Watcher callback invoked when a TrackChanged
// event carries a different track (by UID) than the current snapshot.
func OnTrackChange(fn func(protocol.TrackInfo)) Option {
	return func(o *options) {
		o.onTrackChange = fn
	}
}

// OnError registers a Watcher callback for recoverable errors (decode,
// handshake and transport errors) and for the terminal error, if any.
func OnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func applyOptions(opts []Option) options {
	o := options{progressInterval: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.token == nil {
		o.token = NewToken()
	}
	return o
}
