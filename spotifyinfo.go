// Package spotifyinfo receives "now playing" telemetry from the Spotify player
// extension over a loopback WebSocket.
//
// Bind a receiver, then consume it either as a blocking stream of events:
//
//	rx, err := spotifyinfo.BindDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stream := rx.Listen()
//	defer stream.Close()
//
//	for ev, err := range stream.Events() {
//	    if err != nil {
//	        continue
//	    }
//	    if tc, ok := ev.(spotifyinfo.TrackChanged); ok {
//	        fmt.Println(tc.Track.Title, "by", tc.Track.Artist())
//	    }
//	}
//
// or as a snapshot kept current in the background:
//
//	handle := spotifyinfo.NewHandle()
//	w := rx.Watch(handle)
//	defer w.Stop()
//
//	if track, ok := handle.Get(); ok {
//	    fmt.Println(track.Title, track.State)
//	}
//
// Both forms reconnect transparently when the player restarts.
package spotifyinfo

import (
	"net"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
	"github.com/Ricky12Awesome/spotify-info/pkg/source"
)

// Re-exported types.
type (
	TrackInfo       = protocol.TrackInfo
	PlaybackState   = protocol.PlaybackState
	Event           = protocol.Event
	TrackChanged    = protocol.TrackChanged
	StateChanged    = protocol.StateChanged
	ProgressChanged = protocol.ProgressChanged
	Codec           = protocol.Codec

	ServerConfig = server.ServerConfig

	Handle  = source.Handle
	Stream  = source.Stream
	Watcher = source.Watcher
	Token   = source.Token
	Option  = source.Option
)

// Playback states.
const (
	Stopped = protocol.Stopped
	Paused  = protocol.Paused
	Playing = protocol.Playing
)

// DefaultPort is the port the player extension connects to.
const DefaultPort = server.DefaultPort

// Receiver is a bound listener waiting for the player extension. Use Listen
// or Watch to consume it; either one takes ownership of the receiver.
type Receiver struct {
	listener *server.Listener
}

// BindDefault binds the loopback interface on DefaultPort.
func BindDefault() (*Receiver, error) {
	return BindConfig(server.DefaultServerConfig())
}

// BindLocal binds the loopback interface on port.
func BindLocal(port int) (*Receiver, error) {
	return BindConfig(server.DefaultServerConfig().WithPort(port))
}

// Bind binds addr, e.g. "127.0.0.1:19532".
func Bind(addr string) (*Receiver, error) {
	return BindConfig(server.DefaultServerConfig().WithAddress(addr))
}

// BindConfig binds with a full server configuration.
func BindConfig(cfg *ServerConfig) (*Receiver, error) {
	l, err := server.Bind(cfg)
	if err != nil {
		return nil, err
	}
	return &Receiver{listener: l}, nil
}

// Addr returns the bound address.
func (r *Receiver) Addr() net.Addr {
	return r.listener.Addr()
}

// Listener returns the underlying listener.
func (r *Receiver) Listener() *server.Listener {
	return r.listener
}

// Listen returns a blocking event stream over the receiver.
func (r *Receiver) Listen(opts ...Option) *Stream {
	return source.NewStream(r.listener, opts...)
}

// Watch starts a background watcher that keeps handle current and returns it.
func (r *Receiver) Watch(handle Handle, opts ...Option) *Watcher {
	w := source.NewWatcher(r.listener, handle, opts...)
	w.Start()
	return w
}

// Close releases the receiver without consuming it.
func (r *Receiver) Close() error {
	return r.listener.Close()
}

// NewHandle returns an empty snapshot handle.
func NewHandle() Handle {
	return source.NewHandle()
}

// NewToken returns an armed cancellation token, for use with WithToken.
func NewToken() *Token {
	return source.NewToken()
}

// WithToken drives a stream or watcher with token.
func WithToken(token *Token) Option {
	return source.WithToken(token)
}
