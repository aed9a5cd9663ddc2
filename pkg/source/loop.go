package source

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

// ErrStopped is returned by Next once the loop's Token has been cancelled.
var ErrStopped = errors.New("source: stopped")

// Loop is the accept/receive state machine shared by Stream and Watcher.
//
// Next must be called from one goroutine at a time. State, Close and the
// Token may be used from any goroutine.
type Loop struct {
	listener         *server.Listener
	token            *Token
	progressInterval time.Duration
	metrics          *metrics.Collector
	logger           *slog.Logger

	mu       sync.Mutex
	state    LoopState
	conn     *server.Connection
	stopWake func() bool
	accepted int
	err      error // terminal error once Closed
}

// NewLoop returns an Idle loop over l.
func NewLoop(l *server.Listener, opts ...Option) *Loop {
	o := applyOptions(opts)
	cfg := l.Config()

	interval := cfg.ProgressInterval
	if o.progressInterval >= 0 {
		interval = o.progressInterval
	}
	logger := o.logger
	if logger == nil {
		logger = cfg.Logger
	}

	return &Loop{
		listener:         l,
		token:            o.token,
		progressInterval: interval,
		metrics:          cfg.Metrics,
		logger:           logger.With("component", "source"),
		state:            Idle,
	}
}

// Token returns the loop's cancellation token.
func (lp *Loop) Token() *Token {
	return lp.token
}

// State returns the current state.
func (lp *Loop) State() LoopState {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.state
}

// Next drives the state machine until it produces one event or one error.
//
// Recoverable errors leave the loop running and the next call continues:
//   - *protocol.DecodeError: the frame was dropped, the connection stays up
//   - *server.HandshakeError: an upgrade was rejected, accepting continues
//   - *server.TransportError: the connection was lost, the next call
//     accepts a new producer
//
// A connection closed by the producer is not an error; Next accepts the next
// producer and keeps waiting. Once the Token is cancelled Next returns
// ErrStopped, and once the listener is closed it returns the listener's
// error. Both are terminal: State reports Closed and every later call
// returns the same error.
func (lp *Loop) Next() (protocol.Event, error) {
	for {
		// Cancellation is observed here, before each accept and each receive.
		if err := lp.checkStop(); err != nil {
			return nil, err
		}

		conn := lp.current()
		if conn == nil {
			if err := lp.accept(); err != nil {
				if lp.token.Requested() {
					continue
				}
				if server.IsListenerClosed(err) {
					return nil, lp.finish(err)
				}
				lp.logger.Debug("accept failed", "error", err)
				return nil, err
			}
			continue
		}

		ev, err := conn.ReceiveNext()
		if err == nil {
			return ev, nil
		}

		var de *protocol.DecodeError
		if errors.As(err, &de) {
			return nil, err
		}

		lp.detach(conn)
		if errors.Is(err, server.ErrConnectionClosed) || lp.token.Requested() {
			continue
		}
		return nil, err
	}
}

func (lp *Loop) checkStop() error {
	lp.mu.Lock()
	closed, err := lp.state == Closed, lp.err
	lp.mu.Unlock()
	if closed {
		return err
	}
	if lp.token.Requested() {
		return lp.finish(ErrStopped)
	}
	return nil
}

func (lp *Loop) current() *server.Connection {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.conn
}

func (lp *Loop) accept() error {
	lp.setState(Accepting)

	conn, err := lp.listener.AcceptOnce(lp.token.Context())
	if err != nil {
		return err
	}

	lp.mu.Lock()
	lp.conn = conn
	lp.state = Connected
	// Cancelling the token closes the socket so a blocked ReceiveNext returns.
	lp.stopWake = context.AfterFunc(lp.token.Context(), func() {
		_ = conn.Close()
	})
	reconnect := lp.accepted > 0
	lp.accepted++
	lp.mu.Unlock()

	if reconnect {
		lp.metrics.RecordReconnect()
	}

	if lp.progressInterval > 0 {
		msg := protocol.SetProgressInterval{Interval: lp.progressInterval}
		if err := conn.SendControl(msg); err != nil {
			// SendControl closed the connection; the next receive reports it.
			lp.logger.Warn("progress interval not sent", "conn", conn.ID(), "error", err)
		}
	}
	return nil
}

func (lp *Loop) detach(conn *server.Connection) {
	lp.mu.Lock()
	if lp.conn == conn {
		lp.conn = nil
		if lp.stopWake != nil {
			lp.stopWake()
			lp.stopWake = nil
		}
		if lp.state != Closed {
			lp.state = Accepting
		}
	}
	lp.mu.Unlock()
	_ = conn.Close()
}

func (lp *Loop) setState(s LoopState) {
	lp.mu.Lock()
	if lp.state != Closed {
		lp.state = s
	}
	lp.mu.Unlock()
}

// finish moves the loop to Closed with err as its terminal error.
func (lp *Loop) finish(err error) error {
	lp.mu.Lock()
	if lp.state == Closed {
		err = lp.err
		lp.mu.Unlock()
		return err
	}
	lp.state = Closed
	lp.err = err
	conn := lp.conn
	lp.conn = nil
	if lp.stopWake != nil {
		lp.stopWake()
		lp.stopWake = nil
	}
	lp.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	lp.logger.Debug("loop closed", "reason", err)
	return err
}

// Close cancels the token and closes the listener. A Next blocked in accept
// or receive returns promptly with ErrStopped.
func (lp *Loop) Close() error {
	lp.token.Cancel()
	return lp.listener.Close()
}
