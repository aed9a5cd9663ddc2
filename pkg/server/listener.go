package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Listener owns one bound TCP socket and hands out upgraded Connections, one
// per AcceptOnce call.
//
// Inbound upgrade requests are parked until a caller is waiting in
// AcceptOnce, so at most one upgrade happens per call and the design point of
// a single live producer holds even when the producer reconnects eagerly.
type Listener struct {
	config   *ServerConfig
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// slots carries one reply channel per waiting AcceptOnce call.
	slots chan chan acceptResult

	done      chan struct{}
	closeOnce sync.Once
	serveWG   sync.WaitGroup

	mu       sync.Mutex
	closeErr error // why the listener stopped accepting
}

type acceptResult struct {
	conn *Connection
	err  error
}

// Bind binds cfg.Address and starts serving upgrade requests on cfg.Path.
// A nil cfg uses DefaultServerConfig. Failure to bind is a *TransportError
// with Op "bind".
func Bind(cfg *ServerConfig) (*Listener, error) {
	cfg = cfg.withDefaults()

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, &TransportError{Op: "bind", Err: err}
	}

	l := &Listener{
		config: cfg,
		ln:     ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			HandshakeTimeout: cfg.HandshakeTimeout,
			CheckOrigin:      cfg.CheckOrigin,
		},
		logger: cfg.Logger.With("component", "listener"),
		slots:  make(chan chan acceptResult),
		done:   make(chan struct{}),
	}

	router := chi.NewRouter()
	router.Get(cfg.Path, l.handleUpgrade)

	l.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.HandshakeTimeout,
		ErrorLog:          slog.NewLogLogger(l.logger.Handler(), slog.LevelDebug),
	}

	l.serveWG.Add(1)
	go l.serve()

	l.logger.Info("listening", "addr", ln.Addr().String(), "path", cfg.Path, "codec", cfg.Codec.Name())
	return l, nil
}

func (l *Listener) serve() {
	defer l.serveWG.Done()
	err := l.srv.Serve(l.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return
	}
	l.logger.Error("serve failed", "error", err)
	l.shutdown(err)
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Config returns the effective configuration, with defaults applied.
func (l *Listener) Config() *ServerConfig {
	return l.config
}

// AcceptOnce blocks until one inbound request completes the WebSocket upgrade
// and returns the resulting Connection.
//
// A rejected upgrade returns a *HandshakeError and a socket failure returns a
// *TransportError; neither ends the Listener. After Close, AcceptOnce returns
// a *TransportError wrapping ErrListenerClosed. Cancelling ctx returns
// ctx.Err().
func (l *Listener) AcceptOnce(ctx context.Context) (*Connection, error) {
	ctx, span := tracer().Start(ctx, "spotify_info.accept",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("net.host.addr", l.Addr().String())),
	)
	defer span.End()

	conn, err := l.acceptOnce(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attrConnID.String(conn.ID()), attrRemoteAddr.String(conn.RemoteAddr()))
	return conn, nil
}

func (l *Listener) acceptOnce(ctx context.Context) (*Connection, error) {
	select {
	case <-l.done:
		return nil, l.closedError()
	default:
	}

	reply := make(chan acceptResult, 1)
	select {
	case l.slots <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, l.closedError()
	}

	// A handler owns the slot now and always replies.
	select {
	case res := <-reply:
		if res.err != nil {
			l.recordAcceptError(res.err)
		}
		return res.conn, res.err
	case <-ctx.Done():
		go func() {
			if res := <-reply; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var reply chan acceptResult
	select {
	case reply = <-l.slots:
	case <-r.Context().Done():
		return
	case <-l.done:
		http.Error(w, "listener closed", http.StatusServiceUnavailable)
		return
	}

	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		l.logger.Debug("upgrade rejected", "remote", r.RemoteAddr, "error", err)
		reply <- acceptResult{err: &HandshakeError{RemoteAddr: r.RemoteAddr, Err: err}}
		return
	}

	conn := newConnection(ws, l.config)
	l.logger.Info("producer connected", "conn", conn.ID(), "remote", conn.RemoteAddr())
	reply <- acceptResult{conn: conn}
}

func (l *Listener) recordAcceptError(err error) {
	var he *HandshakeError
	if errors.As(err, &he) {
		l.config.Metrics.RecordAcceptError("handshake")
		return
	}
	l.config.Metrics.RecordAcceptError("transport")
}

// Close stops accepting and releases the bound socket. Subsequent AcceptOnce
// calls fail with ErrListenerClosed. A Connection already handed out stays
// open until it is closed by its owner.
func (l *Listener) Close() error {
	err := l.shutdown(nil)
	l.serveWG.Wait()
	return err
}

// Done is closed once the listener has stopped accepting.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

func (l *Listener) shutdown(cause error) error {
	var err error
	l.closeOnce.Do(func() {
		l.mu.Lock()
		if cause != nil {
			l.closeErr = errors.Join(ErrListenerClosed, cause)
		} else {
			l.closeErr = ErrListenerClosed
		}
		l.mu.Unlock()

		close(l.done)
		// Server.Close leaves hijacked WebSocket connections alone.
		err = l.srv.Close()
		l.logger.Info("listener closed", "addr", l.ln.Addr().String())
	})
	return err
}

func (l *Listener) closedError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &TransportError{Op: "accept", Err: l.closeErr}
}
