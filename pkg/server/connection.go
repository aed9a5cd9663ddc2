package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

// Connection is one live, upgraded producer socket.
//
// ReceiveNext must be called from a single goroutine. SendControl and Close
// may be called from any goroutine.
type Connection struct {
	id           string
	ws           *websocket.Conn
	codec        protocol.Codec
	writeTimeout time.Duration
	metrics      *metrics.Collector
	logger       *slog.Logger
	span         trace.Span

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	frames    atomic.Uint64
}

func newConnection(ws *websocket.Conn, cfg *ServerConfig) *Connection {
	id := uuid.NewString()
	ws.SetReadLimit(cfg.MaxMessageSize)

	_, span := tracer().Start(context.Background(), "spotify_info.connection",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attrConnID.String(id),
			attrRemoteAddr.String(ws.RemoteAddr().String()),
			attrCodec.String(cfg.Codec.Name()),
		),
	)

	cfg.Metrics.RecordConnectionOpen()

	c := &Connection{
		id:           id,
		ws:           ws,
		codec:        cfg.Codec,
		writeTimeout: cfg.WriteTimeout,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.With("component", "connection", "conn", id),
		span:         span,
	}
	ws.SetPingHandler(c.handlePing)
	ws.SetPongHandler(func(string) error {
		c.rejectFrame(protocol.NewUnsupportedFrame("pong"))
		return nil
	})
	return c
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string {
	return c.id
}

// RemoteAddr returns the producer's address.
func (c *Connection) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Codec returns the codec frames on this connection are decoded with.
func (c *Connection) Codec() protocol.Codec {
	return c.codec
}

// Closed reports whether the connection has been closed.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// ReceiveNext waits for the next application frame and decodes it.
//
// Returns:
//   - the decoded Event for a well-formed text frame
//   - a *protocol.DecodeError for a malformed text frame or a binary frame;
//     the connection stays open
//   - ErrConnectionClosed once the producer has closed the connection, the
//     socket reached EOF, or Close was called
//   - a *TransportError for any other read failure; the connection is closed
//     and later calls return ErrConnectionClosed
func (c *Connection) ReceiveNext() (protocol.Event, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}

	msgType, data, err := c.ws.ReadMessage()
	if err != nil {
		wasClosed := c.closed.Load()
		c.Close()
		if wasClosed || isClosedError(err) {
			return nil, ErrConnectionClosed
		}
		c.logger.Warn("read failed", "error", err)
		recordSpanError(c.span, err)
		return nil, &TransportError{Op: "read", Err: err}
	}

	if msgType != websocket.TextMessage {
		return nil, c.rejectFrame(protocol.NewUnsupportedFrame(messageTypeName(msgType)))
	}

	ev, err := c.codec.Decode(data)
	if err != nil {
		var de *protocol.DecodeError
		if errors.As(err, &de) {
			return nil, c.rejectFrame(de)
		}
		return nil, err
	}

	c.frames.Add(1)
	c.metrics.RecordFrame(ev.Kind().String())
	return ev, nil
}

func (c *Connection) rejectFrame(de *protocol.DecodeError) error {
	c.metrics.RecordDecodeError(de.Kind.String())
	c.span.AddEvent("decode_error", trace.WithAttributes(attrEventKind.String(de.Kind.String())))
	c.logger.Debug("frame rejected", "error", de)
	return de
}

// handlePing answers a producer ping like the transport's default handler
// and records it as an unsupported frame; ReceiveNext never sees it.
func (c *Connection) handlePing(data string) error {
	c.rejectFrame(protocol.NewUnsupportedFrame("ping"))
	err := c.ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(c.writeTimeout))
	if err == websocket.ErrCloseSent {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return nil
	}
	return err
}

// SendControl encodes msg with the connection's codec and writes it as a text
// frame. A write failure closes the connection and returns a *TransportError.
func (c *Connection) SendControl(msg protocol.Control) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	payload, err := c.codec.EncodeControl(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	err = c.ws.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()

	c.metrics.RecordControl(msg.ControlType().String(), err)
	if err != nil {
		c.logger.Warn("control write failed", "type", msg.ControlType().String(), "error", err)
		recordSpanError(c.span, err)
		c.Close()
		return &TransportError{Op: "write", Err: err}
	}

	c.logger.Debug("control sent", "type", msg.ControlType().String())
	return nil
}

// Close sends a normal close frame when possible and closes the socket.
// It unblocks a concurrent ReceiveNext. Close is idempotent.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		deadline := time.Now().Add(time.Second)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.ws.Close()

		c.metrics.RecordConnectionClose()
		c.span.End()
		c.logger.Info("producer disconnected", "frames", c.frames.Load())
	})
	return err
}

func isClosedError(err error) bool {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}

func messageTypeName(t int) string {
	switch t {
	case websocket.BinaryMessage:
		return "binary"
	case websocket.TextMessage:
		return "text"
	default:
		return "unknown"
	}
}
