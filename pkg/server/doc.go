// Package server accepts the player extension's WebSocket connection and
// exposes it as a typed receive/send surface.
//
// # Listener
//
// A Listener owns one bound TCP socket, loopback port 19532 by default. Each
// AcceptOnce call performs exactly one WebSocket upgrade and returns the
// resulting Connection. Failed upgrades (*HandshakeError) and socket errors
// (*TransportError) never end the Listener; the caller simply calls
// AcceptOnce again. Only Close does.
//
//	l, err := server.Bind(server.DefaultServerConfig())
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	for {
//	    conn, err := l.AcceptOnce(ctx)
//	    if err != nil {
//	        if server.IsListenerClosed(err) {
//	            return err
//	        }
//	        continue
//	    }
//	    for {
//	        ev, err := conn.ReceiveNext()
//	        if errors.Is(err, server.ErrConnectionClosed) {
//	            break // accept the next producer
//	        }
//	        ...
//	    }
//	}
//
// Most callers use pkg/source instead of driving this loop by hand.
//
// # Connection
//
// ReceiveNext decodes text frames with the configured protocol.Codec. Binary
// frames are reported as protocol.ErrUnsupportedFrame and malformed text as
// protocol.ErrInvalidData; both leave the connection open. A close frame or
// EOF returns ErrConnectionClosed. SendControl writes a control message back
// to the producer, such as a progress interval request.
//
// # Observability
//
// Listener and Connection log through log/slog with a "component" attribute,
// report to an optional metrics.Collector, and open OpenTelemetry spans for
// each accept and for the lifetime of each connection.
package server
