package server

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the OpenTelemetry instrumentation name used by this package.
// Spans go to the global tracer provider; configure it before Bind.
const TracerName = "github.com/Ricky12Awesome/spotify-info/pkg/server"

func tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Span attribute keys.
const (
	attrConnID     = attribute.Key("spotify_info.conn.id")
	attrRemoteAddr = attribute.Key("net.peer.addr")
	attrCodec      = attribute.Key("spotify_info.codec")
	attrEventKind  = attribute.Key("spotify_info.event.kind")
)

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
