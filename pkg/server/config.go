package server

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

// DefaultPort is the well-known port the player extension connects to.
const DefaultPort = 19532

// DefaultAddress is the loopback address bound when none is configured.
var DefaultAddress = LocalAddress(DefaultPort)

// LocalAddress returns the loopback address for port.
func LocalAddress(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// ServerConfig configures a Listener and the Connections it accepts.
type ServerConfig struct {
	// Address is the TCP address to bind.
	// Default: "127.0.0.1:19532".
	Address string

	// Path is the HTTP path the WebSocket upgrade is served on.
	// Requests to any other path get 404.
	// Default: "/".
	Path string

	// Codec decodes inbound frames and encodes control messages.
	// Default: protocol.DefaultCodec (tagged).
	Codec protocol.Codec

	// ProgressInterval, when positive, is sent to every new producer as a
	// SetProgressInterval control message.
	// Default: 0 (producer default).
	ProgressInterval time.Duration

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// MaxMessageSize is the largest frame accepted from the producer.
	// Larger frames end the connection with a TransportError.
	// Default: 64KB.
	MaxMessageSize int64

	// WriteTimeout bounds each control message write.
	// Default: 5s.
	WriteTimeout time.Duration

	// HandshakeTimeout bounds the HTTP upgrade, including reading headers.
	// Default: 10s.
	HandshakeTimeout time.Duration

	// CheckOrigin validates the Origin header of the upgrade request.
	// The player extension runs under its own origin, so the default
	// accepts any origin.
	// Default: AllowAnyOrigin.
	CheckOrigin func(r *http.Request) bool

	// Metrics receives connection and frame metrics. Nil disables metrics.
	Metrics *metrics.Collector

	// Logger is the base logger. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:          DefaultAddress,
		Path:             "/",
		Codec:            protocol.DefaultCodec,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		MaxMessageSize:   64 * 1024,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      AllowAnyOrigin,
	}
}

// AllowAnyOrigin accepts every upgrade request regardless of Origin.
func AllowAnyOrigin(*http.Request) bool {
	return true
}

// Clone returns a copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// WithAddress sets the bind address and returns the config for chaining.
func (c *ServerConfig) WithAddress(addr string) *ServerConfig {
	c.Address = addr
	return c
}

// WithPort binds the loopback interface on port and returns the config for chaining.
func (c *ServerConfig) WithPort(port int) *ServerConfig {
	c.Address = LocalAddress(port)
	return c
}

// WithCodec sets the wire codec and returns the config for chaining.
func (c *ServerConfig) WithCodec(codec protocol.Codec) *ServerConfig {
	c.Codec = codec
	return c
}

// WithProgressInterval sets the interval requested from each new producer
// and returns the config for chaining.
func (c *ServerConfig) WithProgressInterval(d time.Duration) *ServerConfig {
	c.ProgressInterval = d
	return c
}

// WithMetrics sets the metrics collector and returns the config for chaining.
func (c *ServerConfig) WithMetrics(m *metrics.Collector) *ServerConfig {
	c.Metrics = m
	return c
}

// WithLogger sets the logger and returns the config for chaining.
func (c *ServerConfig) WithLogger(logger *slog.Logger) *ServerConfig {
	c.Logger = logger
	return c
}

// withDefaults returns a clone with every zero field filled from
// DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	cfg := c.Clone()
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.Codec == nil {
		cfg.Codec = defaults.Codec
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaults.ReadBufferSize
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = defaults.WriteBufferSize
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = defaults.CheckOrigin
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
