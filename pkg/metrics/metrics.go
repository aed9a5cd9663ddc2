package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collector.
type Config struct {
	// Namespace is the metrics namespace (default: "spotify_info").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "spotify_info",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the receiver's Prometheus metrics.
//
// All Record methods are safe on a nil *Collector, so components can take an
// optional collector without checking it.
type Collector struct {
	connectionsTotal prometheus.Counter
	activeConnection prometheus.Gauge
	acceptErrors     *prometheus.CounterVec
	framesReceived   *prometheus.CounterVec
	decodeErrors     *prometheus.CounterVec
	controlsSent     *prometheus.CounterVec
	reconnectsTotal  prometheus.Counter
	snapshotUpdates  prometheus.Counter
}

// New creates and registers a Collector.
//
// Metrics:
//   - spotify_info_connections_total: producer connections accepted
//   - spotify_info_active_connection: 1 while a producer is connected
//   - spotify_info_accept_errors_total: failed accepts by type (transport, handshake)
//   - spotify_info_frames_received_total: decoded frames by event kind
//   - spotify_info_decode_errors_total: rejected frames by decode error kind
//   - spotify_info_controls_sent_total: control messages sent by type and status
//   - spotify_info_reconnects_total: connections accepted after a previous one ended
//   - spotify_info_snapshot_updates_total: snapshot handle overwrites
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections_total",
			Help:        "Total number of producer connections accepted",
			ConstLabels: config.ConstLabels,
		}),

		activeConnection: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connection",
			Help:        "Whether a producer is currently connected",
			ConstLabels: config.ConstLabels,
		}),

		acceptErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "accept_errors_total",
			Help:        "Total failed accepts by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_received_total",
			Help:        "Total decoded frames by event kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_errors_total",
			Help:        "Total frames rejected by the decoder",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		controlsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "controls_sent_total",
			Help:        "Total control messages sent to the producer",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		reconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconnects_total",
			Help:        "Total connections accepted after a previous connection ended",
			ConstLabels: config.ConstLabels,
		}),

		snapshotUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "snapshot_updates_total",
			Help:        "Total overwrites of the shared track snapshot",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordConnectionOpen records an accepted producer connection.
func (c *Collector) RecordConnectionOpen() {
	if c == nil {
		return
	}
	c.connectionsTotal.Inc()
	c.activeConnection.Set(1)
}

// RecordConnectionClose records the end of the live producer connection.
func (c *Collector) RecordConnectionClose() {
	if c == nil {
		return
	}
	c.activeConnection.Set(0)
}

// RecordAcceptError records a failed accept. errorType is "transport" or
// "handshake".
func (c *Collector) RecordAcceptError(errorType string) {
	if c == nil {
		return
	}
	c.acceptErrors.WithLabelValues(errorType).Inc()
}

// RecordFrame records a successfully decoded frame.
func (c *Collector) RecordFrame(kind string) {
	if c == nil {
		return
	}
	c.framesReceived.WithLabelValues(kind).Inc()
}

// RecordDecodeError records a rejected frame.
func (c *Collector) RecordDecodeError(kind string) {
	if c == nil {
		return
	}
	c.decodeErrors.WithLabelValues(kind).Inc()
}

// RecordControl records a control message send attempt.
func (c *Collector) RecordControl(controlType string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.controlsSent.WithLabelValues(controlType, status).Inc()
}

// RecordReconnect records a connection that replaced an earlier one.
func (c *Collector) RecordReconnect() {
	if c == nil {
		return
	}
	c.reconnectsTotal.Inc()
}

// RecordSnapshotUpdate records an overwrite of the shared snapshot.
func (c *Collector) RecordSnapshotUpdate() {
	if c == nil {
		return
	}
	c.snapshotUpdates.Inc()
}
