// Package status serves the watcher's latest snapshot over HTTP.
//
// Routes:
//   - GET /track: the current track as JSON, or 204 before the first track
//   - GET /healthz: loop state
//   - GET /metrics: Prometheus metrics, when a gatherer is configured
package status

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/source"
)

// VersionHeader carries the handle version the response was built from.
const VersionHeader = "X-Snapshot-Version"

// Track is the JSON form of a snapshot.
type Track struct {
	UID           string   `json:"uid"`
	URI           string   `json:"uri"`
	State         string   `json:"state"`
	StateCode     int      `json:"state_code"`
	DurationMS    int64    `json:"duration_ms"`
	Title         string   `json:"title"`
	Album         string   `json:"album"`
	Artists       []string `json:"artists"`
	CoverURL      *string  `json:"cover_url"`
	BackgroundURL *string  `json:"background_url"`
}

// NewTrack converts a TrackInfo into its JSON form.
func NewTrack(t protocol.TrackInfo) Track {
	return Track{
		UID:           t.UID,
		URI:           t.URI,
		State:         t.State.String(),
		StateCode:     t.State.Code(),
		DurationMS:    t.Duration.Milliseconds(),
		Title:         t.Title,
		Album:         t.Album,
		Artists:       t.Artists,
		CoverURL:      t.CoverURL,
		BackgroundURL: t.BackgroundURL,
	}
}

// Health is the /healthz response body.
type Health struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// Option configures the status router.
type Option func(*config)

type config struct {
	source   source.Source
	gatherer prometheus.Gatherer
}

// WithSource reports the state of src on /healthz.
func WithSource(src source.Source) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithGatherer serves gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// NewRouter returns the status HTTP handler for handle.
func NewRouter(handle source.Handle, opts ...Option) http.Handler {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/track", func(w http.ResponseWriter, r *http.Request) {
		version := handle.Version()
		track, ok := handle.Get()
		w.Header().Set(VersionHeader, strconv.FormatUint(version, 10))
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, NewTrack(track))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h := Health{Status: "ok"}
		code := http.StatusOK
		if cfg.source != nil {
			state := cfg.source.State()
			h.State = state.String()
			if state == source.Closed {
				h.Status = "closed"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, h)
	})

	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
