package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/source"
)

type fakeSource struct {
	state source.LoopState
}

func (f fakeSource) State() source.LoopState { return f.state }
func (f fakeSource) Token() *source.Token    { return source.NewToken() }
func (f fakeSource) Close() error            { return nil }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTrack_EmptyHandle(t *testing.T) {
	h := NewRouter(source.NewHandle())

	rec := get(t, h, "/track")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get(VersionHeader) != "0" {
		t.Errorf("%s = %q", VersionHeader, rec.Header().Get(VersionHeader))
	}
}

func TestTrack_Snapshot(t *testing.T) {
	handle := source.NewHandle()
	handle.Set(protocol.TrackInfo{
		UID:      "id1",
		URI:      "spotify:track:id1",
		State:    protocol.Paused,
		Duration: 3 * time.Minute,
		Title:    "Song",
		Album:    "Album",
		Artists:  []string{"Artist"},
		CoverURL: protocol.Optional("http://c"),
	})

	rec := get(t, NewRouter(handle), "/track")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got Track
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.UID != "id1" || got.State != "Paused" || got.StateCode != 1 || got.DurationMS != 180000 {
		t.Errorf("track = %+v", got)
	}
	if got.CoverURL == nil || *got.CoverURL != "http://c" || got.BackgroundURL != nil {
		t.Errorf("urls = %v, %v", got.CoverURL, got.BackgroundURL)
	}
	if !strings.Contains(rec.Body.String(), `"background_url":null`) {
		t.Errorf("absent URL should encode as null: %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, NewRouter(source.NewHandle(), WithSource(fakeSource{state: source.Connected})), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var h Health
	_ = json.Unmarshal(rec.Body.Bytes(), &h)
	if h.Status != "ok" || h.State != "Connected" {
		t.Errorf("health = %+v", h)
	}

	rec = get(t, NewRouter(source.NewHandle(), WithSource(fakeSource{state: source.Closed})), "/healthz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("closed status = %d, want 503", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	m.RecordConnectionOpen()

	rec := get(t, NewRouter(source.NewHandle(), WithGatherer(reg)), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "spotify_info_connections_total 1") {
		t.Errorf("metrics body missing counter:\n%s", rec.Body.String())
	}

	rec = get(t, NewRouter(source.NewHandle()), "/metrics")
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics without gatherer status = %d, want 404", rec.Code)
	}
}
