package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

const testTrackFrame = "TRACK_CHANGED;id1;uri1;2;180000;Song;Album;Artist;http://c;NONE"

func testConfig() *ServerConfig {
	return DefaultServerConfig().WithAddress("127.0.0.1:0")
}

func bindTest(t *testing.T, cfg *ServerConfig) *Listener {
	t.Helper()
	l, err := Bind(cfg)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func wsURL(l *Listener, path string) string {
	return "ws://" + l.Addr().String() + path
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%q) failed: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// acceptAsync runs AcceptOnce in the background and returns its result channel.
func acceptAsync(ctx context.Context, l *Listener) <-chan acceptResult {
	ch := make(chan acceptResult, 1)
	go func() {
		conn, err := l.AcceptOnce(ctx)
		ch <- acceptResult{conn: conn, err: err}
	}()
	return ch
}

func waitAccept(t *testing.T, ch <-chan acceptResult) acceptResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for AcceptOnce")
		return acceptResult{}
	}
}

// connect accepts one producer connection and returns both ends.
func connect(t *testing.T, l *Listener) (*Connection, *websocket.Conn) {
	t.Helper()
	ch := acceptAsync(context.Background(), l)
	client := dialWS(t, wsURL(l, "/"))
	res := waitAccept(t, ch)
	if res.err != nil {
		t.Fatalf("AcceptOnce() error: %v", res.err)
	}
	t.Cleanup(func() { _ = res.conn.Close() })
	return res.conn, client
}

func TestBind_AddressInUse(t *testing.T) {
	l := bindTest(t, testConfig())

	_, err := Bind(DefaultServerConfig().WithAddress(l.Addr().String()))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Bind() error = %v, want *TransportError", err)
	}
	if te.Op != "bind" {
		t.Errorf("Op = %q, want bind", te.Op)
	}
}

func TestBind_NilConfigUsesDefaults(t *testing.T) {
	cfg := (*ServerConfig)(nil).withDefaults()
	if cfg.Address != DefaultAddress {
		t.Errorf("Address = %q, want %q", cfg.Address, DefaultAddress)
	}
	if cfg.Path != "/" {
		t.Errorf("Path = %q, want /", cfg.Path)
	}
	if cfg.Codec.Name() != protocol.CodecTagged {
		t.Errorf("Codec = %q, want tagged", cfg.Codec.Name())
	}
}

func TestAcceptOnce_ReceivesEvent(t *testing.T) {
	l := bindTest(t, testConfig())
	conn, client := connect(t, l)

	if err := client.WriteMessage(websocket.TextMessage, []byte(testTrackFrame)); err != nil {
		t.Fatalf("WriteMessage() error: %v", err)
	}

	ev, err := conn.ReceiveNext()
	if err != nil {
		t.Fatalf("ReceiveNext() error: %v", err)
	}
	tc, ok := ev.(protocol.TrackChanged)
	if !ok {
		t.Fatalf("event = %T, want TrackChanged", ev)
	}
	if tc.Track.UID != "id1" || tc.Track.State != protocol.Playing {
		t.Errorf("track = %+v", tc.Track)
	}
	if conn.ID() == "" {
		t.Error("connection ID is empty")
	}
	if !strings.HasPrefix(conn.RemoteAddr(), "127.0.0.1:") {
		t.Errorf("RemoteAddr() = %q", conn.RemoteAddr())
	}
}

func TestAcceptOnce_HandshakeErrorKeepsListener(t *testing.T) {
	l := bindTest(t, testConfig())

	ch := acceptAsync(context.Background(), l)
	resp, err := http.Get("http://" + l.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	res := waitAccept(t, ch)
	var he *HandshakeError
	if !errors.As(res.err, &he) {
		t.Fatalf("AcceptOnce() error = %v, want *HandshakeError", res.err)
	}

	// The listener must still serve a real producer.
	conn, client := connect(t, l)
	_ = client.WriteMessage(websocket.TextMessage, []byte("STATE_CHANGED;1"))
	ev, err := conn.ReceiveNext()
	if err != nil {
		t.Fatalf("ReceiveNext() error: %v", err)
	}
	if ev != (protocol.StateChanged{State: protocol.Paused}) {
		t.Errorf("event = %#v", ev)
	}
}

func TestAcceptOnce_UnknownPathIsNotFound(t *testing.T) {
	l := bindTest(t, testConfig())

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(l, "/other"), nil)
	if err == nil {
		t.Fatal("Dial() to unknown path succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %v, want 404", resp)
	}
}

func TestAcceptOnce_CustomPath(t *testing.T) {
	cfg := testConfig()
	cfg.Path = "/ws"
	l := bindTest(t, cfg)

	ch := acceptAsync(context.Background(), l)
	dialWS(t, wsURL(l, "/ws"))
	if res := waitAccept(t, ch); res.err != nil {
		t.Fatalf("AcceptOnce() error: %v", res.err)
	}
}

func TestListener_ReconnectWithoutRebind(t *testing.T) {
	l := bindTest(t, testConfig())

	first, client := connect(t, l)
	_ = client.Close()

	if _, err := first.ReceiveNext(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("ReceiveNext() after drop error = %v, want ErrConnectionClosed", err)
	}
	if _, err := first.ReceiveNext(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("ReceiveNext() on dead connection error = %v, want ErrConnectionClosed", err)
	}

	second, client2 := connect(t, l)
	if second.ID() == first.ID() {
		t.Error("reconnected connection reused the previous ID")
	}
	_ = client2.WriteMessage(websocket.TextMessage, []byte("PROGRESS_CHANGED;0.5"))
	ev, err := second.ReceiveNext()
	if err != nil {
		t.Fatalf("ReceiveNext() error: %v", err)
	}
	if ev != (protocol.ProgressChanged{Fraction: 0.5}) {
		t.Errorf("event = %#v", ev)
	}
}

func TestAcceptOnce_ContextCancel(t *testing.T) {
	l := bindTest(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	ch := acceptAsync(ctx, l)
	time.Sleep(20 * time.Millisecond)
	cancel()

	res := waitAccept(t, ch)
	if !errors.Is(res.err, context.Canceled) {
		t.Fatalf("AcceptOnce() error = %v, want context.Canceled", res.err)
	}
}

func TestListener_CloseEndsAccept(t *testing.T) {
	l := bindTest(t, testConfig())

	ch := acceptAsync(context.Background(), l)
	time.Sleep(20 * time.Millisecond)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	res := waitAccept(t, ch)
	var te *TransportError
	if !errors.As(res.err, &te) || !IsListenerClosed(res.err) {
		t.Fatalf("AcceptOnce() error = %v, want TransportError wrapping ErrListenerClosed", res.err)
	}

	if _, err := l.AcceptOnce(context.Background()); !IsListenerClosed(err) {
		t.Fatalf("AcceptOnce() after Close error = %v", err)
	}

	select {
	case <-l.Done():
	default:
		t.Error("Done() not closed after Close")
	}
}

func TestListener_CloseKeepsLiveConnection(t *testing.T) {
	l := bindTest(t, testConfig())
	conn, client := connect(t, l)

	_ = l.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte("STATE_CHANGED;2")); err != nil {
		t.Fatalf("WriteMessage() error: %v", err)
	}
	ev, err := conn.ReceiveNext()
	if err != nil {
		t.Fatalf("ReceiveNext() after listener Close error: %v", err)
	}
	if ev != (protocol.StateChanged{State: protocol.Playing}) {
		t.Errorf("event = %#v", ev)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestListener_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	l := bindTest(t, testConfig().WithMetrics(m))

	ch := acceptAsync(context.Background(), l)
	resp, err := http.Get("http://" + l.Addr().String() + "/")
	if err == nil {
		_ = resp.Body.Close()
	}
	waitAccept(t, ch)

	conn, client := connect(t, l)
	_ = client.WriteMessage(websocket.TextMessage, []byte("STATE_CHANGED;2"))
	_ = client.WriteMessage(websocket.TextMessage, []byte("BOGUS"))
	_, _ = conn.ReceiveNext()
	_, _ = conn.ReceiveNext()

	if got := counterValue(t, reg, "spotify_info_accept_errors_total"); got != 1 {
		t.Errorf("accept_errors_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "spotify_info_connections_total"); got != 1 {
		t.Errorf("connections_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "spotify_info_frames_received_total"); got != 1 {
		t.Errorf("frames_received_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "spotify_info_decode_errors_total"); got != 1 {
		t.Errorf("decode_errors_total = %v, want 1", got)
	}
}
