package source

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

func bindTest(t *testing.T) *server.Listener {
	t.Helper()
	cfg := server.DefaultServerConfig().
		WithAddress("127.0.0.1:0").
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l, err := server.Bind(cfg)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func dialProducer(t *testing.T, l *server.Listener) *websocket.Conn {
	t.Helper()
	url := "ws://" + l.Addr().String() + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%q) failed: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage(%q) error: %v", frame, err)
	}
}

type nextResult struct {
	ev  protocol.Event
	err error
}

func nextAsync(s *Stream) <-chan nextResult {
	ch := make(chan nextResult, 1)
	go func() {
		ev, err := s.Next()
		ch <- nextResult{ev: ev, err: err}
	}()
	return ch
}

func waitNext(t *testing.T, ch <-chan nextResult) nextResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Next")
		return nextResult{}
	}
}

func waitEvent(t *testing.T, ch <-chan protocol.Event) protocol.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}
