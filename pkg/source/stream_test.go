package source

import (
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

func TestStream_DeliversInOrder(t *testing.T) {
	s := NewStream(bindTest(t))
	defer s.Close()

	if s.State() != Idle {
		t.Fatalf("State() = %v, want Idle", s.State())
	}

	ch := nextAsync(s)
	producer := dialProducer(t, s.loop.listener)
	send(t, producer, "TRACK_CHANGED;id1;uri1;2;180000;Song;Album;Artist;http://c;NONE")
	send(t, producer, "STATE_CHANGED;1")
	send(t, producer, "PROGRESS_CHANGED;0.25")

	res := waitNext(t, ch)
	if res.err != nil {
		t.Fatalf("Next() error: %v", res.err)
	}
	if _, ok := res.ev.(protocol.TrackChanged); !ok {
		t.Fatalf("first event = %T, want TrackChanged", res.ev)
	}
	if s.State() != Connected {
		t.Errorf("State() = %v, want Connected", s.State())
	}

	res = waitNext(t, nextAsync(s))
	if res.ev != (protocol.StateChanged{State: protocol.Paused}) {
		t.Errorf("second event = %#v", res.ev)
	}
	res = waitNext(t, nextAsync(s))
	if res.ev != (protocol.ProgressChanged{Fraction: 0.25}) {
		t.Errorf("third event = %#v", res.ev)
	}
}

func TestStream_DecodeErrorIsRecoverable(t *testing.T) {
	s := NewStream(bindTest(t))
	defer s.Close()

	ch := nextAsync(s)
	producer := dialProducer(t, s.loop.listener)
	send(t, producer, "STATE_CHANGED")
	send(t, producer, "STATE_CHANGED;2")

	res := waitNext(t, ch)
	if !errors.Is(res.err, protocol.ErrInvalidData) {
		t.Fatalf("Next() error = %v, want ErrInvalidData", res.err)
	}
	if s.State() != Connected {
		t.Errorf("State() after decode error = %v, want Connected", s.State())
	}

	res = waitNext(t, nextAsync(s))
	if res.err != nil || res.ev != (protocol.StateChanged{State: protocol.Playing}) {
		t.Fatalf("Next() = %#v, %v", res.ev, res.err)
	}
}

func TestStream_ReconnectsAfterDrop(t *testing.T) {
	l := bindTest(t)
	s := NewStream(l)
	defer s.Close()

	ch := nextAsync(s)
	first := dialProducer(t, l)
	send(t, first, "STATE_CHANGED;2")
	if res := waitNext(t, ch); res.err != nil {
		t.Fatalf("Next() error: %v", res.err)
	}

	_ = first.Close()

	ch = nextAsync(s)
	second := dialProducer(t, l)
	send(t, second, "STATE_CHANGED;1")

	res := waitNext(t, ch)
	if res.err != nil {
		t.Fatalf("Next() after reconnect error: %v", res.err)
	}
	if res.ev != (protocol.StateChanged{State: protocol.Paused}) {
		t.Errorf("event = %#v", res.ev)
	}
}

func TestStream_SendsProgressInterval(t *testing.T) {
	l := bindTest(t)
	s := NewStream(l, WithProgressInterval(250*time.Millisecond))
	defer s.Close()

	ch := nextAsync(s)
	producer := dialProducer(t, l)

	_ = producer.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := producer.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	if msgType != websocket.TextMessage || string(data) != "SET_PROGRESS_INTERVAL;250" {
		t.Fatalf("control frame = %d %q", msgType, data)
	}

	send(t, producer, "PROGRESS_CHANGED;0.1")
	if res := waitNext(t, ch); res.err != nil {
		t.Fatalf("Next() error: %v", res.err)
	}
}

func TestStream_CloseWhileReceiving(t *testing.T) {
	l := bindTest(t)
	s := NewStream(l)

	ch := nextAsync(s)
	dialProducer(t, l)

	// Wait until the loop is blocked reading from the idle producer.
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != Connected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	res := waitNext(t, ch)
	if !errors.Is(res.err, ErrStopped) {
		t.Fatalf("Next() error = %v, want ErrStopped", res.err)
	}
	if s.State() != Closed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
	if _, err := s.Next(); !errors.Is(err, ErrStopped) {
		t.Errorf("Next() after close error = %v, want ErrStopped", err)
	}
}

func TestStream_CloseWhileAccepting(t *testing.T) {
	s := NewStream(bindTest(t))

	ch := nextAsync(s)
	time.Sleep(20 * time.Millisecond)
	s.Token().Cancel()

	if res := waitNext(t, ch); !errors.Is(res.err, ErrStopped) {
		t.Fatalf("Next() error = %v, want ErrStopped", res.err)
	}
}

func TestStream_ListenerClosedIsTerminal(t *testing.T) {
	l := bindTest(t)
	s := NewStream(l)

	ch := nextAsync(s)
	time.Sleep(20 * time.Millisecond)
	_ = l.Close()

	res := waitNext(t, ch)
	if !server.IsListenerClosed(res.err) {
		t.Fatalf("Next() error = %v, want listener closed", res.err)
	}
	if s.State() != Closed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
}

func TestStream_EventsEndsOnStop(t *testing.T) {
	l := bindTest(t)
	s := NewStream(l)

	var got []protocol.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev, err := range s.Events() {
			if err != nil {
				continue
			}
			got = append(got, ev)
			if len(got) == 2 {
				s.Token().Cancel()
			}
		}
	}()

	producer := dialProducer(t, l)
	send(t, producer, "STATE_CHANGED;2")
	send(t, producer, "BROKEN")
	send(t, producer, "STATE_CHANGED;0")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Events() did not end after cancel")
	}
	_ = s.Close()

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[1] != (protocol.StateChanged{State: protocol.Stopped}) {
		t.Errorf("second event = %#v", got[1])
	}
}
