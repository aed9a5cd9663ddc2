package source

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Ricky12Awesome/spotify-info/pkg/metrics"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

// Watcher runs the delivery loop on a background goroutine and merges every
// event into a Handle. The goroutine is the Handle's only writer; any number
// of goroutines may read it.
//
// Merge rules:
//   - TrackChanged replaces the snapshot
//   - StateChanged replaces the snapshot with a copy carrying the new state,
//     and is ignored while there is no track yet
//   - ProgressChanged leaves the snapshot alone
type Watcher struct {
	loop    *Loop
	handle  Handle
	opts    options
	metrics *metrics.Collector

	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
	err       error // terminal error, set before done is closed
}

// NewWatcher returns a Watcher that feeds handle from l. The Watcher owns l:
// Stop closes it. Call Start to begin.
func NewWatcher(l *server.Listener, handle Handle, opts ...Option) *Watcher {
	o := applyOptions(opts)
	return &Watcher{
		loop:    NewLoop(l, WithToken(o.token), WithProgressInterval(o.progressInterval), WithLogger(o.logger)),
		handle:  handle,
		opts:    o,
		metrics: l.Config().Metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the background goroutine. Calling it again has no effect.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run()
	})
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		ev, err := w.loop.Next()
		if err != nil {
			if w.loop.State() == Closed {
				if !errors.Is(err, ErrStopped) {
					w.err = err
					w.reportError(err)
				}
				return
			}
			w.reportError(err)
			continue
		}

		w.apply(ev)
		if w.opts.onEvent != nil {
			w.opts.onEvent(ev)
		}
	}
}

func (w *Watcher) apply(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.TrackChanged:
		prev := w.handle.load()
		w.handle.Set(e.Track)
		w.metrics.RecordSnapshotUpdate()
		if w.opts.onTrackChange != nil && (prev == nil || !protocol.SameTrack(*prev, e.Track)) {
			w.opts.onTrackChange(e.Track.Clone())
		}

	case protocol.StateChanged:
		cur := w.handle.load()
		if cur == nil {
			return
		}
		w.handle.Set(cur.WithState(e.State))
		w.metrics.RecordSnapshotUpdate()
	}
}

func (w *Watcher) reportError(err error) {
	if w.opts.onError != nil {
		w.opts.onError(err)
	}
}

// Handle returns the handle the Watcher writes to.
func (w *Watcher) Handle() Handle {
	return w.handle
}

// Token returns the cancellation token driving the Watcher.
func (w *Watcher) Token() *Token {
	return w.loop.Token()
}

// State returns the current loop state.
func (w *Watcher) State() LoopState {
	return w.loop.State()
}

// Stop cancels the Watcher, closes its listener and waits for the goroutine
// to exit. It returns promptly even while the goroutine is blocked reading
// from a producer.
func (w *Watcher) Stop() error {
	err := w.loop.Close()
	// Never started: nothing to wait for.
	w.startOnce.Do(func() { close(w.done) })
	<-w.done
	return err
}

// Close implements Source.
func (w *Watcher) Close() error {
	return w.Stop()
}

// Wait blocks until the goroutine exits and returns its terminal error: nil
// after Stop, or the listener's error if it failed on its own. On a Watcher
// that was never started it returns nil at once.
func (w *Watcher) Wait() error {
	if !w.started.Load() {
		select {
		case <-w.done:
		default:
			return nil
		}
	}
	<-w.done
	return w.err
}
