// Package source delivers decoded producer events to an application.
//
// Two models share one accept/receive state machine (Loop):
//
// Stream hands events to the goroutine that reads them:
//
//	l, _ := server.Bind(server.DefaultServerConfig())
//	stream := source.NewStream(l)
//	defer stream.Close()
//
//	for ev, err := range stream.Events() {
//	    if err != nil {
//	        continue // decode or transport error, the stream keeps going
//	    }
//	    switch e := ev.(type) {
//	    case protocol.TrackChanged:
//	        fmt.Println(e.Track.Title)
//	    }
//	}
//
// Watcher runs the loop in the background and keeps the latest track in a
// Handle that any goroutine can read without blocking:
//
//	handle := source.NewHandle()
//	w := source.NewWatcher(l, handle)
//	w.Start()
//	defer w.Stop()
//
//	if track, ok := handle.Get(); ok {
//	    fmt.Println(track.Title, track.State)
//	}
//
// # Reconnects
//
// When the producer disconnects the loop goes back to accepting, forever,
// without rebinding. Decode, handshake and transport errors are reported and
// the loop keeps going.
//
// # Cancellation
//
// Every loop is driven by a Token. Cancellation is checked before each accept
// and each receive. Cancelling also closes the live socket, so a loop blocked
// reading from an idle producer stops promptly instead of waiting for the
// next frame.
package source
