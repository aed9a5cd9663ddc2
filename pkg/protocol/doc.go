// Package protocol implements the now-playing wire protocol spoken by the
// player extension.
//
// Every WebSocket text frame carries exactly one message. Messages flow from
// the producer (the extension) to the receiver, except for control messages,
// which flow back to the producer.
//
// # Messages
//
//   - TrackChanged: the player loaded another track
//   - StateChanged: the player started, paused or stopped
//   - ProgressChanged: periodic playback position, a fraction of the track
//   - SetProgressInterval (outbound): how often ProgressChanged should be sent
//
// # Grammars
//
// Two interchangeable codecs implement the Codec interface. The host selects
// one at configuration time; they are never mixed on one connection.
//
// The tagged positional grammar (TaggedCodec) joins fields with ';':
//
//	TRACK_CHANGED;uid;uri;state;duration_ms;title;album;artist;cover;background
//	STATE_CHANGED;state
//	PROGRESS_CHANGED;fraction
//	SET_PROGRESS_INTERVAL;milliseconds
//
// Numeric fields that fail to parse default to zero. Cover and background
// use the literal NONE when absent. A literal ';' inside title, album or
// artist travels as the escape token {SEMICOLON}.
//
// The structured grammar (JSONCodec) sends one JSON object per frame whose
// single key names the variant:
//
//	{"TrackChanged": {"uid": "id1", "state": 2, "duration_ms": 180000, ...}}
//	{"StateChanged": 1}
//	{"ProgressChanged": 0.5}
//	{"ProgressUpdateInterval": 1000}
//
// # Usage Example
//
//	codec, err := protocol.CodecByName("tagged")
//	if err != nil {
//	    return err
//	}
//
//	ev, err := codec.Decode([]byte("STATE_CHANGED;1"))
//	if errors.Is(err, protocol.ErrInvalidData) {
//	    // Skip the frame, the connection is still usable
//	}
//
//	switch e := ev.(type) {
//	case protocol.TrackChanged:
//	    fmt.Println(e.Track.Title)
//	case protocol.StateChanged:
//	    fmt.Println(e.State) // Paused
//	}
//
// # File Structure
//
//   - state.go: PlaybackState and its total code conversion
//   - track.go: TrackInfo value and identity helpers
//   - event.go: Event union
//   - control.go: outbound control messages
//   - codec.go: Codec interface and selection
//   - tagged.go: tagged positional grammar
//   - json.go: structured grammar
//   - error.go: DecodeError and sentinels
package protocol
