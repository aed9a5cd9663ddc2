package protocol

import (
	"errors"
	"testing"
)

// FuzzTaggedDecode tests that decoding arbitrary text never panics and only
// fails with a DecodeError.
func FuzzTaggedDecode(f *testing.F) {
	f.Add([]byte("TRACK_CHANGED;id1;uri1;2;180000;Song;Album;Artist;http://c;NONE"))
	f.Add([]byte("STATE_CHANGED;1"))
	f.Add([]byte("PROGRESS_CHANGED;0.5"))
	f.Add([]byte("TRACK_CHANGED;a;b;c"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, err := TaggedCodec{}.Decode(data)
		if err != nil && !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Decode(%q) error = %v, want ErrInvalidData", data, err)
		}
	})
}

// FuzzJSONDecode tests that decoding arbitrary bytes never panics.
func FuzzJSONDecode(f *testing.F) {
	f.Add([]byte(`{"StateChanged":2}`))
	f.Add([]byte(`{"ProgressChanged":0.1}`))
	f.Add([]byte(`{"TrackChanged":{"uid":"x"}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, err := JSONCodec{}.Decode(data)
		if err != nil && !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Decode(%q) error = %v, want ErrInvalidData", data, err)
		}
	})
}
