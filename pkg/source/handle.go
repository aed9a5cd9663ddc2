package source

import (
	"sync/atomic"

	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
)

// Handle is a shared cell holding the latest TrackInfo, or nothing before
// the first track arrives. Copies of a Handle share the same cell.
//
// Reads never block and always observe a whole snapshot: writers replace the
// stored value, they never mutate it. Handles must be created with NewHandle.
type Handle struct {
	cell *handleCell
}

type handleCell struct {
	track   atomic.Pointer[protocol.TrackInfo]
	version atomic.Uint64
}

// NewHandle returns an empty Handle.
func NewHandle() Handle {
	return Handle{cell: &handleCell{}}
}

// Get returns a copy of the current snapshot, and false if there is none yet.
func (h Handle) Get() (protocol.TrackInfo, bool) {
	t := h.cell.track.Load()
	if t == nil {
		return protocol.TrackInfo{}, false
	}
	return t.Clone(), true
}

// Set replaces the snapshot with a copy of t.
func (h Handle) Set(t protocol.TrackInfo) {
	snapshot := t.Clone()
	h.cell.track.Store(&snapshot)
	h.cell.version.Add(1)
}

// Clear empties the handle.
func (h Handle) Clear() {
	h.cell.track.Store(nil)
	h.cell.version.Add(1)
}

// Version counts the writes made to the handle. It changes whenever the
// snapshot does.
func (h Handle) Version() uint64 {
	return h.cell.version.Load()
}

// load returns the stored snapshot without copying. Callers must not modify it.
func (h Handle) load() *protocol.TrackInfo {
	return h.cell.track.Load()
}
