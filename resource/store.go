package resource

import (
	"sync"

	"fresco/field"
	"fresco/spdzshare"
)

// Opening is one (share, opened value) pair buffered by the OpenedValueStore
// until the next MAC-check.
type Opening struct {
	Share  spdzshare.SInt
	Opened field.Element
}

// OpenedValueStore buffers every value opened since the last successful
// MAC-check, per spec.md §3/§4.4: append-only between checks, cleared
// atomically on success. A failed check must never be followed by a clear.
type OpenedValueStore struct {
	mu       sync.Mutex
	openings []Opening
}

// NewOpenedValueStore returns an empty store.
func NewOpenedValueStore() *OpenedValueStore {
	return &OpenedValueStore{}
}

// Append records a newly opened value.
func (s *OpenedValueStore) Append(o Opening) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openings = append(s.openings, o)
}

// Snapshot returns every opening recorded since the last Clear, without
// removing them — the mac-check package reads the snapshot, verifies it,
// and only then calls Clear.
func (s *OpenedValueStore) Snapshot() []Opening {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Opening, len(s.openings))
	copy(out, s.openings)
	return out
}

// Clear empties the store. Must only be called after a successful
// MAC-check that covered every opening currently in the store (i.e. right
// after a Snapshot that was fully verified, with no Append in between).
func (s *OpenedValueStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openings = nil
}

// Len reports how many openings are currently buffered.
func (s *OpenedValueStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.openings)
}
