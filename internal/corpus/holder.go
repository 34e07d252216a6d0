package corpus

import "sync/atomic"

// Holder publishes the current Index to searches. A dataset reload builds a
// fresh Index and swaps the pointer; searches already holding the old index
// finish against it unchanged. The index itself is never mutated in place.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder creates a Holder, optionally seeded with an initial index.
func NewHolder(ix *Index) *Holder {
	h := &Holder{}
	if ix != nil {
		h.current.Store(ix)
	}
	return h
}

// Load returns the current index, or nil if none has been published yet.
func (h *Holder) Load() *Index {
	return h.current.Load()
}

// Swap publishes a new index.
func (h *Holder) Swap(ix *Index) {
	h.current.Store(ix)
}
