package catalog

import "sync/atomic"

// Holder shares one catalog snapshot between all concurrent tasks. Reload
// replaces the snapshot atomically; in-flight tasks keep the snapshot they
// started with.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder wraps an initial snapshot.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Replace swaps in a new snapshot.
func (h *Holder) Replace(c *Catalog) {
	h.current.Store(c)
}
