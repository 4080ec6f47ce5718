package content

import "sync/atomic"

// Holder publishes the current site to request handlers. Reloads swap the
// whole site; readers never see a partial update.
type Holder struct {
	site    atomic.Pointer[Site]
	version atomic.Uint64
}

// NewHolder starts with s.
func NewHolder(s *Site) *Holder {
	h := &Holder{}
	h.Set(s)
	return h
}

// Get returns the current site.
func (h *Holder) Get() *Site { return h.site.Load() }

// Set replaces the site.
func (h *Holder) Set(s *Site) {
	h.site.Store(s)
	h.version.Add(1)
}

// Version counts replacements, starting at 1.
func (h *Holder) Version() uint64 { return h.version.Load() }
