package swcache

import (
	"net/http"
	"slices"
	"sync"
	"time"
)

// Entry is a stored response. Entries are never mutated after Put.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Store holds named caches of entries keyed by request URI. HTMX fragment
// responses carry a "|hx" suffix on the key.
type Store struct {
	mu     sync.RWMutex
	caches map[string]map[string]*Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{caches: make(map[string]map[string]*Entry)}
}

// Open creates the named cache if it does not exist.
func (s *Store) Open(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caches[name]; !ok {
		s.caches[name] = make(map[string]*Entry)
	}
}

// Put stores e under key in the named cache, creating the cache if needed.
func (s *Store) Put(name, key string, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[name]
	if !ok {
		c = make(map[string]*Entry)
		s.caches[name] = c
	}
	c[key] = e
}

// Get looks key up in one cache.
func (s *Store) Get(name, key string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.caches[name][key]
	return e, ok
}

// Match looks key up in every cache, in name order.
func (s *Store) Match(key string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range s.sortedNames() {
		if e, ok := s.caches[name][key]; ok {
			return e, true
		}
	}
	return nil, false
}

// Delete drops a whole cache and reports whether it existed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.caches[name]
	delete(s.caches, name)
	return ok
}

// Clear empties the named cache, keeping it open, and returns how many
// entries it held.
func (s *Store) Clear(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[name]
	if !ok {
		return 0
	}
	s.caches[name] = make(map[string]*Entry)
	return len(c)
}

// Names lists caches in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedNames()
}

func (s *Store) sortedNames() []string {
	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CacheStat describes one named cache.
type CacheStat struct {
	Name    string
	Entries int
	Bytes   int
}

// Stats summarizes every cache.
func (s *Store) Stats() []CacheStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CacheStat
	for _, name := range s.sortedNames() {
		st := CacheStat{Name: name, Entries: len(s.caches[name])}
		for _, e := range s.caches[name] {
			st.Bytes += len(e.Body)
		}
		out = append(out, st)
	}
	return out
}
