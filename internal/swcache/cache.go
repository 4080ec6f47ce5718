// Package swcache is an in-process response cache in front of the site's
// router. Core assets are served cache-first, pages network-first with an
// offline fallback, and everything else stale-while-revalidate.
package swcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Strategy is how a request is answered.
type Strategy int

const (
	Bypass Strategy = iota
	CacheFirst
	NetworkFirst
	StaleWhileRevalidate
)

func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache-first"
	case NetworkFirst:
		return "network-first"
	case StaleWhileRevalidate:
		return "stale-while-revalidate"
	default:
		return "bypass"
	}
}

// X-Cache values.
const (
	StatusHit      = "HIT"
	StatusMiss     = "MISS"
	StatusFallback = "FALLBACK"
	StatusOffline  = "OFFLINE"
)

// HeaderCache reports how a cached request was answered.
const HeaderCache = "X-Cache"

// ErrOriginFailed means the origin handler could not produce a response.
var ErrOriginFailed = errors.New("origin failed")

// Options configures a Cache.
type Options struct {
	// Version names the cache generation; Activate drops older ones.
	Version string
	// Precache lists core asset paths, served cache-first.
	Precache []string
	// Bypass lists path prefixes that are never cached.
	Bypass []string
	// RevalidateTimeout bounds each background refresh.
	RevalidateTimeout time.Duration
	// MaxEntryBytes skips storing larger bodies. Zero means no limit.
	MaxEntryBytes int
	Logger        *zap.Logger
}

// Cache wraps an origin handler.
type Cache struct {
	origin   http.Handler
	opts     Options
	store    *Store
	core     string
	runtime  string
	precache map[string]bool
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

// New wraps origin. Call Install to warm core assets and Close to stop
// background refreshes.
func New(origin http.Handler, opts Options) *Cache {
	if opts.Version == "" {
		opts.Version = "v1"
	}
	if opts.RevalidateTimeout <= 0 {
		opts.RevalidateTimeout = 10 * time.Second
	}
	if opts.Bypass == nil {
		opts.Bypass = []string{"/api/", "/admin/"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		origin:   origin,
		opts:     opts,
		store:    NewStore(),
		core:     "portfolio-cache-" + opts.Version,
		runtime:  "portfolio-runtime-" + opts.Version,
		precache: make(map[string]bool, len(opts.Precache)),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, p := range opts.Precache {
		c.precache[p] = true
	}
	c.store.Open(c.core)
	c.store.Open(c.runtime)
	return c
}

// Store exposes the underlying store.
func (c *Cache) Store() *Store { return c.store }

// CacheNames returns the current core and runtime cache names.
func (c *Cache) CacheNames() (core, runtime string) { return c.core, c.runtime }

// StrategyFor picks the strategy for r.
func (c *Cache) StrategyFor(r *http.Request) Strategy {
	if r.Method != http.MethodGet {
		return Bypass
	}
	path := r.URL.Path
	for _, prefix := range c.opts.Bypass {
		if strings.HasPrefix(path, prefix) {
			return Bypass
		}
	}
	if c.precache[path] || c.precache[path+"/"] {
		return CacheFirst
	}
	if isPage(r) {
		return NetworkFirst
	}
	return StaleWhileRevalidate
}

func isPage(r *http.Request) bool {
	path := r.URL.Path
	if path == "/" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, ".html") {
		return true
	}
	// HTMX swaps ask for HTML too but are fragments, not navigations.
	if isFragment(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// hxSuffix separates HTMX fragment responses from full pages at the same URI.
const hxSuffix = "|hx"

func isFragment(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }

func cacheKey(r *http.Request) string {
	if isFragment(r) {
		return r.URL.RequestURI() + hxSuffix
	}
	return r.URL.RequestURI()
}

// ServeHTTP implements http.Handler.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch c.StrategyFor(r) {
	case CacheFirst:
		c.cacheFirst(w, r)
	case NetworkFirst:
		c.networkFirst(w, r)
	case StaleWhileRevalidate:
		c.staleWhileRevalidate(w, r)
	default:
		c.origin.ServeHTTP(w, r)
	}
}

func (c *Cache) cacheFirst(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	if e, ok := c.store.Match(key); ok {
		writeEntry(w, e, StatusHit)
		return
	}
	e, err := c.fetch(r)
	if err != nil {
		c.offline(w, r, err)
		return
	}
	c.put(c.core, key, e)
	writeEntry(w, e, StatusMiss)
}

func (c *Cache) networkFirst(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	e, err := c.fetch(r)
	if err == nil && e.Status < http.StatusInternalServerError {
		c.put(c.runtime, key, e)
		writeEntry(w, e, StatusMiss)
		return
	}

	if cached, ok := c.store.Match(key); ok {
		c.logger.Warn("Serving cached page", zap.String("path", r.URL.Path), zap.Error(err))
		writeEntry(w, cached, StatusFallback)
		return
	}
	if err == nil {
		// A server error with nothing cached passes through.
		writeEntry(w, e, StatusMiss)
		return
	}
	if home, ok := c.store.Match("/"); ok && !isFragment(r) {
		writeEntry(w, home, StatusFallback)
		return
	}
	c.offline(w, r, err)
}

func (c *Cache) staleWhileRevalidate(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	if cached, ok := c.store.Get(c.runtime, key); ok {
		writeEntry(w, cached, StatusHit)
		c.revalidate(r, key)
		return
	}
	e, err := c.fetch(r)
	if err != nil {
		c.offline(w, r, err)
		return
	}
	c.put(c.runtime, key, e)
	writeEntry(w, e, StatusMiss)
}

// revalidate refreshes key in the background. The response already sent is
// not affected.
func (c *Cache) revalidate(r *http.Request, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.RevalidateTimeout)
	req := r.Clone(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		e, err := c.fetch(req)
		if err != nil {
			c.logger.Debug("Revalidation failed", zap.String("key", key), zap.Error(err))
			return
		}
		c.put(c.runtime, key, e)
	}()
}

func (c *Cache) offline(w http.ResponseWriter, r *http.Request, err error) {
	c.logger.Warn("Origin unavailable", zap.String("path", r.URL.Path), zap.Error(err))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(HeaderCache, StatusOffline)
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("Page unavailable offline"))
}

// put stores e when it is a cacheable 200 response.
func (c *Cache) put(name, key string, e *Entry) {
	if !c.cacheable(e) {
		return
	}
	c.store.Put(name, key, e)
}

func (c *Cache) cacheable(e *Entry) bool {
	if e.Status != http.StatusOK {
		return false
	}
	if strings.Contains(strings.ToLower(e.Header.Get("Cache-Control")), "no-store") {
		return false
	}
	if e.Header.Get("Set-Cookie") != "" {
		return false
	}
	return c.opts.MaxEntryBytes <= 0 || len(e.Body) <= c.opts.MaxEntryBytes
}

// fetch runs the origin into a buffer. A panic in the origin is reported as
// ErrOriginFailed.
func (c *Cache) fetch(r *http.Request) (e *Entry, err error) {
	if err := r.Context().Err(); err != nil {
		return nil, err
	}
	rec := newRecorder()
	defer func() {
		if p := recover(); p != nil {
			e, err = nil, fmt.Errorf("%w: %v", ErrOriginFailed, p)
		}
	}()
	c.origin.ServeHTTP(rec, r)
	return rec.entry(), nil
}

func writeEntry(w http.ResponseWriter, e *Entry, status string) {
	h := w.Header()
	for k, vs := range e.Header {
		h[k] = append([]string(nil), vs...)
	}
	h.Set(HeaderCache, status)
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}

// Install fetches every precache path into the core cache. It keeps going
// past failures and returns them joined.
func (c *Cache) Install(ctx context.Context) error {
	var errs []error
	for _, path := range c.opts.Precache {
		if err := c.add(ctx, c.core, path); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("Precache incomplete", zap.Error(err))
		return err
	}
	c.logger.Info("Precached core assets", zap.Int("count", len(c.opts.Precache)))
	return nil
}

// Refresh re-fetches every precache path, replacing the stored copies.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.Install(ctx)
}

// Activate deletes every cache that is not the current generation and
// returns the deleted names.
func (c *Cache) Activate() []string {
	var purged []string
	for _, name := range c.store.Names() {
		if name == c.core || name == c.runtime {
			continue
		}
		if c.store.Delete(name) {
			purged = append(purged, name)
		}
	}
	if len(purged) > 0 {
		c.logger.Info("Purged stale caches", zap.Strings("caches", purged))
	}
	return purged
}

// Prefetch warms the runtime cache with paths that are not cached yet and
// returns how many were added.
func (c *Cache) Prefetch(ctx context.Context, paths []string) int {
	added := 0
	for _, path := range paths {
		if _, ok := c.store.Match(path); ok {
			continue
		}
		if err := c.add(ctx, c.runtime, path); err != nil {
			c.logger.Debug("Prefetch failed", zap.String("path", path), zap.Error(err))
			continue
		}
		added++
	}
	return added
}

func (c *Cache) add(ctx context.Context, name, path string) error {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("bad path %q: %w", path, err)
	}
	r.Header.Set("Accept", "text/html,*/*")
	e, err := c.fetch(r)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	if !c.cacheable(e) {
		return fmt.Errorf("fetch %s: status %d not cacheable", path, e.Status)
	}
	c.store.Put(name, cacheKey(r), e)
	return nil
}

// ClearRuntime empties the runtime cache, dropping every page, fragment and
// asset copied from the origin since install. Core assets are kept.
func (c *Cache) ClearRuntime() int {
	n := c.store.Clear(c.runtime)
	if n > 0 {
		c.logger.Info("Cleared runtime cache", zap.String("cache", c.runtime), zap.Int("entries", n))
	}
	return n
}

// Wait blocks until background refreshes finish.
func (c *Cache) Wait() { c.wg.Wait() }

// Close cancels background refreshes and waits for them.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// recorder buffers an origin response.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder { return &recorder{header: make(http.Header)} }

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	return r.body.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.WriteHeader(http.StatusOK)
	return r.body.WriteString(s)
}

func (r *recorder) Flush() {}

func (r *recorder) entry() *Entry {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &Entry{
		Status:   status,
		Header:   r.header.Clone(),
		Body:     bytes.Clone(r.body.Bytes()),
		StoredAt: time.Now(),
	}
}
