package particles

import (
	"context"
	"sync"
	"time"
)

// frameDuration is the nominal 60 Hz frame that dt values are expressed in.
const frameDuration = time.Second / 60

// maxFrameStep caps dt so a stalled frame cannot fling particles across the
// canvas.
const maxFrameStep = 3

// Gate combines the element visibility and document visibility signals. The
// loop only runs while both are true.
type Gate struct {
	mu           sync.Mutex
	intersecting bool
	docVisible   bool
	changed      chan struct{}
}

// NewGate returns an open gate.
func NewGate() *Gate {
	return &Gate{intersecting: true, docVisible: true, changed: make(chan struct{})}
}

// SetIntersecting records whether the canvas is in the viewport.
func (g *Gate) SetIntersecting(v bool) { g.set(&g.intersecting, v) }

// SetDocumentVisible records whether the page (or window) is visible.
func (g *Gate) SetDocumentVisible(v bool) { g.set(&g.docVisible, v) }

// Open reports whether frames should run.
func (g *Gate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.intersecting && g.docVisible
}

func (g *Gate) set(field *bool, v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if *field == v {
		return
	}
	*field = v
	close(g.changed)
	g.changed = make(chan struct{})
}

// wait returns a channel closed at the next signal change.
func (g *Gate) wait() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

// Registry collects cleanup callbacks of everything started for a page.
type Registry struct {
	mu       sync.Mutex
	cleanups []func()
}

// Register adds fn to run on Cleanup.
func (r *Registry) Register(fn func()) {
	r.mu.Lock()
	r.cleanups = append(r.cleanups, fn)
	r.mu.Unlock()
}

// Cleanup runs the callbacks in reverse registration order, once.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	fns := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// FrameFunc is the per-frame callback. dt is in 60 Hz frames.
type FrameFunc func(now time.Time, dt float64)

// Loop re-arms a frame callback while its gate is open.
type Loop struct {
	gate     *Gate
	frame    FrameFunc
	onResume func()

	mu      sync.Mutex
	last    time.Time
	running bool
	stopped bool
	frames  uint64
}

// NewLoop binds frame to gate. onResume, if set, runs on the first frame
// after the gate reopens.
func NewLoop(gate *Gate, frame FrameFunc, onResume func()) *Loop {
	return &Loop{gate: gate, frame: frame, onResume: onResume}
}

// Tick is called once per display refresh by the host. It runs the frame
// callback when the gate is open and reports whether it did. The first frame
// after a pause advances by one nominal frame, never by the paused time.
func (l *Loop) Tick(now time.Time) bool {
	l.mu.Lock()
	if l.stopped || !l.gate.Open() {
		l.running = false
		l.mu.Unlock()
		return false
	}
	dt := 1.0
	resumed := !l.running && !l.last.IsZero()
	if l.running {
		dt = float64(now.Sub(l.last)) / float64(frameDuration)
		if dt > maxFrameStep {
			dt = maxFrameStep
		}
	}
	l.last = now
	l.running = true
	l.frames++
	l.mu.Unlock()

	if resumed && l.onResume != nil {
		l.onResume()
	}
	if dt > 0 {
		l.frame(now, dt)
	}
	return true
}

// Frames counts the frames that ran.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Stop disarms the loop for good.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.running = false
	l.mu.Unlock()
}

// Run drives the loop from a ticker at fps until ctx is done. While the gate
// is closed no ticks are requested; Run blocks until the gate changes.
func (l *Loop) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		if l.isStopped() {
			return nil
		}
		changed := l.gate.wait()
		if !l.gate.Open() {
			l.mu.Lock()
			l.running = false
			l.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changed:
				continue
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
