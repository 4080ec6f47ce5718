package particles

import (
	"math"
	"time"
)

const (
	// trailMinSpeed is the pointer speed, in px per event, below which no
	// trail is drawn.
	trailMinSpeed = 3
	trailMaxBurst = 5
	trailJitter   = 10
	// trailInterval throttles trail bursts from mouse events to one per frame.
	trailInterval = 16 * time.Millisecond
)

// Pointer is a snapshot of the mouse or touch position in canvas coordinates.
type Pointer struct {
	X, Y   float64
	DX, DY float64
	Active bool
}

// Speed is the length of the last movement delta.
func (p Pointer) Speed() float64 { return math.Hypot(p.DX, p.DY) }

// PointerTracker turns raw move/leave events into Pointer snapshots.
type PointerTracker struct {
	cur       Pointer
	lastTrail time.Time
}

// Move records a new position and returns the updated snapshot.
func (t *PointerTracker) Move(x, y float64) Pointer {
	if t.cur.Active {
		t.cur.DX = x - t.cur.X
		t.cur.DY = y - t.cur.Y
	} else {
		t.cur.DX, t.cur.DY = 0, 0
	}
	t.cur.X, t.cur.Y = x, y
	t.cur.Active = true
	return t.cur
}

// Leave marks the pointer as gone (mouseleave, touchend).
func (t *PointerTracker) Leave() {
	t.cur = Pointer{}
}

// Current returns the latest snapshot.
func (t *PointerTracker) Current() Pointer { return t.cur }

// ShouldTrail reports whether a trail burst is due at now, enforcing the
// per-frame throttle. Touch input passes throttled=false.
func (t *PointerTracker) ShouldTrail(now time.Time, throttled bool) bool {
	if throttled && now.Sub(t.lastTrail) <= trailInterval {
		return false
	}
	t.lastTrail = now
	return true
}

// Trail replaces random particles with short-lived ones around the pointer,
// more of them the faster it moves. It returns how many were placed.
func (f *Field) Trail(ptr Pointer) int {
	if !f.TrailsEnabled() || !ptr.Active || len(f.particles) == 0 {
		return 0
	}
	speed := ptr.Speed()
	if speed < trailMinSpeed {
		return 0
	}
	n := min(trailMaxBurst, int(math.Floor(speed/5)))
	maxV := f.opts.Speed * 2
	for i := 0; i < n; i++ {
		idx := f.rng.IntN(len(f.particles))
		p := f.newParticle()
		p.X = wrap(ptr.X+(f.rng.Float64()-0.5)*trailJitter, f.width)
		p.Y = wrap(ptr.Y+(f.rng.Float64()-0.5)*trailJitter, f.height)
		p.Size = f.rng.Float64()*f.opts.ParticleSize*2 + 1
		p.VX = clamp(ptr.DX*0.1*(f.rng.Float64()-0.5), -maxV, maxV)
		p.VY = clamp(ptr.DY*0.1*(f.rng.Float64()-0.5), -maxV, maxV)
		p.Opacity = 0.8
		p.Hovered = true
		p.Trail = true
		p.Life = 1
		f.particles[idx] = p
	}
	return n
}
