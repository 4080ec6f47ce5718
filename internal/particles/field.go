package particles

import (
	"math"
	"math/rand/v2"
)

const (
	// trailFloor is the life below which a faded trail particle is respawned.
	trailFloor = 0.1
	// impulseScale converts the configured interaction force into a per-frame
	// velocity change.
	impulseScale = 0.01
)

// Field owns the particles and advances them one tick at a time.
type Field struct {
	opts    Options
	palette []Color
	rng     *rand.Rand

	width, height float64
	particles     []Particle

	threshold float64
	radius    float64
	max       int
	lowPower  bool
	trails    bool
}

// NewField builds an empty field of the given size. A nil rng seeds one from
// the runtime source.
func NewField(width, height float64, opts Options, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f := &Field{
		opts:      opts,
		palette:   opts.palette(),
		rng:       rng,
		width:     math.Max(width, 0),
		height:    math.Max(height, 0),
		threshold: opts.ConnectionThreshold,
		radius:    opts.Radius,
		max:       max(opts.MaxParticles, 0),
		trails:    opts.MotionTrails,
	}
	f.particles = make([]Particle, 0, f.max)
	return f
}

// Len is the current particle count.
func (f *Field) Len() int { return len(f.particles) }

// Max is the configured particle ceiling.
func (f *Field) Max() int { return f.max }

// Particles exposes the live slice for renderers. Callers must not append to it.
func (f *Field) Particles() []Particle { return f.particles }

// Bounds returns the canvas size.
func (f *Field) Bounds() (width, height float64) { return f.width, f.height }

// Threshold is the current connection distance.
func (f *Field) Threshold() float64 { return f.threshold }

// Radius is the current pointer influence radius.
func (f *Field) Radius() float64 { return f.radius }

// LowPower reports whether connections and trails are suppressed.
func (f *Field) LowPower() bool { return f.lowPower }

// TrailsEnabled reports whether pointer motion spawns trail particles.
func (f *Field) TrailsEnabled() bool { return f.trails && !f.lowPower }

// Options returns the settings the field was built with.
func (f *Field) Options() Options { return f.opts }

// Spawn adds up to count fresh particles without passing the maximum and
// returns how many were added.
func (f *Field) Spawn(count int) int {
	room := f.max - len(f.particles)
	if count > room {
		count = room
	}
	if count <= 0 {
		return 0
	}
	for i := 0; i < count; i++ {
		f.particles = append(f.particles, f.newParticle())
	}
	return count
}

// Remove drops up to count particles from the front of the slice, the
// oldest ones, and returns how many were removed.
func (f *Field) Remove(count int) int {
	if count > len(f.particles) {
		count = len(f.particles)
	}
	if count <= 0 {
		return 0
	}
	f.particles = append(f.particles[:0], f.particles[count:]...)
	return count
}

// Resize changes the canvas size and recreates the field at the same count.
func (f *Field) Resize(width, height float64) {
	n := len(f.particles)
	f.width = math.Max(width, 0)
	f.height = math.Max(height, 0)
	f.particles = f.particles[:0]
	f.Spawn(n)
}

// Step advances every particle by dt frames (1 = one 60 Hz frame) and applies
// the pointer repulsion when ptr is active.
func (f *Field) Step(dt float64, ptr Pointer) {
	if dt <= 0 {
		return
	}
	maxV := f.opts.Speed * 2
	decay := math.Pow(f.opts.TrailDecay, dt)

	for i := range f.particles {
		p := &f.particles[i]

		p.X = wrap(p.X+p.VX*dt, f.width)
		p.Y = wrap(p.Y+p.VY*dt, f.height)

		if p.Trail {
			p.Life *= decay
			p.Opacity = p.Life * 0.8
			if p.Life < trailFloor {
				*p = f.newParticle()
				continue
			}
		}

		p.Hovered = false
		if ptr.Active {
			dx := ptr.X - p.X
			dy := ptr.Y - p.Y
			dist := math.Hypot(dx, dy)
			if dist < f.radius && dist > 0 {
				p.Hovered = true
				force := (f.radius - dist) / f.radius
				p.VX -= dx / dist * force * f.opts.InteractionForce * impulseScale * dt
				p.VY -= dy / dist * force * f.opts.InteractionForce * impulseScale * dt
			}
		}

		p.VX = clamp(p.VX, -maxV, maxV)
		p.VY = clamp(p.VY, -maxV, maxV)
		p.Phase += p.PulseRate * dt
		if p.Phase > 2*math.Pi {
			p.Phase -= 2 * math.Pi
		}
	}
}

// ShrinkThreshold scales the connection threshold down by factor.
func (f *Field) ShrinkThreshold(factor float64) {
	f.threshold *= factor
}

// applyProfile installs the budget a Profile derived for this device.
func (f *Field) applyProfile(p Profile) {
	f.max = max(p.MaxParticles, 0)
	f.threshold = p.ConnectionThreshold
	f.radius = p.Radius
	f.trails = p.Trails
	f.lowPower = p.LowPower
	if len(f.particles) > f.max {
		f.Remove(len(f.particles) - f.max)
	}
}

func (f *Field) newParticle() Particle {
	speed := f.opts.Speed
	opacity := f.rng.Float64()*0.5 + 0.3
	return Particle{
		X:           f.rng.Float64() * f.width,
		Y:           f.rng.Float64() * f.height,
		VX:          (f.rng.Float64() - 0.5) * speed,
		VY:          (f.rng.Float64() - 0.5) * speed,
		Size:        f.rng.Float64()*f.opts.ParticleSize + 1,
		Color:       f.jitterColor(),
		Opacity:     opacity,
		BaseOpacity: opacity,
		Depth:       0.2 + f.rng.Float64()*0.8,
		Phase:       f.rng.Float64() * 2 * math.Pi,
		PulseRate:   f.rng.Float64()*0.04 + 0.01,
		Life:        1,
	}
}

func (f *Field) jitterColor() Color {
	base := f.palette[f.rng.IntN(len(f.palette))]
	j := f.opts.ColorJitter
	ch := func(v uint8) uint8 {
		return uint8(clamp(float64(v)+(f.rng.Float64()-0.5)*j, 0, 255))
	}
	return Color{R: ch(base.R), G: ch(base.G), B: ch(base.B)}
}
