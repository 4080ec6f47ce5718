package particles

import (
	"math/rand/v2"
	"time"
)

// System wires a field to its controller, pointer, gate and loop: the
// complete animation for one canvas.
type System struct {
	Field      *Field
	Controller *Controller
	Pointer    *PointerTracker
	Gate       *Gate
	Loop       *Loop
	Registry   *Registry

	profile  Profile
	onAdjust func(Adjustment)
	segments []Segment
}

// NewSystem seeds a field for the given profile and spawns its starting
// particles. onAdjust, when set, is told about every controller change.
func NewSystem(width, height float64, opts Options, profile Profile, rng *rand.Rand, onAdjust func(Adjustment)) *System {
	f := NewField(width, height, opts, rng)
	f.applyProfile(profile)
	f.Spawn(f.Max())

	s := &System{
		Field:      f,
		Controller: NewController(f, opts.AdaptivePerformance),
		Pointer:    &PointerTracker{},
		Gate:       NewGate(),
		Registry:   &Registry{},
		profile:    profile,
		onAdjust:   onAdjust,
	}
	s.Loop = NewLoop(s.Gate, s.frame, s.Controller.Reset)
	s.Registry.Register(s.Loop.Stop)
	return s
}

// Profile returns the seeded device profile.
func (s *System) Profile() Profile { return s.profile }

func (s *System) frame(now time.Time, dt float64) {
	s.Field.Step(dt, s.Pointer.Current())
	if adj, ok := s.Controller.Frame(now); ok && s.onAdjust != nil {
		s.onAdjust(adj)
	}
}

// MovePointer feeds a mouse (throttled) or touch (unthrottled) move event.
func (s *System) MovePointer(x, y float64, now time.Time, touch bool) {
	ptr := s.Pointer.Move(x, y)
	if s.Field.TrailsEnabled() && s.Pointer.ShouldTrail(now, !touch) {
		s.Field.Trail(ptr)
	}
}

// LeavePointer clears the pointer.
func (s *System) LeavePointer() { s.Pointer.Leave() }

// Segments returns this frame's connection lines. The slice is reused
// between calls.
func (s *System) Segments() []Segment {
	s.segments = s.Field.Connections(s.segments[:0])
	return s.segments
}

// Resize adapts the canvas.
func (s *System) Resize(width, height float64) { s.Field.Resize(width, height) }

// Close stops the loop and runs every registered cleanup.
func (s *System) Close() { s.Registry.Cleanup() }
