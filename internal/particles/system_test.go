package particles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemSeedsFromProfile(t *testing.T) {
	opts := DefaultOptions()
	profile := DetectProfile(opts, Hints{Mobile: true})

	s := NewSystem(375, 667, opts, profile, testRand(), nil)

	assert.Equal(t, 50, s.Field.Len())
	assert.Equal(t, 50, s.Field.Max())
	assert.InDelta(t, 105, s.Field.Threshold(), 1e-9)
	assert.False(t, s.Field.TrailsEnabled())
	assert.Equal(t, profile, s.Profile())
}

func TestSystemPointerTrails(t *testing.T) {
	opts := DefaultOptions()
	s := NewSystem(800, 600, opts, DetectProfile(opts, Hints{}), testRand(), nil)

	now := epoch
	s.MovePointer(100, 100, now, false)
	now = now.Add(20 * time.Millisecond)
	s.MovePointer(160, 100, now, false)

	trails := 0
	for _, p := range s.Field.Particles() {
		if p.Trail {
			trails++
		}
	}
	// Five replacements, possibly landing on the same slot twice.
	assert.Positive(t, trails)
	assert.LessOrEqual(t, trails, 5)

	// Within the 16ms throttle no new burst is placed.
	now = now.Add(5 * time.Millisecond)
	before := append([]Particle(nil), s.Field.Particles()...)
	s.MovePointer(220, 100, now, false)
	assert.Equal(t, before, s.Field.Particles())

	s.LeavePointer()
	assert.False(t, s.Pointer.Current().Active)
}

func TestSystemFramesAndAdjustments(t *testing.T) {
	opts := DefaultOptions()
	var adjs []Adjustment
	s := NewSystem(800, 600, opts, DetectProfile(opts, Hints{}), testRand(), func(a Adjustment) {
		adjs = append(adjs, a)
	})

	// 20 fps for a little over six seconds.
	now := epoch
	for i := 0; i < 130; i++ {
		s.Loop.Tick(now)
		now = now.Add(50 * time.Millisecond)
	}

	require.Len(t, adjs, 1)
	assert.Equal(t, 90, s.Field.Len())
	assert.NotEmpty(t, s.Segments())
}

func TestSystemCloseStopsLoop(t *testing.T) {
	opts := DefaultOptions()
	s := NewSystem(800, 600, opts, DetectProfile(opts, Hints{}), testRand(), nil)
	require.True(t, s.Loop.Tick(epoch))

	s.Close()

	assert.False(t, s.Loop.Tick(epoch.Add(frameDuration)))
}
