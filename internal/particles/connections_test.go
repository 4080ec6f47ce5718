package particles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionsThreshold(t *testing.T) {
	ps := []Particle{
		{X: 0, Y: 0},
		{X: 150, Y: 0},
		{X: 0, Y: 149},
	}

	segs := Connections(nil, ps, 150, 0.2)

	// 0-1 is exactly at the threshold, 1-2 is beyond it.
	require.Len(t, segs, 1)
	assert.Equal(t, 0, segs[0].A)
	assert.Equal(t, 2, segs[0].B)
	assert.InDelta(t, (1-149.0/150)*0.2, segs[0].Opacity, 1e-12)
}

func TestConnectionsMatchBruteForce(t *testing.T) {
	f := NewField(500, 400, testOptions(), testRand())
	f.Spawn(80)
	for i := 0; i < 50; i++ {
		f.Step(1, Pointer{})
	}
	ps := f.Particles()
	const threshold = 90.0

	segs := Connections(nil, ps, threshold, 1)

	linked := make(map[[2]int]bool, len(segs))
	for _, s := range segs {
		d := math.Hypot(ps[s.A].X-ps[s.B].X, ps[s.A].Y-ps[s.B].Y)
		require.Less(t, d, threshold)
		require.InDelta(t, 1-d/threshold, s.Opacity, 1e-9)
		linked[[2]int{s.A, s.B}] = true
	}
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			d := math.Hypot(ps[i].X-ps[j].X, ps[i].Y-ps[j].Y)
			assert.Equal(t, d < threshold, linked[[2]int{i, j}], "pair %d-%d at %.2f", i, j, d)
		}
	}
}

func TestConnectionsReuseDestination(t *testing.T) {
	ps := []Particle{{X: 0, Y: 0}, {X: 1, Y: 0}}
	buf := make([]Segment, 0, 4)

	out := Connections(buf, ps, 10, 1)
	require.Len(t, out, 1)
	assert.Same(t, &buf[:1][0], &out[0])

	assert.Empty(t, Connections(nil, ps, 0, 1))
}

func TestFieldConnectionsSkippedInLowPower(t *testing.T) {
	f := NewField(100, 100, testOptions(), testRand())
	f.Spawn(30)
	require.NotEmpty(t, f.Connections(nil))

	f.applyProfile(DetectProfile(f.Options(), Hints{ReducedMotion: true}))

	assert.Empty(t, f.Connections(nil))
}
