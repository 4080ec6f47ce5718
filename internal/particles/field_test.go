package particles

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func testOptions() Options {
	o := DefaultOptions()
	o.Speed = 1.0
	return o
}

func TestFieldStepKeepsParticlesInBounds(t *testing.T) {
	f := NewField(800, 600, testOptions(), testRand())
	require.Equal(t, 100, f.Spawn(100))

	for i := 0; i < 1000; i++ {
		f.Step(1, Pointer{})
	}

	for i, p := range f.Particles() {
		assert.GreaterOrEqual(t, p.X, 0.0, "particle %d x", i)
		assert.LessOrEqual(t, p.X, 800.0, "particle %d x", i)
		assert.GreaterOrEqual(t, p.Y, 0.0, "particle %d y", i)
		assert.LessOrEqual(t, p.Y, 600.0, "particle %d y", i)
		assert.LessOrEqual(t, math.Abs(p.VX), 2.0, "particle %d vx", i)
		assert.LessOrEqual(t, math.Abs(p.VY), 2.0, "particle %d vy", i)
	}
}

func TestFieldStepWithPointerStaysInBounds(t *testing.T) {
	f := NewField(320, 200, testOptions(), testRand())
	f.Spawn(60)
	var tr PointerTracker

	for i := 0; i < 600; i++ {
		x := 160 + 120*math.Cos(float64(i)/20)
		y := 100 + 80*math.Sin(float64(i)/15)
		ptr := tr.Move(x, y)
		f.Trail(ptr)
		f.Step(1.5, ptr)

		for _, p := range f.Particles() {
			require.True(t, p.X >= 0 && p.X <= 320, "x out of bounds: %v", p.X)
			require.True(t, p.Y >= 0 && p.Y <= 200, "y out of bounds: %v", p.Y)
			require.LessOrEqual(t, math.Abs(p.VX), 2.0)
			require.LessOrEqual(t, math.Abs(p.VY), 2.0)
		}
	}
	assert.Equal(t, 60, f.Len())
}

func TestFieldCountStaysWithinLimits(t *testing.T) {
	f := NewField(100, 100, testOptions(), testRand())

	assert.Equal(t, 100, f.Spawn(500))
	assert.Equal(t, 100, f.Len())
	assert.Equal(t, 0, f.Spawn(1))
	assert.Equal(t, 0, f.Spawn(-3))

	assert.Equal(t, 100, f.Remove(1000))
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, f.Remove(1))
}

func TestFieldPointerRepels(t *testing.T) {
	f := NewField(400, 400, testOptions(), testRand())
	f.Spawn(1)
	p := &f.Particles()[0]
	p.X, p.Y, p.VX, p.VY = 100, 100, 0, 0

	f.Step(1, Pointer{X: 120, Y: 100, Active: true})

	p = &f.Particles()[0]
	assert.Less(t, p.VX, 0.0, "particle should be pushed away from the pointer")
	assert.InDelta(t, 0, p.VY, 1e-9)
	assert.True(t, p.Hovered)

	// force = (100-20)/100 * 3 * 0.01
	assert.InDelta(t, -0.024, p.VX, 1e-9)
}

func TestFieldPointerOutsideRadiusIgnored(t *testing.T) {
	f := NewField(400, 400, testOptions(), testRand())
	f.Spawn(1)
	p := &f.Particles()[0]
	p.X, p.Y, p.VX, p.VY = 100, 100, 0, 0

	f.Step(1, Pointer{X: 300, Y: 300, Active: true})

	assert.Zero(t, f.Particles()[0].VX)
	assert.False(t, f.Particles()[0].Hovered)
}

func TestFieldTrailParticlesDecayAndRespawn(t *testing.T) {
	f := NewField(400, 400, testOptions(), testRand())
	f.Spawn(1)
	p := &f.Particles()[0]
	p.Trail = true
	p.Life = 0.11

	f.Step(1, Pointer{})
	p = &f.Particles()[0]
	require.True(t, p.Trail)
	assert.InDelta(t, 0.1045, p.Life, 1e-9)
	assert.InDelta(t, 0.1045*0.8, p.Opacity, 1e-9)

	f.Step(1, Pointer{})
	p = &f.Particles()[0]
	assert.False(t, p.Trail)
	assert.Equal(t, 1.0, p.Life)
}

func TestFieldTrailRequiresFastPointer(t *testing.T) {
	f := NewField(400, 400, testOptions(), testRand())
	f.Spawn(50)

	assert.Zero(t, f.Trail(Pointer{X: 10, Y: 10, DX: 1, DY: 1, Active: true}))
	assert.Equal(t, 5, f.Trail(Pointer{X: 10, Y: 10, DX: 40, DY: 0, Active: true}))
	assert.Equal(t, 2, f.Trail(Pointer{X: 10, Y: 10, DX: 12, DY: 0, Active: true}))

	trails := 0
	for _, p := range f.Particles() {
		if p.Trail {
			trails++
		}
	}
	assert.Positive(t, trails)
	assert.Equal(t, 50, f.Len())
}

func TestFieldResizeRespawnsInsideNewBounds(t *testing.T) {
	f := NewField(800, 600, testOptions(), testRand())
	f.Spawn(40)

	f.Resize(200, 100)

	assert.Equal(t, 40, f.Len())
	for _, p := range f.Particles() {
		assert.LessOrEqual(t, p.X, 200.0)
		assert.LessOrEqual(t, p.Y, 100.0)
	}
}

func TestSpawnedParticleShape(t *testing.T) {
	o := testOptions()
	o.Palette = []string{"#808080"}
	f := NewField(800, 600, o, testRand())
	f.Spawn(100)

	for _, p := range f.Particles() {
		assert.LessOrEqual(t, math.Abs(p.VX), o.Speed/2)
		assert.LessOrEqual(t, math.Abs(p.VY), o.Speed/2)
		assert.GreaterOrEqual(t, p.Size, 1.0)
		assert.Less(t, p.Size, 1+o.ParticleSize)
		assert.InDelta(t, 128, int(p.Color.R), 15)
		assert.InDelta(t, 128, int(p.Color.B), 15)
		assert.Equal(t, 1.0, p.Life)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, max, want float64
	}{
		{v: 10, max: 100, want: 10},
		{v: 0, max: 100, want: 0},
		{v: 100, max: 100, want: 100},
		{v: 101, max: 100, want: 1},
		{v: -1, max: 100, want: 99},
		{v: 350, max: 100, want: 50},
		{v: 5, max: 0, want: 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrap(tt.v, tt.max), 1e-9, "wrap(%v, %v)", tt.v, tt.max)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#64ffda")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 100, G: 255, B: 218}, c)
	assert.Equal(t, "#64ffda", c.Hex())

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 255, B: 255}, c)

	c, err = ParseColor("rgb(59, 130, 246)")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 59, G: 130, B: 246}, c)

	for _, bad := range []string{"blue", "#12345", "rgb(1,2)", "rgb(1,2,300)"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	o := DefaultOptions()
	o.TrailDecay = 1
	assert.Error(t, o.Validate())

	o = DefaultOptions()
	o.Palette = []string{"nope"}
	assert.Error(t, o.Validate())

	o = DefaultOptions()
	o.MaxParticles = -1
	assert.Error(t, o.Validate())
}
