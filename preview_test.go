package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/meliem/meliem.github.io/internal/particles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreview(t *testing.T, cols, rows int) (*preview, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(cols, rows)

	p := newPreview(screen, simOptions{fps: 30, seed: 7}, particles.DefaultOptions())
	t.Cleanup(p.sys.Close)
	return p, screen
}

func TestPreviewSizesFieldToScreen(t *testing.T) {
	p, _ := newTestPreview(t, 100, 31)

	w, h := p.sys.Field.Bounds()
	assert.Equal(t, 100*cellW, w)
	assert.Equal(t, 30*cellH, h, "the last row holds the status line")
	assert.Equal(t, 100, p.sys.Field.Len())
}

func TestPreviewKeys(t *testing.T) {
	p, _ := newTestPreview(t, 80, 25)
	now := time.Now()

	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone), now))
	assert.Equal(t, 95, p.sys.Field.Len())
	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone), now))
	assert.Equal(t, 100, p.sys.Field.Len())

	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), now))
	assert.False(t, p.sys.Gate.Open())
	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), now))
	assert.True(t, p.sys.Gate.Open())

	assert.True(t, p.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), now))
	assert.True(t, p.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), now))
}

func TestPreviewFocusGatesFrames(t *testing.T) {
	p, _ := newTestPreview(t, 80, 25)
	now := time.Now()

	p.frame(now)
	frames := p.sys.Loop.Frames()

	p.handle(tcell.NewEventFocus(false), now)
	p.frame(now.Add(time.Second / 30))
	assert.Equal(t, frames, p.sys.Loop.Frames())

	p.handle(tcell.NewEventFocus(true), now)
	p.frame(now.Add(2 * time.Second / 30))
	assert.Equal(t, frames+1, p.sys.Loop.Frames())
}

func TestPreviewMouseMovesPointer(t *testing.T) {
	p, _ := newTestPreview(t, 80, 25)

	p.handle(tcell.NewEventMouse(10, 5, tcell.ButtonNone, tcell.ModNone), time.Now())

	ptr := p.sys.Pointer.Current()
	assert.True(t, ptr.Active)
	assert.InDelta(t, 10.5*cellW, ptr.X, 1e-9)
	assert.InDelta(t, 5.5*cellH, ptr.Y, 1e-9)
}

func TestPreviewResize(t *testing.T) {
	p, screen := newTestPreview(t, 80, 25)

	screen.SetSize(40, 11)
	p.handle(tcell.NewEventResize(40, 11), time.Now())

	w, h := p.sys.Field.Bounds()
	assert.Equal(t, 40*cellW, w)
	assert.Equal(t, 10*cellH, h)
	assert.Equal(t, 100, p.sys.Field.Len())
}

func TestPreviewDrawsParticlesAndStatus(t *testing.T) {
	p, screen := newTestPreview(t, 80, 25)
	p.frame(time.Now())

	drawn := 0
	for y := 0; y < 24; y++ {
		for x := 0; x < 80; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r == '•' || r == '●' {
				drawn++
			}
		}
	}
	assert.Positive(t, drawn)

	var status []rune
	for x := 0; x < 14; x++ {
		r, _, _, _ := screen.GetContent(x, 24)
		status = append(status, r)
	}
	assert.Equal(t, " 100 particles", string(status))
}

func TestDrawTextAdvancesByRune(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(20, 2)

	next := drawText(screen, 0, 0, 20, "ça ñô ok", tcell.StyleDefault)
	assert.Equal(t, 8, next)

	var got []rune
	for x := 0; x < next; x++ {
		r, _, _, _ := screen.GetContent(x, 0)
		got = append(got, r)
	}
	assert.Equal(t, "ça ñô ok", string(got))

	// A wide rune that would straddle the edge is dropped.
	next = drawText(screen, 0, 1, 3, "ab世", tcell.StyleDefault)
	assert.Equal(t, 2, next)
	r, _, _, _ := screen.GetContent(2, 1)
	assert.Equal(t, ' ', r)
}
