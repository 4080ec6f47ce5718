package particles

import (
	"math"
	"time"
)

// State is the throttling state of a Controller.
type State int

const (
	Normal State = iota
	Throttled
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Throttled:
		return "throttled"
	}
	return "unknown"
}

const (
	sampleInterval  = time.Second
	adjustInterval  = 5 * time.Second
	lowFPS          = 30
	highFPS         = 55
	minAdaptiveSize = 20
	dropFraction    = 0.1
	growStep        = 5
	thresholdShrink = 0.9
)

// Adjustment describes one change made by the controller.
type Adjustment struct {
	FPS       int
	Removed   int
	Added     int
	Count     int
	Threshold float64
	State     State
}

// Controller samples the frame rate once per second and resizes the field to
// keep frames inside the budget.
type Controller struct {
	field   *Field
	enabled bool

	started    bool
	frames     int
	fps        int
	lastSample time.Time
	lastAdjust time.Time
	state      State
}

// NewController binds a controller to f. When adaptive is false it only
// measures the frame rate.
func NewController(f *Field, adaptive bool) *Controller {
	return &Controller{field: f, enabled: adaptive, fps: 60}
}

// FPS is the most recent sample.
func (c *Controller) FPS() int { return c.fps }

// State reports whether the field is currently throttled.
func (c *Controller) State() State { return c.state }

// Frame counts one rendered frame at now. When the frame completes a sample
// window and an adjustment is due, it resizes the field and returns the
// change with ok set.
func (c *Controller) Frame(now time.Time) (adj Adjustment, ok bool) {
	if !c.started {
		c.started = true
		c.lastSample = now
		c.lastAdjust = now
		return Adjustment{}, false
	}
	c.frames++

	elapsed := now.Sub(c.lastSample)
	if elapsed <= sampleInterval {
		return Adjustment{}, false
	}
	c.fps = int(math.Round(float64(c.frames) / elapsed.Seconds()))
	c.frames = 0
	c.lastSample = now

	if !c.enabled || now.Sub(c.lastAdjust) <= adjustInterval {
		return Adjustment{}, false
	}
	c.lastAdjust = now

	f := c.field
	adj = Adjustment{FPS: c.fps}
	switch {
	case c.fps < lowFPS && f.Len() > minAdaptiveSize:
		adj.Removed = f.Remove(int(math.Ceil(float64(f.Len()) * dropFraction)))
		f.ShrinkThreshold(thresholdShrink)
		c.state = Throttled
	case c.fps > highFPS && f.Len() < f.Max():
		adj.Added = f.Spawn(min(growStep, f.Max()-f.Len()))
		if f.Len() >= f.Max() {
			c.state = Normal
		}
	default:
		return Adjustment{}, false
	}
	adj.Count = f.Len()
	adj.Threshold = f.Threshold()
	adj.State = c.state
	return adj, true
}

// Reset forgets the sampling window, used when the loop resumes after a pause
// so the paused time is not counted as a slow frame.
func (c *Controller) Reset() {
	c.started = false
	c.frames = 0
}
