package particles

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// mobileWidth is the viewport width below which a device counts as mobile.
const mobileWidth = 768

// Hints are the device signals available before the first frame.
type Hints struct {
	UserAgent     string  `json:"user_agent,omitempty"`
	Mobile        bool    `json:"mobile"`
	ViewportWidth int     `json:"viewport_width,omitempty"`
	ReducedMotion bool    `json:"reduced_motion"`
	SaveData      bool    `json:"save_data"`
	BatteryKnown  bool    `json:"battery_known"`
	BatteryLevel  float64 `json:"battery_level,omitempty"`
	Charging      bool    `json:"charging"`
}

// Profile is the starting budget seeded from Hints.
type Profile struct {
	Mobile              bool    `json:"mobile"`
	LowPower            bool    `json:"low_power"`
	MaxParticles        int     `json:"max_particles"`
	ConnectionThreshold float64 `json:"connection_threshold"`
	Radius              float64 `json:"radius"`
	Trails              bool    `json:"trails"`
	Connections         bool    `json:"connections"`
	TargetFPS           int     `json:"target_fps"`
}

// IsMobileUserAgent matches the usual phone and tablet tokens.
func IsMobileUserAgent(ua string) bool {
	for _, tok := range []string{"Mobi", "Android", "iPhone", "iPad", "iPod"} {
		if strings.Contains(ua, tok) {
			return true
		}
	}
	return false
}

// DetectProfile scales opts down for the device described by h. Low power
// (reduced motion, save-data, a weak or unplugged battery) keeps 60% of the
// particles, 80% of the distances and drops trails and connections. Mobile
// then halves the count, keeps 70% of the threshold and drops trails.
func DetectProfile(opts Options, h Hints) Profile {
	mobile := h.Mobile || IsMobileUserAgent(h.UserAgent) ||
		(h.ViewportWidth > 0 && h.ViewportWidth < mobileWidth)
	lowPower := h.ReducedMotion || h.SaveData ||
		(h.BatteryKnown && (h.BatteryLevel < 0.2 || !h.Charging))

	p := Profile{
		Mobile:              mobile,
		LowPower:            lowPower,
		MaxParticles:        opts.MaxParticles,
		ConnectionThreshold: opts.ConnectionThreshold,
		Radius:              opts.Radius,
		Trails:              opts.MotionTrails && !mobile,
		Connections:         true,
		TargetFPS:           60,
	}
	if lowPower {
		p.MaxParticles = int(math.Floor(float64(p.MaxParticles) * 0.6))
		p.ConnectionThreshold *= 0.8
		p.Radius *= 0.8
		p.Trails = false
		p.Connections = false
		p.TargetFPS = 30
	}
	if mobile {
		p.MaxParticles = int(math.Floor(float64(p.MaxParticles) * 0.5))
		p.ConnectionThreshold *= 0.7
		p.Trails = false
	}
	return p
}

// HintsFromHeader reads the request headers and client hints a browser sends:
// User-Agent, Sec-CH-UA-Mobile, Sec-CH-Viewport-Width,
// Sec-CH-Prefers-Reduced-Motion and Save-Data.
func HintsFromHeader(h http.Header) Hints {
	hints := Hints{
		UserAgent:     h.Get("User-Agent"),
		Mobile:        h.Get("Sec-CH-UA-Mobile") == "?1",
		ReducedMotion: strings.EqualFold(h.Get("Sec-CH-Prefers-Reduced-Motion"), "reduce"),
		SaveData:      strings.EqualFold(h.Get("Save-Data"), "on"),
	}
	if w, err := strconv.Atoi(h.Get("Sec-CH-Viewport-Width")); err == nil {
		hints.ViewportWidth = w
	}
	return hints
}
