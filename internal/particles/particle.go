// Package particles implements the interactive particle field drawn behind the
// portfolio pages: a flat slice of particles advanced one frame at a time, a
// pointer repulsion effect, proximity connections, an adaptive performance
// controller and a visibility gate that pauses the frame loop.
//
// Everything in this package is single-threaded and frame-driven except the
// Gate, which may be flipped from another goroutine.
package particles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an opaque RGB triple. Opacity is tracked per particle.
type Color struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts "#rrggbb", "#rgb" and "rgb(r, g, b)".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid rgb color %q", s)
		}
		var ch [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return Color{}, fmt.Errorf("invalid rgb component %q in %q", p, s)
			}
			ch[i] = uint8(n)
		}
		return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
	}
	return Color{}, fmt.Errorf("unrecognized color %q", s)
}

// Particle is one point of the field. Life is 1 for regular particles; trail
// particles start at 1 and decay below it, and are respawned once faded.
type Particle struct {
	X, Y   float64
	VX, VY float64

	Size        float64
	Color       Color
	Opacity     float64
	BaseOpacity float64

	// Depth in (0,1] scales the drawn size and opacity for a parallax look.
	Depth float64
	// Phase drives the size/opacity pulse, advanced by PulseRate per frame.
	Phase     float64
	PulseRate float64

	Life    float64
	Trail   bool
	Hovered bool
}

// DrawSize is the radius a renderer should use this frame.
func (p *Particle) DrawSize() float64 {
	s := p.Size * (1 + 0.2*math.Sin(p.Phase)) * (0.6 + 0.4*p.Depth)
	if p.Hovered {
		s *= 1.5
	}
	return s
}

// DrawOpacity is the fill alpha in [0,1] a renderer should use this frame.
func (p *Particle) DrawOpacity() float64 {
	return clamp(p.Opacity*(0.5+0.5*p.Depth), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrap folds v into [0, max]. A zero-sized axis pins everything to 0.
func wrap(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	if v >= 0 && v <= max {
		return v
	}
	v = math.Mod(v, max)
	if v < 0 {
		v += max
	}
	return v
}
