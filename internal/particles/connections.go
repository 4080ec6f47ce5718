package particles

import "math"

// Segment is one connection line between particles A and B.
type Segment struct {
	A, B           int
	X1, Y1, X2, Y2 float64
	Opacity        float64
}

// Connections appends a segment to dst for every unordered pair closer than
// threshold. Opacity fades linearly from baseOpacity at distance 0 to 0 at the
// threshold. The cost is quadratic in len(ps).
func Connections(dst []Segment, ps []Particle, threshold, baseOpacity float64) []Segment {
	if threshold <= 0 {
		return dst
	}
	t2 := threshold * threshold
	for i := 0; i < len(ps); i++ {
		a := &ps[i]
		for j := i + 1; j < len(ps); j++ {
			b := &ps[j]
			dx := a.X - b.X
			dy := a.Y - b.Y
			d2 := dx*dx + dy*dy
			if d2 >= t2 {
				continue
			}
			d := math.Sqrt(d2)
			dst = append(dst, Segment{
				A: i, B: j,
				X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
				Opacity: (1 - d/threshold) * baseOpacity,
			})
		}
	}
	return dst
}

// Connections returns the field's segments for this frame, or dst unchanged
// in low-power mode.
func (f *Field) Connections(dst []Segment) []Segment {
	if f.lowPower {
		return dst
	}
	return Connections(dst, f.particles, f.threshold, f.opts.ConnectionOpacity)
}
