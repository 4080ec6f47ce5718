package particles

import "fmt"

// Options configures a field. Field names mirror the YAML keys of the
// particles section in the site configuration.
type Options struct {
	MaxParticles        int      `yaml:"max_particles" json:"max_particles"`
	ParticleSize        float64  `yaml:"particle_size" json:"particle_size"`
	Palette             []string `yaml:"palette" json:"palette"`
	ColorJitter         float64  `yaml:"color_jitter" json:"color_jitter"`
	ConnectionColor     string   `yaml:"connection_color" json:"connection_color"`
	ConnectionOpacity   float64  `yaml:"connection_opacity" json:"connection_opacity"`
	ConnectionThreshold float64  `yaml:"connection_threshold" json:"connection_threshold"`
	Speed               float64  `yaml:"speed" json:"speed"`
	Radius              float64  `yaml:"radius" json:"radius"`
	InteractionForce    float64  `yaml:"interaction_force" json:"interaction_force"`
	AdaptivePerformance bool     `yaml:"adaptive_performance" json:"adaptive_performance"`
	MotionTrails        bool     `yaml:"motion_trails" json:"motion_trails"`
	TrailDecay          float64  `yaml:"trail_decay" json:"trail_decay"`
}

// DefaultOptions returns the homepage field settings.
func DefaultOptions() Options {
	return Options{
		MaxParticles:        100,
		ParticleSize:        2,
		Palette:             []string{"#64ffda"},
		ColorJitter:         30,
		ConnectionColor:     "#64ffda",
		ConnectionOpacity:   0.2,
		ConnectionThreshold: 150,
		Speed:               0.5,
		Radius:              100,
		InteractionForce:    3,
		AdaptivePerformance: true,
		MotionTrails:        true,
		TrailDecay:          0.95,
	}
}

// Validate reports the first setting a field cannot run with.
func (o Options) Validate() error {
	if o.MaxParticles < 0 {
		return fmt.Errorf("max_particles must not be negative, got %d", o.MaxParticles)
	}
	if o.Speed < 0 {
		return fmt.Errorf("speed must not be negative, got %g", o.Speed)
	}
	if o.ConnectionThreshold < 0 {
		return fmt.Errorf("connection_threshold must not be negative, got %g", o.ConnectionThreshold)
	}
	if o.TrailDecay < 0 || o.TrailDecay >= 1 {
		return fmt.Errorf("trail_decay must be in [0,1), got %g", o.TrailDecay)
	}
	for _, c := range append(append([]string(nil), o.Palette...), o.ConnectionColor) {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) palette() []Color {
	out := make([]Color, 0, len(o.Palette))
	for _, s := range o.Palette {
		if c, err := ParseColor(s); err == nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		// #64ffda
		out = append(out, Color{R: 100, G: 255, B: 218})
	}
	return out
}
