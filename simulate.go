package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meliem/meliem.github.io/internal/particles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// simOptions are the flags shared by simulate and preview.
type simOptions struct {
	width, height float64
	fps           int
	duration      time.Duration
	seed          uint64
	mobile        bool
	reducedMotion bool
	virtual       bool
}

var simFlags simOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the particle field headless and log controller decisions",
	Long: `Runs the homepage particle field without drawing it. Frames are driven at
--fps, so a low value shows the controller shedding particles and a high one
shows it growing back to the configured maximum. Without --fps the rate is the
profile's target: 60, or 30 for a low-power device.

With --virtual the clock is simulated and the run finishes immediately.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simFlags.width, "width", 1280, "Canvas width")
	f.Float64Var(&simFlags.height, "height", 720, "Canvas height")
	f.IntVar(&simFlags.fps, "fps", 0, "Frames per second to drive (0 uses the profile target)")
	f.DurationVar(&simFlags.duration, "duration", 15*time.Second, "How long to run")
	f.Uint64Var(&simFlags.seed, "seed", 0, "Random seed (0 picks one)")
	f.BoolVar(&simFlags.mobile, "mobile", false, "Seed the field with the mobile profile")
	f.BoolVar(&simFlags.reducedMotion, "reduced-motion", false, "Seed the field with the low-power profile")
	f.BoolVar(&simFlags.virtual, "virtual", false, "Use a simulated clock")
}

func (o simOptions) rng() *rand.Rand {
	seed := o.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (o simOptions) profile(opts particles.Options) particles.Profile {
	return particles.DetectProfile(opts, particles.Hints{
		Mobile:        o.mobile,
		ReducedMotion: o.reducedMotion,
	})
}

// frameRate is the --fps value, or the profile's target when the flag is unset.
func (o simOptions) frameRate(p particles.Profile) int {
	if o.fps > 0 {
		return o.fps
	}
	if p.TargetFPS > 0 {
		return p.TargetFPS
	}
	return 60
}

// simulation runs a system and collects what the controller did.
type simulation struct {
	sys         *particles.System
	adjustments []particles.Adjustment
}

func newSimulation(o simOptions, opts particles.Options, log *zap.Logger) *simulation {
	s := &simulation{}
	s.sys = particles.NewSystem(o.width, o.height, opts, o.profile(opts), o.rng(), func(adj particles.Adjustment) {
		s.adjustments = append(s.adjustments, adj)
		log.Info("Controller adjusted",
			zap.Int("fps", adj.FPS),
			zap.Int("removed", adj.Removed),
			zap.Int("added", adj.Added),
			zap.Int("count", adj.Count),
			zap.Float64("threshold", adj.Threshold),
			zap.Stringer("state", adj.State))
	})
	return s
}

// runVirtual ticks the loop fps times per simulated second for d.
func (s *simulation) runVirtual(fps int, d time.Duration) {
	rate := time.Duration(max(fps, 1))
	start := time.Now()
	for i := range int64(d * rate / time.Second) {
		s.sys.Loop.Tick(start.Add(time.Duration(i) * time.Second / rate))
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts := cfg.Particles
	sim := newSimulation(simFlags, opts, logger)
	defer sim.sys.Close()

	p := sim.sys.Profile()
	fps := simFlags.frameRate(p)
	logger.Info("Starting simulation",
		zap.Float64("width", simFlags.width),
		zap.Float64("height", simFlags.height),
		zap.Int("particles", sim.sys.Field.Len()),
		zap.Bool("mobile", p.Mobile),
		zap.Bool("low_power", p.LowPower),
		zap.Int("fps", fps),
		zap.Duration("duration", simFlags.duration))

	started := time.Now()
	if simFlags.virtual {
		sim.runVirtual(fps, simFlags.duration)
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), simFlags.duration)
		defer cancel()
		if err := sim.sys.Loop.Run(ctx, fps); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	frames := sim.sys.Loop.Frames()
	fmt.Fprintf(cmd.OutOrStdout(),
		"%s frames in %s, %d particles, threshold %.1f, %d connections, state %s, %d adjustments\n",
		humanize.Comma(int64(frames)),
		time.Since(started).Round(time.Millisecond),
		sim.sys.Field.Len(),
		sim.sys.Field.Threshold(),
		len(sim.sys.Segments()),
		sim.sys.Controller.State(),
		len(sim.adjustments))
	return nil
}
