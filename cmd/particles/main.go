// Command particles opens the homepage particle field in a desktop window.
// It reads the same configuration file as the server, so palette and budget
// changes can be tried without a browser.
package main

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/meliem/meliem.github.io/internal/config"
	"github.com/meliem/meliem.github.io/internal/logging"
	"github.com/meliem/meliem.github.io/internal/particles"
	"github.com/quasilyte/gdata/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var background = color.RGBA{R: 10, G: 25, B: 47, A: 255}

var (
	configPath    string
	verbose       bool
	mobile        bool
	reducedMotion bool
	seed          uint64
	memoryOnly    bool
)

var rootCmd = &cobra.Command{
	Use:   "particles",
	Short: "Open the particle field in a window",
	Long: `Opens the homepage particle field in a resizable window. Move the mouse or
drag a finger to push particles around. The field pauses while the window is
unfocused.

Keys: Esc quits, P pauses, Up and Down change the particle budget.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "portfolio.yaml", "Config file path")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	f.BoolVar(&mobile, "mobile", false, "Seed the field with the mobile profile")
	f.BoolVar(&reducedMotion, "reduced-motion", false, "Seed the field with the low-power profile")
	f.Uint64Var(&seed, "seed", 0, "Random seed (0 reuses the saved one or picks one)")
	f.BoolVar(&memoryOnly, "no-save", false, "Do not persist window settings")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var m *gdata.Manager
	if !memoryOnly {
		m, err = gdata.Open(gdata.Config{AppName: "portfolio_particles"})
		if err != nil {
			logger.Warn("Settings storage unavailable, using defaults", zap.Error(err))
			m = nil
		}
	}
	store, err := newSettingsStore(m)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", zap.Error(err))
	}

	s := store.Get()
	if cmd.Flags().Changed("mobile") {
		s.Mobile = mobile
	}
	if cmd.Flags().Changed("reduced-motion") {
		s.ReducedMotion = reducedMotion
	}
	if seed != 0 {
		s.Seed = seed
	}
	if s.Seed == 0 {
		s.Seed = rand.Uint64()
	}
	store.Set(s)

	v := newViewer(cfg.Particles, s, logger)
	defer v.sys.Close()

	ebiten.SetWindowTitle("Particles")
	ebiten.SetWindowSize(s.Width, s.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(v.sys.Profile().TargetFPS)

	logger.Info("Opening viewer",
		zap.Int("particles", v.sys.Field.Len()),
		zap.Bool("mobile", s.Mobile),
		zap.Bool("low_power", v.sys.Profile().LowPower),
		zap.Uint64("seed", s.Seed))

	err = ebiten.RunGame(v)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}

	s.Width, s.Height = ebiten.WindowSize()
	store.Set(s)
	if serr := store.Save(); serr != nil {
		logger.Warn("Failed to save settings", zap.Error(serr))
	}
	return err
}

// viewer implements ebiten.Game over a particle system.
type viewer struct {
	sys *particles.System

	width, height int
	line          particles.Color
	touches       []ebiten.TouchID
	lastX, lastY  int
	paused        bool
}

func newViewer(opts particles.Options, s Settings, logger *zap.Logger) *viewer {
	profile := particles.DetectProfile(opts, particles.Hints{
		Mobile:        s.Mobile,
		ReducedMotion: s.ReducedMotion,
		ViewportWidth: s.Width,
	})
	line, err := particles.ParseColor(opts.ConnectionColor)
	if err != nil {
		line = particles.Color{R: 100, G: 255, B: 218}
	}
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	v := &viewer{width: s.Width, height: s.Height, line: line, lastX: -1, lastY: -1}
	v.sys = particles.NewSystem(float64(s.Width), float64(s.Height), opts, profile, rng, func(adj particles.Adjustment) {
		logger.Debug("Controller adjusted",
			zap.Int("fps", adj.FPS),
			zap.Int("count", adj.Count),
			zap.Stringer("state", adj.State))
	})
	return v
}

func (v *viewer) Update() error {
	now := time.Now()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.paused = !v.paused
		v.sys.Gate.SetIntersecting(!v.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		v.sys.Field.Spawn(5)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		v.sys.Field.Remove(5)
	}
	v.sys.Gate.SetDocumentVisible(ebiten.IsFocused())

	v.updatePointer(now)
	v.sys.Loop.Tick(now)
	return nil
}

func (v *viewer) updatePointer(now time.Time) {
	v.touches = ebiten.AppendTouchIDs(v.touches[:0])
	if len(v.touches) > 0 {
		x, y := ebiten.TouchPosition(v.touches[0])
		v.sys.MovePointer(float64(x), float64(y), now, true)
		return
	}

	x, y := ebiten.CursorPosition()
	if x < 0 || y < 0 || x >= v.width || y >= v.height {
		if v.sys.Pointer.Current().Active {
			v.sys.LeavePointer()
		}
		v.lastX, v.lastY = -1, -1
		return
	}
	if x == v.lastX && y == v.lastY {
		return
	}
	v.lastX, v.lastY = x, y
	v.sys.MovePointer(float64(x), float64(y), now, false)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	for _, s := range v.sys.Segments() {
		vector.StrokeLine(screen, float32(s.X1), float32(s.Y1), float32(s.X2), float32(s.Y2), 1,
			color.NRGBA{R: v.line.R, G: v.line.G, B: v.line.B, A: alpha(s.Opacity)}, true)
	}

	ps := v.sys.Field.Particles()
	for i := range ps {
		p := &ps[i]
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(p.DrawSize()),
			color.NRGBA{R: p.Color.R, G: p.Color.G, B: p.Color.B, A: alpha(p.DrawOpacity())}, true)
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.sys.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func alpha(o float64) uint8 {
	return uint8(min(max(o, 0), 1) * 255)
}
