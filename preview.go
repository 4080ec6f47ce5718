package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/meliem/meliem.github.io/internal/particles"
	"github.com/spf13/cobra"
)

// Terminal cells are roughly twice as tall as wide; the field runs in pixel
// units and each cell stands for cellW x cellH of them.
const (
	cellW = 8.0
	cellH = 16.0
)

var previewFlags simOptions

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Draw the particle field in the terminal",
	Long: `Draws the homepage particle field with the terminal as canvas. Move the
mouse to push particles around. The animation pauses while the terminal
window is unfocused, like the page does when its tab is hidden.

Keys: q or Esc quits, p pauses, + and - change the particle budget.`,
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.IntVar(&previewFlags.fps, "fps", 0, "Frames per second (0 uses the profile target)")
	f.Uint64Var(&previewFlags.seed, "seed", 0, "Random seed (0 picks one)")
	f.BoolVar(&previewFlags.mobile, "mobile", false, "Seed the field with the mobile profile")
	f.BoolVar(&previewFlags.reducedMotion, "reduced-motion", false, "Seed the field with the low-power profile")
}

// preview draws a particle system onto a tcell screen.
type preview struct {
	screen tcell.Screen
	sys    *particles.System
	paused bool
	line   tcell.Style
}

func newPreview(screen tcell.Screen, o simOptions, opts particles.Options) *preview {
	cols, rows := screen.Size()
	o.width, o.height = float64(cols)*cellW, float64(max(rows-1, 1))*cellH
	profile := o.profile(opts)

	connColor, err := particles.ParseColor(opts.ConnectionColor)
	if err != nil {
		connColor = particles.Color{R: 100, G: 255, B: 218}
	}
	return &preview{
		screen: screen,
		sys:    particles.NewSystem(o.width, o.height, opts, profile, o.rng(), nil),
		line:   tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(connColor.R), int32(connColor.G), int32(connColor.B))).Dim(true),
	}
}

// handle applies one event and reports whether the preview should exit.
func (p *preview) handle(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		p.sys.Resize(float64(cols)*cellW, float64(max(rows-1, 1))*cellH)
		p.screen.Sync()

	case *tcell.EventFocus:
		p.sys.Gate.SetDocumentVisible(ev.Focused)

	case *tcell.EventMouse:
		x, y := ev.Position()
		p.sys.MovePointer((float64(x)+0.5)*cellW, (float64(y)+0.5)*cellH, now, false)

	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return true
		case ev.Rune() == 'p':
			p.paused = !p.paused
			p.sys.Gate.SetIntersecting(!p.paused)
		case ev.Rune() == '+':
			p.sys.Field.Spawn(5)
		case ev.Rune() == '-':
			p.sys.Field.Remove(5)
		}
	}
	return false
}

// frame advances the field and redraws.
func (p *preview) frame(now time.Time) {
	p.sys.Loop.Tick(now)
	p.draw()
	p.screen.Show()
}

func (p *preview) draw() {
	p.screen.Clear()
	cols, rows := p.screen.Size()

	for _, seg := range p.sys.Segments() {
		if seg.Opacity < 0.05 {
			continue
		}
		p.drawLine(seg.X1/cellW, seg.Y1/cellH, seg.X2/cellW, seg.Y2/cellH, cols, rows-1)
	}

	for i := range p.sys.Field.Particles() {
		pt := &p.sys.Field.Particles()[i]
		x, y := int(pt.X/cellW), int(pt.Y/cellH)
		if x < 0 || x >= cols || y < 0 || y >= rows-1 {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(pt.Color.R), int32(pt.Color.G), int32(pt.Color.B)))
		glyph := '•'
		if pt.DrawSize() >= 2.5 {
			glyph = '●'
		}
		if pt.DrawOpacity() < 0.4 {
			style = style.Dim(true)
		}
		p.screen.SetContent(x, y, glyph, nil, style)
	}

	p.drawStatus(cols, rows)
}

// drawLine plots a connection as dots, one per cell along its longer axis.
func (p *preview) drawLine(x1, y1, x2, y2 float64, cols, rows int) {
	steps := int(math.Max(math.Abs(x2-x1), math.Abs(y2-y1)))
	for s := 1; s < steps; s++ {
		t := float64(s) / float64(steps)
		x, y := int(x1+(x2-x1)*t), int(y1+(y2-y1)*t)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		p.screen.SetContent(x, y, '·', nil, p.line)
	}
}

func (p *preview) drawStatus(cols, rows int) {
	state := p.sys.Controller.State().String()
	if !p.sys.Gate.Open() {
		state = "paused"
	}
	status := fmt.Sprintf(" %d particles  %d fps  threshold %.0f  %s  [q]uit [p]ause [+/-]",
		p.sys.Field.Len(), p.sys.Controller.FPS(), p.sys.Field.Threshold(), state)
	style := tcell.StyleDefault.Reverse(true)
	x := drawText(p.screen, 0, rows-1, cols, status, style)
	for ; x < cols; x++ {
		p.screen.SetContent(x, rows-1, ' ', nil, style)
	}
}

// drawText writes s from column x, clipped at cols, and returns the next free
// column. Wide runes take two cells.
func drawText(screen tcell.Screen, x, y, cols int, s string, style tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > cols {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func runPreview(cmd *cobra.Command, args []string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()

	p := newPreview(screen, previewFlags, cfg.Particles)
	defer p.sys.Close()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(previewFlags.frameRate(p.sys.Profile())))
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev := <-events:
			if p.handle(ev, time.Now()) {
				return nil
			}
		case now := <-ticker.C:
			p.frame(now)
		}
	}
}
