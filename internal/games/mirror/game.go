// Package mirror implements the Foggy Mirror: breathe on the glass to fog it
// up, then draw in the fog with a finger (the mouse) or the cursor.
package mirror

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const hudRows = 1

var rainbow = []core.Color{
	core.ColorRed, core.ColorOrange, core.ColorYellow, core.ColorGreen,
	core.ColorCyan, core.ColorBlue, core.ColorMagenta,
}

// Game implements the Foggy Mirror toy. It has no score and never ends.
type Game struct {
	cfg      config.MirrorConfig
	sess     *session.Session
	loudness sensor.Source[sensor.Audio]

	runtime  core.RuntimeConfig
	fog      float64
	fade     *session.Timer
	fadeLeft time.Duration
	wiped    map[core.Point]bool
	frame    int
	cursor   core.Point
	noSensor bool
}

// New creates a new Foggy Mirror instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.MirrorConfig]("mirror", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	if len(cfg.Frames) == 0 {
		cfg.Frames = []string{"gold"}
	}
	return &Game{
		cfg:      cfg,
		sess:     session.New(session.Unranked, env.Feedback),
		loudness: env.Sensors.Loudness,
		wiped:    make(map[core.Point]bool),
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "mirror"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Foggy Mirror"
}

// ScoreOrder reports that the mirror keeps no score.
func (g *Game) ScoreOrder() session.Order {
	return session.Unranked
}

// Reset prepares a clear mirror on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.loudness.Stop()
	g.runtime = cfg
	g.fog = 0
	g.fade = nil
	g.fadeLeft = 0
	clear(g.wiped)
	g.cursor = core.Point{X: cfg.ScreenW / 2, Y: cfg.ScreenH / 2}
}

func (g *Game) start() {
	g.noSensor = g.loudness.Start(context.Background()) != nil
	g.sess.Start(func(c *session.Clock) {
		c.Every(g.cfg.Update.Duration(), g.update)
	})
}

func (g *Game) update() {
	if g.loudness.Latest().RMS > g.cfg.Breath {
		g.addFog()
	}
	if g.fadeLeft > 0 {
		f := g.cfg.Fog
		step := g.cfg.Update.Duration()
		g.fog = math.Max(0, g.fog-f.FadeBy*step.Seconds()/f.FadeOver.Duration().Seconds())
		g.fadeLeft -= step
	}
}

// addFog thickens the fog and restarts the idle delay before it fades.
func (g *Game) addFog() {
	f := g.cfg.Fog
	g.fog = math.Min(g.fog+f.Step, f.Max)
	if g.fade != nil {
		g.fade.Cancel()
	}
	g.fadeLeft = 0
	g.fade = g.sess.Clock().After(f.FadeDelay.Duration(), func() {
		g.fadeLeft = f.FadeOver.Duration()
	})
}

// Mirror returns the glass area in screen cells.
func (g *Game) Mirror() core.Rect {
	return core.NewRect(2, hudRows+1, g.runtime.ScreenW-4, g.runtime.ScreenH-hudRows-3)
}

// wipe clears the fog around p. Thin fog cannot be drawn in.
func (g *Game) wipe(p core.Point) {
	glass := g.Mirror()
	if g.fog <= g.cfg.Fog.WipeAbove || !glass.Contains(p.X, p.Y) {
		return
	}
	r := g.cfg.WipeRadius
	for dy := -r; dy <= r; dy++ {
		for dx := -2 * r; dx <= 2*r; dx++ {
			// Cells are about twice as tall as wide.
			if float64(dx*dx)/4+float64(dy*dy) > float64(r*r) {
				continue
			}
			q := core.Point{X: p.X + dx, Y: p.Y + dy}
			if glass.Contains(q.X, q.Y) {
				g.wiped[q] = true
			}
		}
	}
}

// Step advances the toy by one tick. The mirror is live from the first step.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if !g.sess.Playing() {
		g.start()
	}

	g.moveCursor(in)
	if in.Has(core.ActionTap) {
		g.wipe(g.cursor)
	}
	for _, p := range in.Taps {
		g.wipe(p)
	}
	for _, p := range in.Drags {
		g.wipe(p)
	}
	if in.Has(core.ActionCycle) {
		g.frame = (g.frame + 1) % len(g.cfg.Frames)
	}
	if in.Has(core.ActionClear) {
		clear(g.wiped)
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

func (g *Game) moveCursor(in core.InputFrame) {
	if in.Has(core.ActionLeft) {
		g.cursor.X--
	}
	if in.Has(core.ActionRight) {
		g.cursor.X++
	}
	if in.Has(core.ActionUp) {
		g.cursor.Y--
	}
	if in.Has(core.ActionDown) {
		g.cursor.Y++
	}
	glass := g.Mirror()
	g.cursor.X = core.Clamp(g.cursor.X, glass.X, max(glass.Right()-1, glass.X))
	g.cursor.Y = core.Clamp(g.cursor.Y, glass.Y, max(glass.Bottom()-1, glass.Y))
}

// Fog returns the fog opacity in [0, fog.max].
func (g *Game) Fog() float64 {
	return g.fog
}

// Fading reports whether the fog is clearing.
func (g *Game) Fading() bool {
	return g.fadeLeft > 0
}

// Wiped reports whether the fog was drawn away at p.
func (g *Game) Wiped(p core.Point) bool {
	return g.wiped[p]
}

// Frame returns the name of the current frame colour.
func (g *Game) Frame() string {
	return g.cfg.Frames[g.frame]
}

// Render draws the mirror to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	glass := g.Mirror()
	glyph := fogGlyph(g.fog)
	for y := glass.Y; y < glass.Bottom(); y++ {
		for x := glass.X; x < glass.Right(); x++ {
			if glyph != ' ' && !g.wiped[core.Point{X: x, Y: y}] {
				dst.SetColored(x, y, glyph, core.ColorWhite)
			}
		}
	}
	g.drawFrame(dst, core.NewRect(glass.X-1, glass.Y-1, glass.W+2, glass.H+2))
	if g.fog > g.cfg.Fog.WipeAbove {
		dst.SetColored(g.cursor.X, g.cursor.Y, '+', core.ColorBrightCyan)
	}

	dst.DrawTextColored(1, 0, g.Title(), core.ColorBrightWhite)
	fog := fmt.Sprintf("Fog: %3.0f%%", g.fog*100)
	dst.DrawTextColored(dst.Width()-len(fog)-1, 0, fog, core.ColorGray)
	if g.noSensor {
		dst.DrawTextCenteredColored(0, "no microphone", core.ColorGray)
	}
	dst.DrawTextCenteredColored(dst.Height()-1,
		fmt.Sprintf("B breathe  drag or Space draw  C frame: %s  X clear", g.Frame()), core.ColorGray)
}

func (g *Game) drawFrame(dst *core.Screen, box core.Rect) {
	name := g.Frame()
	dst.DrawBoxColored(box, frameColor(name))
	if name != "rainbow" {
		return
	}
	i := 0
	paint := func(x, y int) {
		dst.SetColored(x, y, dst.Get(x, y), rainbow[(i/3)%len(rainbow)])
		i++
	}
	for x := box.X; x < box.Right(); x++ {
		paint(x, box.Y)
	}
	for y := box.Y + 1; y < box.Bottom(); y++ {
		paint(box.Right()-1, y)
	}
	for x := box.Right() - 2; x >= box.X; x-- {
		paint(x, box.Bottom()-1)
	}
	for y := box.Bottom() - 2; y > box.Y; y-- {
		paint(box.X, y)
	}
}

func frameColor(name string) core.Color {
	switch name {
	case "gold":
		return core.ColorGold
	case "copper":
		return core.ColorCopper
	case "silver":
		return core.ColorSilver
	case "emerald":
		return core.ColorEmerald
	default:
		return core.ColorWhite
	}
}

func fogGlyph(fog float64) rune {
	switch {
	case fog < 0.05:
		return ' '
	case fog < 0.3:
		return '░'
	case fog < 0.6:
		return '▒'
	default:
		return '▓'
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(false)
}

// Close stops every timer and the loudness feed.
func (g *Game) Close() {
	g.sess.Close()
	g.loudness.Stop()
	g.fade = nil
}

func init() {
	registry.Register("mirror", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
