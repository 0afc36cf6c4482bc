// Package snack implements Snack Catcher: snacks fall toward the player's
// mouth and are caught by opening it while they pass the catch zone.
package snack

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const hudRows = 1

// Snack is one falling snack. Y is measured from the top of the playfield.
type Snack struct {
	ID    uuid.UUID
	X, Y  float64
	Glyph rune
}

// Game implements the Snack Catcher game logic.
type Game struct {
	cfg        config.SnackConfig
	sess       *session.Session
	difficulty *config.DifficultyManager
	face       sensor.Source[sensor.Face]

	runtime   core.RuntimeConfig
	rng       *rand.Rand
	glyphs    []rune
	snacks    session.Entities[Snack]
	remaining int
	mouthOpen bool
	noSensor  bool
	paused    bool
}

// New creates a new Snack Catcher instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.SnackConfig]("snack", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyPreset(&cfg.Difficulty, env.Difficulty)

	g := &Game{
		cfg:        cfg,
		sess:       session.New(session.HigherIsBetter, env.Feedback),
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		face:       env.Sensors.Face,
	}
	for _, s := range cfg.Glyphs {
		if r := []rune(s); len(r) > 0 {
			g.glyphs = append(g.glyphs, r[0])
		}
	}
	if len(g.glyphs) == 0 {
		g.glyphs = []rune{'●'}
	}
	return g, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "snack"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Snack Catcher"
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.face.Stop()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.snacks.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.mouthOpen = false
	g.paused = false
}

func (g *Game) start() {
	g.snacks.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.mouthOpen = false
	g.paused = false
	g.noSensor = g.face.Start(context.Background()) != nil
	g.sess.Start(func(c *session.Clock) {
		c.Every(g.cfg.Spawn.Duration(), g.spawnSnack)
		c.Every(g.cfg.Update.Duration(), g.update)
		c.Every(time.Second, g.countdown)
	})
}

func (g *Game) countdown() {
	g.remaining--
	if g.remaining <= 0 {
		g.sess.End(feedback.Success)
		g.face.Stop()
	}
}

func (g *Game) spawnSnack() {
	if g.snacks.Len() >= g.cfg.MaxLive {
		return
	}
	w, _ := g.size()
	top := core.RectF{W: w}
	p := session.RandomPoint(g.rng, top, session.Margins{Left: g.cfg.Margin, Right: g.cfg.Margin})
	g.snacks.Add(Snack{
		ID:    uuid.New(),
		X:     p.X,
		Y:     -1,
		Glyph: g.glyphs[g.rng.Intn(len(g.glyphs))],
	})
}

// update catches at most one snack in the zone while the mouth is open,
// then moves the rest down and drops those that fell off screen.
func (g *Game) update() {
	g.mouthOpen = g.face.Latest().MouthOpen(g.cfg.MouthThreshold)

	if g.mouthOpen {
		if s, ok := g.snacks.FirstMatch(g.inCatchZone); ok {
			id := s.ID
			g.snacks.RemoveIf(func(s *Snack) bool { return s.ID == id })
			g.sess.AddScore(1)
			g.sess.Feedback().Notify(feedback.ImpactHeavy)
		}
	}

	speed := g.difficulty.Speed(g.cfg.FallSpeed, g.sess.Score(), g.sess.Elapsed())
	g.snacks.Each(func(s *Snack) { s.Y += speed })

	_, h := g.size()
	g.snacks.RemoveIf(func(s *Snack) bool { return s.Y > h+1 })
}

// CatchZone returns the catch area in playfield coordinates.
func (g *Game) CatchZone() core.RectF {
	w, h := g.size()
	half := g.cfg.Catch.HalfWidth * w
	return core.RectF{X: w/2 - half, Y: g.cfg.Catch.Top * h, W: 2 * half, H: h - g.cfg.Catch.Top*h}
}

func (g *Game) inCatchZone(s *Snack) bool {
	z := g.CatchZone()
	return s.Y >= z.Y && s.Y <= z.Bottom() && s.X >= z.X && s.X <= z.Right()
}

func (g *Game) size() (w, h float64) {
	return float64(g.runtime.ScreenW), float64(g.runtime.ScreenH - hudRows)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	switch g.sess.Phase() {
	case core.PhaseReady:
		if in.Has(core.ActionConfirm) || in.Has(core.ActionTap) || len(in.Taps) > 0 {
			g.start()
		}
		return core.StepResult{State: g.State()}
	case core.PhaseEnded:
		if in.Has(core.ActionRestart) || in.Has(core.ActionConfirm) {
			g.start()
		}
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

// Snacks returns the falling snacks, oldest first.
func (g *Game) Snacks() []Snack {
	return g.snacks.Items()
}

// Remaining returns the seconds left in the round.
func (g *Game) Remaining() int {
	return g.remaining
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	zone := g.CatchZone()
	zx0, zx1 := int(math.Floor(zone.X)), int(math.Ceil(zone.Right()))
	zy := hudRows + int(math.Floor(zone.Y))
	for x := zx0; x <= zx1; x++ {
		dst.SetColored(x, zy, '┈', core.ColorGray)
	}

	mouth := "( - )"
	color := core.ColorSand
	if g.mouthOpen {
		mouth, color = "( O )", core.ColorBrightRed
	}
	dst.DrawTextColored(dst.Width()/2-len(mouth)/2, dst.Height()-1, mouth, color)

	for _, s := range g.snacks.Items() {
		y := hudRows + int(math.Round(s.Y))
		if y < hudRows {
			continue
		}
		dst.SetColored(int(math.Round(s.X)), y, s.Glyph, snackColor(s.Glyph))
	}

	dst.DrawTextColored(1, 0, fmt.Sprintf("Score: %d", g.sess.Score()), core.ColorBrightWhite)
	timer := fmt.Sprintf("Time: %2d", g.remaining)
	dst.DrawTextColored(dst.Width()-len(timer)-1, 0, timer, core.ColorBrightYellow)
	if g.noSensor && g.sess.Playing() {
		dst.DrawTextCenteredColored(0, "no face tracking", core.ColorGray)
	}

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("SNACK CATCHER", "Open your mouth to catch the snacks!",
			"M toggles the virtual mouth", "Enter to start")
	case g.sess.Ended():
		lines := []string{fmt.Sprintf("Caught: %d", g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() >= best {
			lines = append(lines, "New best!")
		}
		dst.DrawMessage("TIME'S UP", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

func snackColor(r rune) core.Color {
	switch r {
	case '♥':
		return core.ColorBrightRed
	case '♣':
		return core.ColorBrightGreen
	case '◆':
		return core.ColorBrightCyan
	case '▲':
		return core.ColorOrange
	case '■':
		return core.ColorBrightMagenta
	default:
		return core.ColorBrightYellow
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(g.paused)
}

// Close stops every timer and face tracking.
func (g *Game) Close() {
	g.sess.Close()
	g.face.Stop()
}

func init() {
	registry.Register("snack", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
