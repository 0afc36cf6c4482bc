// Package rocket implements Rocket Launch: the louder the player is, the
// higher the rocket climbs. Fly through the gaps between walls.
package rocket

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const (
	hudRows   = 1
	starCount = 40
)

// Obstacle is one wall segment moving left.
type Obstacle struct {
	ID  uuid.UUID
	Box core.RectF
}

// Game implements the Rocket Launch game logic.
type Game struct {
	cfg        config.RocketConfig
	sess       *session.Session
	difficulty *config.DifficultyManager
	loudness   sensor.Source[sensor.Audio]

	runtime   core.RuntimeConfig
	rng       *rand.Rand
	stars     []core.Point
	y, target float64
	level     float64
	obstacles session.Entities[Obstacle]
	flight    []*session.Timer
	crashed   bool // explosion on screen, the round ends when it is over
	noSensor  bool
	paused    bool
}

// New creates a new Rocket Launch instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.RocketConfig]("rocket", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyPreset(&cfg.Difficulty, env.Difficulty)

	return &Game{
		cfg:        cfg,
		sess:       session.New(session.HigherIsBetter, env.Feedback),
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
		loudness:   env.Sensors.Loudness,
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "rocket"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Rocket Launch"
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.loudness.Stop()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.stars = g.stars[:0]
	for range starCount {
		g.stars = append(g.stars, core.Point{
			X: g.rng.Intn(max(cfg.ScreenW, 1)),
			Y: hudRows + g.rng.Intn(max(cfg.ScreenH-hudRows, 1)),
		})
	}
	g.clear()
}

func (g *Game) clear() {
	area := g.playfield()
	g.y = area.Y + area.H/2
	g.target = g.y
	g.level = 0
	g.obstacles.Clear()
	g.flight = nil
	g.crashed = false
	g.paused = false
}

func (g *Game) start() {
	g.clear()
	g.noSensor = g.loudness.Start(context.Background()) != nil
	g.sess.Start(func(c *session.Clock) {
		g.flight = []*session.Timer{
			c.Every(g.cfg.Update.Duration(), g.update),
			c.Every(g.cfg.Spawn.Duration(), g.spawnPair),
		}
	})
}

func (g *Game) playfield() core.RectF {
	return core.RectF{
		X: 0,
		Y: hudRows,
		W: float64(g.runtime.ScreenW),
		H: float64(g.runtime.ScreenH - hudRows),
	}
}

// Rocket returns the rocket's bounding box. Its left edge is fixed.
func (g *Game) Rocket() core.RectF {
	r := g.cfg.Rocket
	return core.RectF{X: r.X, Y: g.y - r.Height/2, W: r.Width, H: r.Height}
}

// Altitude returns the row of the rocket's center.
func (g *Game) Altitude() float64 {
	return g.y
}

// update steers the rocket toward the loudness target, scrolls the walls
// and checks for a crash. The target may reach the playfield edge, the
// rocket crashes once it flies within Margin of it.
func (g *Game) update() {
	area := g.playfield()
	r := g.cfg.Rocket
	g.level = g.loudness.Latest().Level()

	g.target -= (g.level - r.Baseline) * r.Climb
	g.target = core.ClampF(g.target, area.Y, area.Bottom())
	g.y += (g.target - g.y) * r.Follow

	speed := g.difficulty.Speed(g.cfg.Obstacles.Speed, g.sess.Score(), g.sess.Elapsed())
	g.obstacles.Each(func(o *Obstacle) { o.Box.X -= speed })

	if g.obstacles.RemoveIf(func(o *Obstacle) bool { return o.Box.Right() < 0 }) > 0 {
		g.sess.AddScore(1)
	}

	rocket := g.Rocket()
	_, hit := session.Overlapping(g.obstacles.Items(), func(o *Obstacle) core.RectF { return o.Box }, rocket)
	if hit || g.y < area.Y+r.Margin || g.y > area.Bottom()-r.Margin {
		g.crash()
	}
}

// crash freezes the flight and holds the explosion on screen before the
// round ends.
func (g *Game) crash() {
	if g.crashed {
		return
	}
	g.crashed = true
	for _, t := range g.flight {
		t.Cancel()
	}
	g.loudness.Stop()
	g.sess.Feedback().Notify(feedback.ImpactHeavy)
	g.sess.Clock().After(g.cfg.Explosion.Duration(), func() {
		g.sess.End(feedback.Error)
	})
}

// spawnPair adds a top and a bottom wall with a gap between them.
func (g *Game) spawnPair() {
	area := g.playfield()
	o := g.cfg.Obstacles
	gap := g.difficulty.GapSize(o.Gap, o.MinGap, g.sess.Score(), g.sess.Elapsed())

	lo, hi := area.Y+o.EdgeSpace, area.Bottom()-o.EdgeSpace
	center := area.Y + area.H/2
	if hi > lo {
		center = lo + g.rng.Float64()*(hi-lo)
	}
	x := area.Right() + 2

	if top := center - gap/2 - area.Y; top > 0 {
		g.obstacles.Add(Obstacle{ID: uuid.New(), Box: core.RectF{X: x, Y: area.Y, W: o.Width, H: top}})
	}
	bottomY := center + gap/2
	if bottom := area.Bottom() - bottomY; bottom > 0 {
		g.obstacles.Add(Obstacle{ID: uuid.New(), Box: core.RectF{X: x, Y: bottomY, W: o.Width, H: bottom}})
	}
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

	if in.Has(core.ActionPause) && !g.crashed {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

// Obstacles returns the walls on screen, oldest first.
func (g *Game) Obstacles() []Obstacle {
	return g.obstacles.Items()
}

// Exploding reports whether the crash animation is still showing.
func (g *Game) Exploding() bool {
	return g.crashed && g.sess.Playing()
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	for _, s := range g.stars {
		dst.SetColored(s.X, s.Y, '.', core.ColorGray)
	}

	for _, o := range g.obstacles.Items() {
		dst.DrawRectColored(o.Box.Cells(), '▓', core.ColorMagenta)
	}
	g.drawRocket(dst)
	g.drawHUD(dst)

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("ROCKET LAUNCH", "Make sound to fly up!",
			"Quiet = fall, loud = rise, avoid the walls", "hold B to blow on the virtual mic", "Enter to start")
	case g.sess.Ended():
		lines := []string{fmt.Sprintf("Score: %d", g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() >= best {
			lines = append(lines, "New best!")
		}
		dst.DrawMessage("CRASHED", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

func (g *Game) drawRocket(dst *core.Screen) {
	r := g.cfg.Rocket
	box := core.NewRect(int(r.X), int(math.Round(g.y-r.Height/2)), int(r.Width), int(r.Height))
	if g.crashed {
		cx, cy := box.Center()
		dst.DrawTextColored(cx-1, cy-1, `\|/`, core.ColorOrange)
		dst.DrawTextColored(cx-1, cy, `-*-`, core.ColorBrightYellow)
		dst.DrawTextColored(cx-1, cy+1, `/|\`, core.ColorOrange)
		return
	}
	for y := box.Y; y < box.Bottom(); y++ {
		dst.SetColored(box.X, y, '»', core.ColorOrange)
		for x := box.X + 1; x < box.Right()-1; x++ {
			dst.SetColored(x, y, '█', core.ColorBrightWhite)
		}
		dst.SetColored(box.Right()-1, y, '▶', core.ColorBrightRed)
	}
}

func (g *Game) drawHUD(dst *core.Screen) {
	dst.DrawTextColored(1, 0, fmt.Sprintf("Score: %d", g.sess.Score()), core.ColorBrightWhite)

	size := max(g.cfg.Rocket.MeterSize, 1)
	filled := int(math.Round(g.level * float64(size)))
	meter := "Vol [" + strings.Repeat("#", filled) + strings.Repeat(" ", size-filled) + "]"
	x := dst.Width() - len(meter) - 1
	dst.DrawTextColored(x, 0, meter[:5], core.ColorWhite)
	for i := range filled {
		color := core.ColorBrightGreen
		switch {
		case i >= size*4/5:
			color = core.ColorBrightRed
		case i >= size/2:
			color = core.ColorBrightYellow
		}
		dst.SetColored(x+5+i, 0, '#', color)
	}
	dst.SetColored(x+5+size, 0, ']', core.ColorWhite)

	if g.noSensor && g.sess.Playing() {
		dst.DrawTextColored(14, 0, "no microphone", core.ColorGray)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(g.paused)
}

// Close stops every timer and the loudness feed.
func (g *Game) Close() {
	g.sess.Close()
	g.loudness.Stop()
}

func init() {
	registry.Register("rocket", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
