// Package balloon implements Balloon Pop: balloons appear faster and
// faster for thirty seconds and the player pops as many as possible
// before they fade.
package balloon

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

// hudRows is the height of the score line above the playfield.
const hudRows = 1

// Balloon is one live balloon. Pos is its center.
type Balloon struct {
	ID        uuid.UUID
	Pos       core.Vec2
	SpawnedAt time.Duration
	Popped    bool
	Color     core.Color
}

var balloonColors = []core.Color{
	core.ColorRed, core.ColorPink, core.ColorMagenta, core.ColorBlue,
	core.ColorGreen, core.ColorYellow, core.ColorOrange, core.ColorCyan,
}

// Game implements the Balloon Pop game logic.
type Game struct {
	env  registry.Env
	cfg  config.BalloonConfig
	sess *session.Session
	ramp session.Ramp

	runtime   core.RuntimeConfig
	rng       *rand.Rand
	balloons  session.Entities[Balloon]
	remaining int
	spawn     *session.Timer
	cursor    core.Point
	paused    bool
}

// New creates a new Balloon Pop instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.BalloonConfig]("balloon", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyPreset(&cfg.Difficulty, env.Difficulty)

	pace := config.NewDifficultyManager(cfg.Difficulty).Pace(0, 0)
	return &Game{
		env:  env,
		cfg:  cfg,
		sess: session.New(session.HigherIsBetter, env.Feedback),
		ramp: cfg.Spawn.Ramp().Scale(1 / pace),
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "balloon"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Balloon Pop"
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.balloons.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.cursor = core.Point{X: cfg.ScreenW / 2, Y: cfg.ScreenH / 2}
	g.paused = false
}

func (g *Game) start() {
	g.balloons.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.paused = false
	g.sess.Start(func(c *session.Clock) {
		c.Every(time.Second, g.countdown)
		g.spawn = c.Every(g.ramp.At(0), g.spawnBalloon)
		c.Every(g.cfg.Update.Duration(), g.expire)
	})
}

// countdown runs once a second and applies the spawn ramp.
func (g *Game) countdown() {
	g.remaining--
	if g.remaining <= 0 {
		g.sess.End(feedback.Success)
		return
	}
	g.spawn.SetInterval(g.ramp.At(g.sess.Elapsed()))
}

func (g *Game) spawnBalloon() {
	pos := session.RandomPoint(g.rng, g.playfield(), g.cfg.Margins.Margins())
	g.balloons.Add(Balloon{
		ID:        uuid.New(),
		Pos:       pos,
		SpawnedAt: g.sess.Elapsed(),
		Color:     balloonColors[g.rng.Intn(len(balloonColors))],
	})
}

// expire removes balloons that outlived their lifespan.
func (g *Game) expire() {
	now := g.sess.Elapsed()
	life := g.cfg.Balloon.Lifespan.Duration()
	g.balloons.RemoveIf(func(b *Balloon) bool {
		return !b.Popped && now-b.SpawnedAt >= life
	})
}

// pop bursts the oldest live balloon under p.
func (g *Game) pop(p core.Point) bool {
	b, ok := g.balloons.FirstMatch(func(b *Balloon) bool {
		return !b.Popped && g.cells(b).Contains(p.X, p.Y)
	})
	if !ok {
		return false
	}
	b.Popped = true
	id := b.ID
	g.sess.Clock().After(g.cfg.Balloon.PopTime.Duration(), func() {
		g.balloons.RemoveIf(func(b *Balloon) bool { return b.ID == id })
	})
	g.sess.AddScore(1)
	g.sess.Feedback().Notify(feedback.Impact)
	return true
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.moveCursor(in)

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

	for _, p := range in.Taps {
		g.pop(p)
	}
	if in.Has(core.ActionTap) {
		g.pop(g.cursor)
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
	g.cursor.X = core.Clamp(g.cursor.X, 0, max(g.runtime.ScreenW-1, 0))
	g.cursor.Y = core.Clamp(g.cursor.Y, hudRows, max(g.runtime.ScreenH-1, hudRows))
}

func (g *Game) playfield() core.RectF {
	return core.RectF{
		X: 0,
		Y: hudRows,
		W: float64(g.runtime.ScreenW),
		H: float64(g.runtime.ScreenH - hudRows),
	}
}

// cells returns the screen cells a balloon covers.
func (g *Game) cells(b *Balloon) core.Rect {
	w, h := g.cfg.Balloon.Width, g.cfg.Balloon.Height
	return core.NewRect(
		int(math.Round(b.Pos.X-w/2)),
		int(math.Round(b.Pos.Y-h/2)),
		int(w), int(h),
	)
}

// SpawnInterval returns the current time between two balloons.
func (g *Game) SpawnInterval() time.Duration {
	if g.spawn == nil {
		return g.ramp.At(0)
	}
	return g.spawn.Interval()
}

// Remaining returns the seconds left in the round.
func (g *Game) Remaining() int {
	return g.remaining
}

// Balloons returns the live balloons, oldest first.
func (g *Game) Balloons() []Balloon {
	return g.balloons.Items()
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	now := g.sess.Elapsed()
	life := g.cfg.Balloon.Lifespan.Duration()
	for i := range g.balloons.Items() {
		b := g.balloons.At(i)
		g.drawBalloon(dst, b, now-b.SpawnedAt, life)
	}

	if g.sess.Playing() {
		dst.SetColored(g.cursor.X, g.cursor.Y, '+', core.ColorBrightWhite)
	}
	g.drawHUD(dst)

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("BALLOON POP", "Pop balloons before they fade",
			"click, or move with arrows and press space", "Enter to start")
	case g.sess.Ended():
		lines := []string{fmt.Sprintf("Score: %d", g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() >= best {
			lines = append(lines, "New best!")
		}
		dst.DrawMessage("TIME'S UP", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

func (g *Game) drawBalloon(dst *core.Screen, b *Balloon, age, life time.Duration) {
	cells := g.cells(b)
	if b.Popped {
		cx, cy := cells.Center()
		dst.DrawTextColored(cx-1, cy-1, `\|/`, core.ColorBrightYellow)
		dst.DrawTextColored(cx-1, cy, `-*-`, core.ColorBrightYellow)
		dst.DrawTextColored(cx-1, cy+1, `/|\`, core.ColorBrightYellow)
		return
	}

	// Fade out over the lifespan.
	glyph, color := '█', b.Color
	switch progress := float64(age) / float64(life); {
	case progress > 0.75:
		glyph, color = '░', core.ColorGray
	case progress > 0.5:
		glyph = '▓'
	}
	for y := cells.Y; y < cells.Bottom(); y++ {
		for x := cells.X; x < cells.Right(); x++ {
			corner := (y == cells.Y || y == cells.Bottom()-1) && (x == cells.X || x == cells.Right()-1)
			if corner && cells.W > 2 {
				continue
			}
			dst.SetColored(x, y, glyph, color)
		}
	}
	cx, _ := cells.Center()
	dst.SetColored(cx, cells.Bottom(), '╵', core.ColorGray)
}

func (g *Game) drawHUD(dst *core.Screen) {
	dst.DrawTextColored(1, 0, fmt.Sprintf("Score: %d", g.sess.Score()), core.ColorPink)

	timer := fmt.Sprintf("Time: %2d", g.remaining)
	color := core.ColorPink
	if g.remaining <= 5 {
		color = core.ColorBrightRed
	}
	dst.DrawTextCenteredColored(0, timer, color)

	if best, ok := g.sess.Best().Value(); ok {
		text := fmt.Sprintf("Best: %d", best)
		dst.DrawTextColored(dst.Width()-len(text)-1, 0, text, core.ColorGray)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(g.paused)
}

// Close stops every timer.
func (g *Game) Close() {
	g.sess.Close()
}

// Register the game with the registry
func init() {
	registry.Register("balloon", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
