// Package maze implements Maze Ball: tilt the device to roll a ball through
// a fixed maze to the goal. The best score is the fastest time.
package maze

import (
	"context"
	"fmt"
	"math"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const (
	hudRows  = 1
	ballSize = 1.0
)

// Ball is the rolling ball. Position is its center, velocity is in cells
// per physics tick.
type Ball struct {
	Pos core.Vec2
	Vel core.Vec2
}

// Game implements the Maze Ball game logic.
type Game struct {
	cfg    config.MazeConfig
	sess   *session.Session
	motion sensor.Source[sensor.Motion]

	runtime  core.RuntimeConfig
	level    Level
	ball     Ball
	noSensor bool
	paused   bool
}

// New creates a new Maze Ball instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.MazeConfig]("maze", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Physics.SubStep <= 0 {
		cfg.Physics.SubStep = 0.5
	}

	return &Game{
		cfg:    cfg,
		sess:   session.New(session.LowerIsBetter, env.Feedback),
		motion: env.Sensors.Motion,
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "maze"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Maze Ball"
}

// ScoreOrder reports that faster times are better.
func (g *Game) ScoreOrder() session.Order {
	return session.LowerIsBetter
}

// FormatScore renders a time in milliseconds as seconds.
func (g *Game) FormatScore(ms int) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.motion.Stop()
	g.runtime = cfg
	g.level = Layout(core.RectF{
		X: 0,
		Y: hudRows,
		W: float64(cfg.ScreenW),
		H: float64(cfg.ScreenH - hudRows),
	})
	g.ball = Ball{Pos: g.level.Start}
	g.paused = false
}

func (g *Game) start() {
	g.ball = Ball{Pos: g.level.Start}
	g.paused = false
	g.noSensor = g.motion.Start(context.Background()) != nil
	g.sess.Start(func(c *session.Clock) {
		c.Every(g.cfg.Timer.Duration(), func() {
			g.sess.AddScore(int(g.cfg.Timer.Duration().Milliseconds()))
		})
		c.Every(g.cfg.Update.Duration(), g.update)
	})
}

func (g *Game) end(k feedback.Kind) {
	g.sess.End(k)
	g.motion.Stop()
}

// update applies one physics tick: tilt accelerates the ball, friction
// slows it and a wall hit reverses and damps it.
func (g *Game) update() {
	p := g.cfg.Physics
	tilt := g.motion.Latest().Tilt()

	g.ball.Vel.X += tilt.X * p.AccelX
	g.ball.Vel.Y += -tilt.Y * p.AccelY
	g.ball.Vel = g.ball.Vel.Scale(p.Friction)

	if g.move() {
		g.end(feedback.Success)
	}
}

// move advances the ball by its velocity in sub-steps no longer than
// SubStep so it cannot tunnel through a one-cell wall. It reports whether
// the ball reached the goal.
func (g *Game) move() bool {
	steps := max(1, int(math.Ceil(g.ball.Vel.Len()/g.cfg.Physics.SubStep)))
	delta := g.ball.Vel.Scale(1 / float64(steps))
	area := g.level.Area

	for range steps {
		next := g.ball.Pos.Add(delta)
		next.X = core.ClampF(next.X, area.X+ballSize/2, area.Right()-ballSize/2)
		next.Y = core.ClampF(next.Y, area.Y+ballSize/2, area.Bottom()-ballSize/2)

		box := core.RectAround(next, ballSize, ballSize)
		if g.level.Blocked(box) {
			g.ball.Vel = g.ball.Vel.Scale(-g.cfg.Physics.Bounce)
			return false
		}
		g.ball.Pos = next
		if box.Intersects(g.level.Goal) {
			return true
		}
	}
	return false
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

// Ball returns the ball.
func (g *Game) Ball() Ball {
	return g.ball
}

// Level returns the maze layout.
func (g *Game) Level() Level {
	return g.level
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	dst.DrawRectColored(g.level.Goal.Cells(), '▒', core.ColorBrightRed)
	for _, w := range g.level.Walls {
		dst.DrawRectColored(w.Cells(), '█', core.ColorSand)
	}
	cell := g.ball.Pos.Cell()
	dst.SetColored(cell.X, cell.Y, '●', core.ColorBrightBlue)

	dst.DrawTextColored(1, 0, "Time: "+g.FormatScore(g.sess.Score()), core.ColorBrightWhite)
	if best, ok := g.sess.Best().Value(); ok {
		text := "Best: " + g.FormatScore(best)
		dst.DrawTextColored(dst.Width()-len(text)-1, 0, text, core.ColorGray)
	}
	if g.noSensor && g.sess.Playing() {
		dst.DrawTextCenteredColored(0, "no motion sensor", core.ColorGray)
	}

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("MAZE BALL", "Tilt to roll the ball to the red goal",
			"arrows tilt the virtual device", "Enter to start")
	case g.sess.Ended():
		lines := []string{"Time: " + g.FormatScore(g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() <= best {
			lines = append(lines, "New best time!")
		}
		dst.DrawMessage("YOU WIN", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(g.paused)
}

// Close stops every timer and the motion feed.
func (g *Game) Close() {
	g.sess.Close()
	g.motion.Stop()
}

func init() {
	registry.Register("maze", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
