// Package egg implements Egg Balance: hold the device still for as long as
// possible. Any movement makes the egg wobble and the game grows more
// sensitive every second.
package egg

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const meterWidth = 30

var (
	eggArt = []string{
		`  .-"-.  `,
		` /     \ `,
		`|       |`,
		` \     / `,
		`  '---'  `,
	}
	crackedArt = []string{
		`  .-"-.  `,
		` /\/\/\/\`,
		`         `,
		` \_____/ `,
		`  '---'  `,
	}
)

// Game implements the Egg Balance game logic.
type Game struct {
	cfg        config.EggConfig
	sess       *session.Session
	difficulty *config.DifficultyManager
	motion     sensor.Source[sensor.Motion]

	runtime     core.RuntimeConfig
	sensitivity float64
	movement    float64 // latest movement scaled by sensitivity
	wobble      float64
	tilt        core.Vec2
	noSensor    bool
	paused      bool
}

// New creates a new Egg Balance instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.EggConfig]("egg", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyPreset(&cfg.Difficulty, env.Difficulty)
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = 10
	}

	return &Game{
		cfg:         cfg,
		sess:        session.New(session.HigherIsBetter, env.Feedback),
		difficulty:  config.NewDifficultyManager(cfg.Difficulty),
		motion:      env.Sensors.Motion,
		sensitivity: 1,
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "egg"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Egg Balance"
}

// FormatScore renders a balance time in milliseconds as seconds.
func (g *Game) FormatScore(ms int) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.motion.Stop()
	g.runtime = cfg
	g.clear()
}

func (g *Game) clear() {
	g.sensitivity = 1
	g.movement = 0
	g.wobble = 0
	g.tilt = core.Vec2{}
	g.paused = false
}

func (g *Game) start() {
	g.clear()
	g.noSensor = g.motion.Start(context.Background()) != nil
	g.sess.Start(func(c *session.Clock) {
		c.Every(g.cfg.Update.Duration(), g.update)
	})
}

// update adds the tick to the balance time, then checks the latest motion
// against the growing sensitivity.
func (g *Game) update() {
	g.sess.AddScore(int(g.cfg.Update.Duration().Milliseconds()))
	balanced := float64(g.sess.Score()) / 1000

	pace := g.difficulty.Pace(g.sess.Score(), g.sess.Elapsed())
	g.sensitivity = (1 + balanced/g.cfg.Sensitivity.Duration().Seconds()) * pace

	m := g.motion.Latest()
	g.movement = m.Intensity() * g.sensitivity
	g.wobble = math.Min(g.movement, g.cfg.WobbleCap)
	g.tilt = m.Tilt().Scale(g.sensitivity * g.cfg.TiltGain)

	if g.movement > g.cfg.BreakAt {
		g.sess.End(feedback.Error)
		g.motion.Stop()
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

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

// Sensitivity returns the current movement multiplier.
func (g *Game) Sensitivity() float64 {
	return g.sensitivity
}

// Stability returns how close the egg is to cracking, in [0, 1].
func (g *Game) Stability() float64 {
	return math.Min(g.movement, 1)
}

// Warning reports whether the last movement came close to cracking the egg.
func (g *Game) Warning() bool {
	return g.movement > g.cfg.WarnAt
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	dst.DrawTextColored(1, 0, "Time: "+g.FormatScore(g.sess.Score()), core.ColorBrightWhite)
	sens := fmt.Sprintf("Sensitivity: %.0f%%", g.sensitivity*100)
	dst.DrawTextColored(dst.Width()-len(sens)-1, 0, sens, core.ColorGray)
	if g.noSensor && g.sess.Playing() {
		dst.DrawTextCenteredColored(1, "no motion sensor", core.ColorGray)
	}

	g.drawEgg(dst)
	g.drawMeter(dst)

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("EGG BALANCE", "Keep the device perfectly still!",
			"Move = wobble, too much movement = crack", "Enter to start")
	case g.sess.Ended():
		lines := []string{"Balanced for " + g.FormatScore(g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() >= best {
			lines = append(lines, "New best!")
		}
		dst.DrawMessage("CRACKED!", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

func (g *Game) drawEgg(dst *core.Screen) {
	art := eggArt
	if g.sess.Ended() {
		art = crackedArt
	}
	w := len(art[0])
	x := dst.Width()/2 - w/2 + int(math.Round(g.tilt.X*4))
	y := dst.Height()/2 - len(art)/2 - int(math.Round(g.tilt.Y*2))
	for i, line := range art {
		dst.DrawTextColored(x, y+i, line, core.ColorSand)
	}
	if g.wobble > 0.05 && g.sess.Playing() {
		dst.SetColored(x-2, y+2, '(', core.ColorYellow)
		dst.SetColored(x+w+1, y+2, ')', core.ColorYellow)
	}
}

func (g *Game) drawMeter(dst *core.Screen) {
	y := dst.Height() - 3
	x := dst.Width()/2 - meterWidth/2
	dst.DrawTextCenteredColored(y-1, "Stability", core.ColorGray)

	filled := int(math.Round(g.Stability() * meterWidth))
	dst.DrawTextColored(x, y, strings.Repeat("░", meterWidth), core.ColorGray)
	dst.DrawTextColored(x, y, strings.Repeat("█", filled), core.ColorBrightRed)

	hint, color := "Keep still...", core.ColorGray
	if g.Warning() {
		hint, color = "Too much movement!", core.ColorBrightRed
	}
	dst.DrawTextCenteredColored(y+1, hint, color)
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
	registry.Register("egg", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
