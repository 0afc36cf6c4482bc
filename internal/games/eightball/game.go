// Package eightball implements the Magic 8-Ball: ask a question, shake the
// device and read the answer.
package eightball

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const (
	fallbackAnswer = "Ask again"
	wobblePeriod   = 50 * time.Millisecond
)

// Game implements the Magic 8-Ball toy. It has no score and never ends.
type Game struct {
	cfg    config.EightBallConfig
	sess   *session.Session
	motion sensor.Source[sensor.Motion]

	runtime  core.RuntimeConfig
	rng      *rand.Rand
	answer   string
	showing  bool
	shaking  bool
	above    bool // last reading was over the shake threshold
	pending  []*session.Timer
	noSensor bool
}

// New creates a new Magic 8-Ball instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.EightBallConfig]("eightball", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	return &Game{
		cfg:    cfg,
		sess:   session.New(session.Unranked, env.Feedback),
		motion: env.Sensors.Motion,
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "eightball"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Magic 8-Ball"
}

// ScoreOrder reports that the 8-Ball keeps no score.
func (g *Game) ScoreOrder() session.Order {
	return session.Unranked
}

// Reset prepares the ball on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.motion.Stop()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.clear()
}

func (g *Game) clear() {
	g.answer = ""
	g.showing = false
	g.shaking = false
	g.above = false
	g.pending = nil
}

func (g *Game) start() {
	g.clear()
	g.noSensor = g.motion.Start(context.Background()) != nil
	g.sess.Start(nil)
}

// shake hides the answer and schedules a new one. A shake while the
// previous one is still running replaces it.
func (g *Game) shake() {
	for _, t := range g.pending {
		t.Cancel()
	}
	g.shaking = true
	g.showing = false

	c := g.sess.Clock()
	g.pending = []*session.Timer{
		c.After(g.cfg.Shake.Duration(), func() { g.shaking = false }),
		c.After(g.cfg.Reveal.Duration(), g.reveal),
		c.After(g.cfg.Hide.Duration(), func() { g.showing = false }),
	}
}

func (g *Game) reveal() {
	g.answer = fallbackAnswer
	if len(g.cfg.Answers) > 0 {
		g.answer = g.cfg.Answers[g.rng.Intn(len(g.cfg.Answers))]
	}
	g.showing = true
}

// Step advances the toy by one tick. The ball is live from the first step.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if !g.sess.Playing() {
		g.start()
	}

	// Only the crossing counts, so a long shake is one shake.
	above := g.motion.Latest().Magnitude() > g.cfg.ShakeThreshold
	if above && !g.above || in.Has(core.ActionConfirm) || in.Has(core.ActionTap) || len(in.Taps) > 0 {
		g.shake()
	}
	g.above = above

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

// Answer returns the current answer and whether it is visible.
func (g *Game) Answer() (string, bool) {
	return g.answer, g.showing
}

// Shaking reports whether the shake animation is playing.
func (g *Game) Shaking() bool {
	return g.shaking
}

// Render draws the ball to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawTextColored(1, 0, g.Title(), core.ColorBrightWhite)
	if g.noSensor {
		dst.DrawTextColored(dst.Width()-17, 0, "no motion sensor", core.ColorGray)
	}

	cx, cy := dst.Width()/2, dst.Height()/2
	if g.shaking && (g.sess.Elapsed()/wobblePeriod)%2 == 0 {
		cx++
	}
	ry := core.Clamp(dst.Height()/2-3, 3, 8)
	fillEllipse(dst, cx, cy, 2*ry, ry, '█', core.ColorGray)
	inner := max(ry/2, 2)
	fillEllipse(dst, cx, cy, 2*inner+2, inner, '█', core.ColorBlue)

	if !g.showing {
		dst.SetColored(cx, cy, '8', core.ColorBrightWhite)
		dst.DrawTextCenteredColored(dst.Height()-2, "Shake to reveal your answer", core.ColorGray)
		dst.DrawTextCenteredColored(dst.Height()-1, "S shakes the virtual device, Enter or click works too", core.ColorGray)
		return
	}
	lines := wrap(g.answer, 4*inner)
	top := cy - len(lines)/2
	for i, line := range lines {
		dst.DrawTextColored(cx-len(line)/2, top+i, line, core.ColorBrightWhite)
	}
}

func fillEllipse(dst *core.Screen, cx, cy, rx, ry int, r rune, c core.Color) {
	for y := -ry; y <= ry; y++ {
		for x := -rx; x <= rx; x++ {
			fx, fy := float64(x)/float64(rx), float64(y)/float64(ry)
			if fx*fx+fy*fy <= 1 {
				dst.SetColored(cx+x, cy+y, r, c)
			}
		}
	}
}

// wrap breaks text into lines of at most width bytes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var cur string
	for _, w := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(false)
}

// Close stops every timer and the motion feed.
func (g *Game) Close() {
	g.sess.Close()
	g.motion.Stop()
	g.pending = nil
}

func init() {
	registry.Register("eightball", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
