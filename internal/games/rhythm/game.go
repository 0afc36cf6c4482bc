// Package rhythm implements Rhythm Tap, a piano-tiles style game: tiles
// fall down four lanes and must be tapped while they cross the tap zone.
package rhythm

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const hudRows = 1

var laneKeys = []string{"D", "F", "J", "K"}

// Tile is a falling tile. Y is the row of its center.
type Tile struct {
	ID        uuid.UUID
	Lane      int
	Y         float64
	SpawnedAt time.Duration
	Tapped    bool
	Missed    bool
}

func (t *Tile) live() bool {
	return !t.Tapped && !t.Missed
}

// Game implements the Rhythm Tap game logic.
type Game struct {
	cfg        config.RhythmConfig
	sess       *session.Session
	difficulty *config.DifficultyManager

	runtime   core.RuntimeConfig
	rng       *rand.Rand
	tiles     session.Entities[Tile]
	remaining int
	combo     int
	spawn     *session.Timer
	paused    bool
}

// New creates a new Rhythm Tap instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.RhythmConfig]("rhythm", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.ApplyPreset(&cfg.Difficulty, env.Difficulty)
	if cfg.Lanes <= 0 || cfg.Lanes > len(laneKeys) {
		cfg.Lanes = len(laneKeys)
	}

	return &Game{
		cfg:        cfg,
		sess:       session.New(session.HigherIsBetter, env.Feedback),
		difficulty: config.NewDifficultyManager(cfg.Difficulty),
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "rhythm"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Rhythm Tap"
}

// Reset prepares a new round on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.tiles.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.combo = 0
	g.paused = false
}

func (g *Game) start() {
	g.tiles.Clear()
	g.remaining = int(g.cfg.Round.Duration() / time.Second)
	g.combo = 0
	g.paused = false
	g.sess.Start(func(c *session.Clock) {
		c.Every(time.Second, g.countdown)
		g.spawn = c.Every(g.spawnInterval(), g.spawnTile)
		c.Every(g.cfg.Update.Duration(), g.update)
	})
}

func (g *Game) countdown() {
	g.remaining--
	if g.remaining <= 0 {
		g.sess.End(feedback.Success)
		return
	}
	g.spawn.SetInterval(g.spawnInterval())
}

func (g *Game) spawnInterval() time.Duration {
	return g.difficulty.Interval(g.cfg.Spawn.Duration(), g.sess.Score(), g.sess.Elapsed())
}

func (g *Game) spawnTile() {
	g.tiles.Add(Tile{
		ID:        uuid.New(),
		Lane:      g.rng.Intn(g.cfg.Lanes),
		Y:         -g.cfg.Tiles.Height,
		SpawnedAt: g.sess.Elapsed(),
	})
}

// update moves every tile down and ends the round on the first tile that
// left the tap zone untouched.
func (g *Game) update() {
	rows := g.difficulty.Speed(g.cfg.Tiles.FallSpeed, g.sess.Score(), g.sess.Elapsed()) *
		g.cfg.Update.Duration().Seconds()
	g.tiles.Each(func(t *Tile) { t.Y += rows })

	missLine := g.bottom() - g.cfg.Tiles.TapZone + g.cfg.Tiles.Height
	if t, ok := g.tiles.FirstMatch(func(t *Tile) bool {
		return t.live() && t.Y > missLine
	}); ok {
		t.Missed = true
		g.combo = 0
		g.sess.End(feedback.Error)
		return
	}

	offscreen := g.bottom() + g.cfg.Tiles.Height
	g.tiles.RemoveIf(func(t *Tile) bool { return t.Y > offscreen })
}

// tap hits the oldest live tile of lane inside the tap window. A tap that
// hits nothing ends the round, or with strict taps off, only when the lane
// holds no live tile at all.
func (g *Game) tap(lane int) {
	top, bottom := g.window()
	t, ok := g.tiles.FirstMatch(func(t *Tile) bool {
		return t.Lane == lane && t.live() && t.Y >= top && t.Y <= bottom
	})
	if ok {
		t.Tapped = true
		g.sess.AddScore(1)
		g.combo++
		g.sess.Feedback().Notify(feedback.Impact)
		return
	}

	if !g.cfg.StrictTaps {
		if _, pending := g.tiles.FirstMatch(func(t *Tile) bool {
			return t.Lane == lane && t.live()
		}); pending {
			return
		}
	}
	g.combo = 0
	g.sess.End(feedback.Error)
}

// window returns the rows between which a tile center can be tapped.
func (g *Game) window() (top, bottom float64) {
	zone := g.bottom() - g.cfg.Tiles.TapZone
	return zone - g.cfg.Tiles.Height, zone + g.cfg.Tiles.Height
}

func (g *Game) bottom() float64 {
	return float64(g.runtime.ScreenH)
}

func (g *Game) laneWidth() int {
	return max(g.runtime.ScreenW/g.cfg.Lanes, 1)
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

	for _, lane := range in.Lanes() {
		if lane < g.cfg.Lanes && g.sess.Playing() {
			g.tap(lane)
		}
	}
	for _, p := range in.Taps {
		if p.Y < hudRows || !g.sess.Playing() {
			continue
		}
		g.tap(min(p.X/g.laneWidth(), g.cfg.Lanes-1))
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

// Tiles returns the tiles on screen, oldest first.
func (g *Game) Tiles() []Tile {
	return g.tiles.Items()
}

// Combo returns the number of consecutive hits.
func (g *Game) Combo() int {
	return g.combo
}

// Remaining returns the seconds left in the round.
func (g *Game) Remaining() int {
	return g.remaining
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	lw := g.laneWidth()
	h := dst.Height()

	zoneTop := h - int(g.cfg.Tiles.TapZone)
	for lane := range g.cfg.Lanes {
		x0 := lane * lw
		if lane > 0 {
			for y := hudRows; y < h; y++ {
				dst.SetColored(x0, y, '│', core.ColorGray)
			}
		}
		for y := max(zoneTop, hudRows); y < h; y++ {
			for x := x0 + 1; x < x0+lw; x++ {
				dst.SetColored(x, y, '·', core.ColorGray)
			}
		}
		dst.DrawTextColored(x0+lw/2, h-1, laneKeys[lane], core.ColorWhite)
	}
	dst.DrawHLine(0, zoneTop, lw*g.cfg.Lanes, '─')

	for i := range g.tiles.Len() {
		g.drawTile(dst, g.tiles.At(i), lw)
	}
	g.drawHUD(dst)

	switch {
	case g.sess.Phase() == core.PhaseReady:
		dst.DrawMessage("RHYTHM TAP", "Tap tiles as they reach the bottom!",
			fmt.Sprintf("%d seconds. Don't miss or tap empty lanes!", int(g.cfg.Round.Duration()/time.Second)),
			"Lanes: "+strings.Join(laneKeys[:g.cfg.Lanes], " "), "Enter to start")
	case g.sess.Ended():
		lines := []string{fmt.Sprintf("Final score: %d", g.sess.Score())}
		if best, ok := g.sess.Best().Value(); ok && g.sess.Score() >= best {
			lines = append(lines, "New best!")
		}
		dst.DrawMessage("GAME OVER", append(lines, "R to play again")...)
	case g.paused:
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

func (g *Game) drawTile(dst *core.Screen, t *Tile, lw int) {
	if t.Missed {
		return
	}
	glyph, color := '█', core.ColorBrightMagenta
	if t.Lane%2 == 1 {
		color = core.ColorBrightBlue
	}
	if t.Tapped {
		glyph, color = '░', core.ColorGray
	}
	top := int(math.Round(t.Y - g.cfg.Tiles.Height/2))
	for y := top; y < top+int(g.cfg.Tiles.Height); y++ {
		if y < hudRows {
			continue
		}
		for x := t.Lane*lw + 1; x < (t.Lane+1)*lw; x++ {
			dst.SetColored(x, y, glyph, color)
		}
	}
}

func (g *Game) drawHUD(dst *core.Screen) {
	dst.DrawTextColored(1, 0, fmt.Sprintf("Score: %d", g.sess.Score()), core.ColorBrightWhite)
	if g.combo > 1 {
		dst.DrawTextColored(14, 0, fmt.Sprintf("Combo: %dx", g.combo), core.ColorBrightYellow)
	}
	timer := fmt.Sprintf("Time: %2d", g.remaining)
	dst.DrawTextColored(dst.Width()-len(timer)-1, 0, timer, core.ColorBrightCyan)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(g.paused)
}

// Close stops every timer.
func (g *Game) Close() {
	g.sess.Close()
}

func init() {
	registry.Register("rhythm", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
