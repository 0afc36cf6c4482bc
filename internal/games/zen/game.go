// Package zen implements the Zen Garden: rake patterns into the sand around
// the rocks. There is nothing to win.
package zen

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

const (
	hudRows     = 1
	sizeStep    = 5
	rockW       = 5
	rockH       = 2
	grainChance = 0.08
)

type grain struct {
	p     core.Point
	light bool
}

// Game implements the Zen Garden toy. It has no score and never ends.
type Game struct {
	cfg  config.ZenConfig
	sess *session.Session

	runtime core.RuntimeConfig
	rng     *rand.Rand
	size    int
	grooves map[core.Point]rune
	rocks   []core.Rect
	grains  []grain
	cursor  core.Point
	lowered bool        // the cursor rake touches the sand
	last    *core.Point // end of the current mouse stroke
}

// New creates a new Zen Garden instance.
func New(env registry.Env) (*Game, error) {
	cfg, err := config.Load[config.ZenConfig]("zen", env.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Rake.Tines < 1 {
		cfg.Rake.Tines = 1
	}
	return &Game{
		cfg:     cfg,
		sess:    session.New(session.Unranked, env.Feedback),
		size:    cfg.Rake.Size,
		grooves: make(map[core.Point]rune),
	}, nil
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "zen"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Zen Garden"
}

// ScoreOrder reports that the garden keeps no score.
func (g *Game) ScoreOrder() session.Order {
	return session.Unranked
}

// Reset lays out fresh sand and rocks on a screen of the given size.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.sess.Reset()
	g.runtime = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	clear(g.grooves)
	g.lowered = false
	g.last = nil
	g.size = core.Clamp(g.cfg.Rake.Size, g.cfg.Rake.MinSize, g.cfg.Rake.MaxSize)

	garden := g.Garden()
	g.cursor = core.Point{X: garden.X + garden.W/2, Y: garden.Y + garden.H/2}

	g.grains = g.grains[:0]
	for y := garden.Y; y < garden.Bottom(); y++ {
		for x := garden.X; x < garden.Right(); x++ {
			if g.rng.Float64() < grainChance {
				g.grains = append(g.grains, grain{p: core.Point{X: x, Y: y}, light: g.rng.Intn(2) == 0})
			}
		}
	}

	g.rocks = g.rocks[:0]
	area := core.RectF{X: float64(garden.X), Y: float64(garden.Y), W: float64(garden.W - rockW), H: float64(garden.H - rockH)}
	for range g.cfg.Rocks {
		p := session.RandomPoint(g.rng, area, session.Uniform(2))
		g.rocks = append(g.rocks, core.NewRect(int(p.X), int(p.Y), rockW, rockH))
	}
}

// Garden returns the sand area in screen cells.
func (g *Game) Garden() core.Rect {
	return core.NewRect(0, hudRows, g.runtime.ScreenW, max(g.runtime.ScreenH-hudRows-1, 0))
}

// Spacing returns the distance between tines.
func (g *Game) Spacing() int {
	return max(1, g.size/10)
}

// Size returns the rake size.
func (g *Game) Size() int {
	return g.size
}

// Step advances the toy by one tick. The garden is live from the first step.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if !g.sess.Playing() {
		g.sess.Start(nil)
	}

	if in.Has(core.ActionGrow) {
		g.size = min(g.size+sizeStep, g.cfg.Rake.MaxSize)
	}
	if in.Has(core.ActionShrink) {
		g.size = max(g.size-sizeStep, g.cfg.Rake.MinSize)
	}
	if in.Has(core.ActionClear) {
		clear(g.grooves)
	}
	if in.Has(core.ActionTap) {
		g.lowered = !g.lowered
		if g.lowered {
			g.rake(g.cursor, g.cursor)
		}
	}
	g.moveCursor(in)

	for _, p := range in.Taps {
		g.rake(p, p)
		g.last = &p
	}
	for _, p := range in.Drags {
		from := p
		if g.last != nil {
			from = *g.last
		}
		g.rake(from, p)
		g.last = &p
	}

	g.sess.Advance(g.runtime.TickDuration())
	return core.StepResult{State: g.State()}
}

func (g *Game) moveCursor(in core.InputFrame) {
	from := g.cursor
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
	garden := g.Garden()
	g.cursor.X = core.Clamp(g.cursor.X, garden.X, max(garden.Right()-1, garden.X))
	g.cursor.Y = core.Clamp(g.cursor.Y, garden.Y, max(garden.Bottom()-1, garden.Y))
	if g.lowered && g.cursor != from {
		g.rake(from, g.cursor)
	}
}

// rake draws one groove per tine along the segment from a to b.
func (g *Game) rake(a, b core.Point) {
	dx, dy := b.X-a.X, b.Y-a.Y
	glyph, offset := '─', core.Point{Y: 1}
	switch {
	case dx == 0 && dy == 0:
	case core.Abs(dx) >= 2*core.Abs(dy):
	case core.Abs(dy) >= 2*core.Abs(dx):
		glyph, offset = '│', core.Point{X: 2}
	case dx*dy > 0:
		glyph = '╲'
	default:
		glyph = '╱'
	}

	s := g.Spacing()
	n := g.cfg.Rake.Tines
	garden := g.Garden()
	for i := range n {
		k := (i - (n-1)/2) * s
		ox, oy := offset.X*k, offset.Y*k
		line(a, b, func(p core.Point) {
			q := core.Point{X: p.X + ox, Y: p.Y + oy}
			if garden.Contains(q.X, q.Y) && !g.onRock(q) {
				g.grooves[q] = glyph
			}
		})
	}
}

func (g *Game) onRock(p core.Point) bool {
	for _, r := range g.rocks {
		if r.Contains(p.X, p.Y) {
			return true
		}
	}
	return false
}

// line visits every cell from a to b (Bresenham).
func line(a, b core.Point, fn func(core.Point)) {
	dx, dy := core.Abs(b.X-a.X), -core.Abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	for {
		fn(a)
		if a == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			a.X += sx
		}
		if e2 <= dx {
			err += dx
			a.Y += sy
		}
	}
}

// Groove returns the groove glyph at p, if any.
func (g *Game) Groove(p core.Point) (rune, bool) {
	r, ok := g.grooves[p]
	return r, ok
}

// Rocks returns the rocks in screen cells.
func (g *Game) Rocks() []core.Rect {
	return g.rocks
}

// Render draws the garden to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	for _, gr := range g.grains {
		color := core.ColorSand
		if gr.light {
			color = core.ColorBrightWhite
		}
		dst.SetColored(gr.p.X, gr.p.Y, '·', color)
	}
	for p, r := range g.grooves {
		dst.SetColored(p.X, p.Y, r, core.ColorCopper)
	}
	for _, r := range g.rocks {
		dst.DrawTextColored(r.X, r.Y, "▄███▄", core.ColorGray)
		dst.DrawTextColored(r.X, r.Y+1, "▀███▀", core.ColorGray)
	}

	cursor := '+'
	if g.lowered {
		cursor = '▼'
	}
	dst.SetColored(g.cursor.X, g.cursor.Y, cursor, core.ColorBrightWhite)

	dst.DrawTextColored(1, 0, g.Title(), core.ColorBrightWhite)
	size := fmt.Sprintf("Rake: %2d", g.size)
	dst.DrawTextColored(dst.Width()-len(size)-1, 0, size, core.ColorGray)
	dst.DrawTextCenteredColored(dst.Height()-1, "drag to rake  Space lower/lift  +/- size  X clear", core.ColorGray)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.sess.State(false)
}

// Close stops the session.
func (g *Game) Close() {
	g.sess.Close()
	g.last = nil
}

func init() {
	registry.Register("zen", func(env registry.Env) (registry.Game, error) {
		return New(env)
	})
}
