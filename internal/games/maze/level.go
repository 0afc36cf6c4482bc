package maze

import (
	"math"

	"github.com/vovakirdan/pocket-arcade/internal/core"
)

// Level is the fixed maze layout scaled to a playfield.
type Level struct {
	Area  core.RectF
	Walls []core.RectF
	Start core.Vec2
	Goal  core.RectF
}

// span is a wall or zone given as fractions of the playfield. A zero
// width or height means one cell thick.
type span struct {
	x, y, w, h float64
}

// The zigzag is the same every round.
var interior = []span{
	{0.30, 0.18, 0, 0.24},
	{0.30, 0.18, 0.40, 0},
	{0.60, 0.30, 0, 0.24},
	{0.20, 0.53, 0.40, 0},
	{0.20, 0.53, 0, 0.24},
	{0.20, 0.77, 0.50, 0},
	{0.65, 0.65, 0, 0.18},
}

var (
	startAt = core.Vec2{X: 0.13, Y: 0.12}
	goalAt  = span{0.77, 0.775, 0.20, 0.095}
)

// Layout builds the maze for area. Walls and goal are aligned to cells.
func Layout(area core.RectF) Level {
	lvl := Level{Area: area}

	// Border.
	lvl.Walls = append(lvl.Walls,
		core.RectF{X: area.X, Y: area.Y, W: area.W, H: 1},
		core.RectF{X: area.X, Y: area.Bottom() - 1, W: area.W, H: 1},
		core.RectF{X: area.X, Y: area.Y, W: 1, H: area.H},
		core.RectF{X: area.Right() - 1, Y: area.Y, W: 1, H: area.H},
	)
	for _, s := range interior {
		lvl.Walls = append(lvl.Walls, s.place(area))
	}

	lvl.Start = core.Vec2{
		X: math.Floor(area.X+startAt.X*area.W) + 0.5,
		Y: math.Floor(area.Y+startAt.Y*area.H) + 0.5,
	}
	lvl.Goal = goalAt.place(area)
	return lvl
}

func (s span) place(area core.RectF) core.RectF {
	return core.RectF{
		X: math.Round(area.X + s.x*area.W),
		Y: math.Round(area.Y + s.y*area.H),
		W: max(math.Round(s.w*area.W), 1),
		H: max(math.Round(s.h*area.H), 1),
	}
}

// Blocked reports whether box overlaps any wall.
func (l *Level) Blocked(box core.RectF) bool {
	for _, w := range l.Walls {
		if w.Intersects(box) {
			return true
		}
	}
	return false
}
