package session

import (
	"math/rand"

	"github.com/vovakirdan/pocket-arcade/internal/core"
)

// Margins is the spawn-free border inside a playfield.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Uniform returns margins of m on every side.
func Uniform(m float64) Margins {
	return Margins{Left: m, Top: m, Right: m, Bottom: m}
}

// Inset shrinks area by the margins. An area too small to hold any point
// collapses onto its centre.
func (m Margins) Inset(area core.RectF) core.RectF {
	r := core.RectF{
		X: area.X + m.Left,
		Y: area.Y + m.Top,
		W: area.W - m.Left - m.Right,
		H: area.H - m.Top - m.Bottom,
	}
	if r.W < 0 {
		r.X = area.X + area.W/2
		r.W = 0
	}
	if r.H < 0 {
		r.Y = area.Y + area.H/2
		r.H = 0
	}
	return r
}

// RandomPoint returns a uniformly random point inside area minus margins.
func RandomPoint(rng *rand.Rand, area core.RectF, m Margins) core.Vec2 {
	r := m.Inset(area)
	return core.Vec2{
		X: r.X + rng.Float64()*r.W,
		Y: r.Y + rng.Float64()*r.H,
	}
}
