package maze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

func newTestGame(t *testing.T, hub *sensor.Hub) (*Game, *feedback.Recorder) {
	t.Helper()
	rec := &feedback.Recorder{}
	g, err := New(registry.Env{Sensors: hub, Feedback: rec}.WithDefaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 50})
	t.Cleanup(g.Close)

	in := core.NewInputFrame()
	in.Set(core.ActionConfirm)
	g.Step(in)
	return g, rec
}

func inside(area core.RectF, p core.Vec2) bool {
	return p.X >= area.X && p.X <= area.Right() && p.Y >= area.Y && p.Y <= area.Bottom()
}

func TestLayout(t *testing.T) {
	lvl := Layout(core.RectF{X: 0, Y: 1, W: 80, H: 23})

	if len(lvl.Walls) != 4+len(interior) {
		t.Fatalf("walls = %d", len(lvl.Walls))
	}
	start := core.RectAround(lvl.Start, ballSize, ballSize)
	if lvl.Blocked(start) {
		t.Errorf("start %+v is inside a wall", lvl.Start)
	}
	if lvl.Blocked(lvl.Goal) {
		t.Errorf("goal %+v overlaps a wall", lvl.Goal)
	}
	if start.Intersects(lvl.Goal) {
		t.Error("ball starts on the goal")
	}
}

func TestZeroTiltDecays(t *testing.T) {
	g, _ := newTestGame(t, nil)
	g.ball.Vel = core.Vec2{X: 0.4, Y: -0.2}
	friction := g.cfg.Physics.Friction

	prev := g.ball.Vel.Len()
	g.Step(core.NewInputFrame())
	if got := g.ball.Vel.Len(); math.Abs(got-prev*friction) > 1e-9 {
		t.Fatalf("speed after one tick = %v, expected %v", got, prev*friction)
	}

	for i := range 500 {
		prev = g.ball.Vel.Len()
		g.Step(core.NewInputFrame())
		if got := g.ball.Vel.Len(); got > prev*friction+1e-9 {
			t.Fatalf("tick %d: speed grew from %v to %v", i, prev, got)
		}
		if !inside(g.level.Area, g.ball.Pos) {
			t.Fatalf("tick %d: ball left the playfield at %+v", i, g.ball.Pos)
		}
	}
	if g.ball.Vel.Len() > 0.01 {
		t.Errorf("ball still moving at %v", g.ball.Vel.Len())
	}
}

func TestTiltNeverLeavesPlayfield(t *testing.T) {
	hub := sensor.NewHub()
	detach := hub.Motion.Attach()
	defer detach()
	g, _ := newTestGame(t, hub)
	if g.noSensor {
		t.Fatal("motion feed should be available")
	}

	rng := rand.New(rand.NewSource(1))
	for i := range 3000 {
		if i%50 == 0 {
			hub.Motion.Publish(sensor.Motion{Gravity: sensor.Vec3{
				X: rng.Float64()*2 - 1,
				Y: rng.Float64()*2 - 1,
			}})
		}
		g.Step(core.NewInputFrame())
		if !g.sess.Playing() {
			break
		}
		box := core.RectAround(g.ball.Pos, ballSize, ballSize)
		if !inside(g.level.Area, g.ball.Pos) || g.level.Blocked(box) {
			t.Fatalf("tick %d: ball at %+v is out of bounds or in a wall", i, g.ball.Pos)
		}
	}
}

func TestTiltAccelerates(t *testing.T) {
	hub := sensor.NewHub()
	detach := hub.Motion.Attach()
	defer detach()
	g, _ := newTestGame(t, hub)

	hub.Motion.Publish(sensor.Motion{Gravity: sensor.Vec3{X: 1}})
	start := g.ball.Pos
	g.Step(core.NewInputFrame())

	want := g.cfg.Physics.AccelX * g.cfg.Physics.Friction
	if math.Abs(g.ball.Vel.X-want) > 1e-9 || g.ball.Vel.Y != 0 {
		t.Errorf("velocity = %+v, expected x %v", g.ball.Vel, want)
	}
	if g.ball.Pos.X <= start.X {
		t.Error("ball did not move right")
	}
}

func TestWallBounce(t *testing.T) {
	g, _ := newTestGame(t, nil)
	wall := g.level.Walls[4]
	g.ball.Pos = core.Vec2{X: wall.X - 0.8, Y: wall.Y + 1.5}
	g.ball.Vel = core.Vec2{X: 0.5}
	before := g.ball.Pos

	g.Step(core.NewInputFrame())

	want := -0.5 * g.cfg.Physics.Friction * g.cfg.Physics.Bounce
	if math.Abs(g.ball.Vel.X-want) > 1e-9 {
		t.Errorf("velocity after hit = %v, expected %v", g.ball.Vel.X, want)
	}
	if g.ball.Pos != before {
		t.Errorf("ball moved into the wall: %+v", g.ball.Pos)
	}
}

func TestReachGoal(t *testing.T) {
	g, rec := newTestGame(t, nil)

	for range 50 {
		g.Step(core.NewInputFrame())
	}
	if g.State().Score != 1000 {
		t.Fatalf("time after 1s = %d ms", g.State().Score)
	}

	goal := g.level.Goal
	g.ball.Pos = core.Vec2{X: goal.X - 1, Y: goal.Y + 0.5}
	g.ball.Vel = core.Vec2{X: 1}
	g.Step(core.NewInputFrame())

	st := g.State()
	if !st.GameOver {
		t.Fatalf("ball at %+v did not reach the goal", g.ball.Pos)
	}
	if k, _ := rec.Last(); k != feedback.Success {
		t.Errorf("feedback = %v", k)
	}
	if !st.HasBest || st.Best != st.Score {
		t.Errorf("best = %d, score = %d", st.Best, st.Score)
	}
	if got := g.FormatScore(st.Best); got != "1.0s" {
		t.Errorf("FormatScore = %q", got)
	}
}

func TestBestKeepsFastestTime(t *testing.T) {
	g, _ := newTestGame(t, nil)
	g.sess.Best().Record(800)

	for range 50 {
		g.Step(core.NewInputFrame())
	}
	goal := g.level.Goal
	g.ball.Pos = core.Vec2{X: goal.X - 1, Y: goal.Y + 0.5}
	g.ball.Vel = core.Vec2{X: 1}
	g.Step(core.NewInputFrame())

	if best, _ := g.sess.Best().Value(); best != 800 {
		t.Errorf("best = %d, expected the faster 800", best)
	}
	if g.ScoreOrder() != session.LowerIsBetter {
		t.Error("maze should rank lower times first")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	hub := sensor.NewHub()
	detach := hub.Motion.Attach()
	defer detach()
	g, _ := newTestGame(t, hub)

	g.Close()
	g.Close()
	if hub.Motion.Running() {
		t.Error("motion feed still running after Close")
	}
	pos, score := g.ball.Pos, g.State().Score
	g.ball.Vel = core.Vec2{X: 0.3}
	for range 100 {
		g.Step(core.NewInputFrame())
	}
	if g.ball.Pos != pos || g.State().Score != score {
		t.Error("state changed after Close")
	}
}
