package rocket

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
)

var (
	quiet = sensor.Audio{RMS: 0.001, Decibels: -50}
	loud  = sensor.Audio{RMS: 0.5, Decibels: 0}
)

type fixture struct {
	g   *Game
	hub *sensor.Hub
	rec *feedback.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub := sensor.NewHub()
	t.Cleanup(hub.Loudness.Attach())
	rec := &feedback.Recorder{}
	g, err := New(registry.Env{Sensors: hub, Feedback: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 50, Seed: 11})
	t.Cleanup(g.Close)
	return &fixture{g: g, hub: hub, rec: rec}
}

func (f *fixture) start() {
	in := core.NewInputFrame()
	in.Set(core.ActionConfirm)
	f.g.Step(in)
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame()
	in.Set(a)
	return in
}

func (f *fixture) run(ticks int) {
	for range ticks {
		f.g.Step(core.NewInputFrame())
	}
}

func TestLoudnessSteers(t *testing.T) {
	tests := []struct {
		name  string
		audio sensor.Audio
		up    bool
	}{
		{"quiet sinks", quiet, false},
		{"loud climbs", loud, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.start()
			f.hub.Loudness.Publish(tc.audio)
			start := f.g.Altitude()

			f.run(10)
			moved := f.g.Altitude() - start
			if tc.up && moved >= 0 || !tc.up && moved <= 0 {
				t.Errorf("altitude moved by %v", moved)
			}
		})
	}
}

func TestFlyingIntoAnEdgeCrashes(t *testing.T) {
	tests := []struct {
		name  string
		audio sensor.Audio
		top   bool
	}{
		{"silence sinks into the ground", quiet, false},
		{"shouting hits the ceiling", loud, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.g.cfg.Spawn = config.Seconds(3600)
			f.start()
			f.hub.Loudness.Publish(tc.audio)

			area := f.g.playfield()
			for i := 0; i < 500 && !f.g.Exploding(); i++ {
				f.g.Step(core.NewInputFrame())
				if y := f.g.Altitude(); y < area.Y || y > area.Bottom() {
					t.Fatalf("tick %d: altitude %v left the playfield", i, y)
				}
			}
			if !f.g.Exploding() {
				t.Fatal("rocket never crashed into the edge")
			}
			y := f.g.Altitude()
			if tc.top && y >= area.Y+1 || !tc.top && y <= area.Bottom()-1 {
				t.Errorf("crashed at altitude %v, expected within the edge margin", y)
			}
		})
	}
}

func TestPassingObstacleScores(t *testing.T) {
	f := newFixture(t)
	f.start()
	f.g.obstacles.Add(Obstacle{ID: uuid.New(), Box: core.RectF{X: -3.5, Y: 1, W: 4, H: 3}})
	f.g.obstacles.Add(Obstacle{ID: uuid.New(), Box: core.RectF{X: -3.5, Y: 20, W: 4, H: 4}})

	f.run(1)
	if len(f.g.Obstacles()) != 0 {
		t.Fatalf("obstacles left = %d", len(f.g.Obstacles()))
	}
	if f.g.State().Score != 1 {
		t.Errorf("score = %d, expected one point per passed pair", f.g.State().Score)
	}
}

func TestCrashHoldsExplosionBeforeEnding(t *testing.T) {
	f := newFixture(t)
	f.start()
	rocket := f.g.Rocket()
	f.g.obstacles.Add(Obstacle{ID: uuid.New(), Box: core.RectF{X: rocket.Right(), Y: 1, W: 4, H: 23}})

	f.run(1)
	if !f.g.Exploding() || f.g.State().Phase != core.PhasePlaying {
		t.Fatalf("state %+v, exploding %v", f.g.State(), f.g.Exploding())
	}
	if k, _ := f.rec.Last(); k != feedback.ImpactHeavy {
		t.Errorf("impact feedback = %v", k)
	}
	if f.hub.Loudness.Running() {
		t.Error("loudness feed still running after the crash")
	}
	wall := f.g.Obstacles()[0].Box.X

	// Nothing moves or scores while the explosion is shown, and pause is ignored.
	f.g.Step(press(core.ActionPause))
	f.run(23)
	if !f.g.Exploding() || f.g.State().Paused {
		t.Fatalf("explosion over early: %+v", f.g.State())
	}
	if got := f.g.Obstacles()[0].Box.X; got != wall {
		t.Errorf("wall moved from %v to %v during the explosion", wall, got)
	}

	// 0.5s of explosion at 20ms ticks.
	f.run(1)
	st := f.g.State()
	if !st.GameOver || f.g.Exploding() {
		t.Fatalf("state after the explosion = %+v", st)
	}
	if k, _ := f.rec.Last(); k != feedback.Error {
		t.Errorf("end feedback = %v", k)
	}

	f.g.Step(press(core.ActionRestart))
	if f.g.State().Phase != core.PhasePlaying || f.g.Exploding() {
		t.Errorf("phase after restart = %v", f.g.State().Phase)
	}
}

func TestSpawnPair(t *testing.T) {
	f := newFixture(t)
	f.start()
	f.hub.Loudness.Publish(sensor.Audio{RMS: 0.1, Decibels: -35}) // hold altitude

	f.run(100)
	obs := f.g.Obstacles()
	if len(obs) != 2 {
		t.Fatalf("obstacles after 2s = %d, expected a pair", len(obs))
	}
	top, bottom := obs[0].Box, obs[1].Box
	if top.X != 82 || bottom.X != 82 {
		t.Errorf("pair spawned at x %v/%v, expected just off screen", top.X, bottom.X)
	}
	if gap := bottom.Y - top.Bottom(); math.Abs(gap-7) > 1e-9 {
		t.Errorf("gap = %v, expected 7", gap)
	}
	center := (top.Bottom() + bottom.Y) / 2
	if center < 1+4 || center > 24-4 {
		t.Errorf("gap center %v within the edge space", center)
	}
	if math.Abs(bottom.Bottom()-24) > 1e-9 || top.Y != 1 {
		t.Errorf("walls do not reach the edges: %+v %+v", top, bottom)
	}
}

func TestNoSensorKeepsPlaying(t *testing.T) {
	rec := &feedback.Recorder{}
	g, err := New(registry.Env{Feedback: rec}.WithDefaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 50})
	in := core.NewInputFrame()
	in.Set(core.ActionConfirm)
	g.Step(in)

	if !g.noSensor || g.State().Phase != core.PhasePlaying {
		t.Fatalf("noSensor %v, phase %v", g.noSensor, g.State().Phase)
	}
	start := g.Altitude()
	g.Step(core.NewInputFrame())
	if g.Altitude() <= start {
		t.Error("without a microphone the rocket should sink")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
}
