package snack

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
)

func newTestGame(t *testing.T) (*Game, *sensor.Hub, *feedback.Recorder) {
	t.Helper()
	hub := sensor.NewHub()
	t.Cleanup(hub.Face.Attach())
	rec := &feedback.Recorder{}
	g, err := New(registry.Env{Sensors: hub, Feedback: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 50, Seed: 5})
	t.Cleanup(g.Close)
	return g, hub, rec
}

func start(g *Game) {
	in := core.NewInputFrame()
	in.Set(core.ActionConfirm)
	g.Step(in)
}

func run(g *Game, ticks int) {
	for range ticks {
		g.Step(core.NewInputFrame())
	}
}

func addSnack(g *Game, x, y float64) {
	g.snacks.Add(Snack{ID: uuid.New(), X: x, Y: y, Glyph: '●'})
}

func TestSpawnsInsideMargins(t *testing.T) {
	g, _, _ := newTestGame(t)
	start(g)

	seen := map[uuid.UUID]bool{}
	for range 1000 {
		g.Step(core.NewInputFrame())
		for _, s := range g.Snacks() {
			seen[s.ID] = true
			if s.X < 4 || s.X > 76 {
				t.Fatalf("snack at x %v outside the margins", s.X)
			}
		}
	}
	if len(seen) == 0 {
		t.Fatal("no snacks spawned")
	}
}

func TestLiveSnacksAreCapped(t *testing.T) {
	g, _, _ := newTestGame(t)
	g.cfg.Spawn = config.Seconds(0.02)
	g.cfg.FallSpeed = 0
	start(g)

	run(g, 100)
	if n := len(g.Snacks()); n != g.cfg.MaxLive {
		t.Errorf("live snacks = %d, expected the cap of %d", n, g.cfg.MaxLive)
	}
}

func TestCatch(t *testing.T) {
	tests := []struct {
		name   string
		jaw    float64
		x, y   float64
		caught bool
	}{
		{"open mouth in zone", 1, 40, 20, true},
		{"closed mouth", 0, 40, 20, false},
		{"above the zone", 1, 40, 10, false},
		{"beside the mouth", 1, 70, 20, false},
		{"zone edge", 1, 40 + 0.1667*80 - 0.01, 0.75 * 23, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, hub, rec := newTestGame(t)
			start(g)
			hub.Face.Publish(sensor.Face{JawOpen: tc.jaw})
			addSnack(g, tc.x, tc.y)

			run(g, 2) // one 30ms update
			caught := len(g.Snacks()) == 0
			if caught != tc.caught {
				t.Fatalf("caught = %v, expected %v", caught, tc.caught)
			}
			want := 0
			if tc.caught {
				want = 1
			}
			if g.State().Score != want || rec.Count(feedback.ImpactHeavy) != want {
				t.Errorf("score %d, feedback %d", g.State().Score, rec.Count(feedback.ImpactHeavy))
			}
		})
	}
}

func TestOneCatchPerUpdate(t *testing.T) {
	g, hub, _ := newTestGame(t)
	start(g)
	hub.Face.Publish(sensor.Face{JawOpen: 1})
	addSnack(g, 39, 20)
	addSnack(g, 41, 20)
	second := g.Snacks()[1].ID

	run(g, 2)
	if g.State().Score != 1 || len(g.Snacks()) != 1 || g.Snacks()[0].ID != second {
		t.Fatalf("score %d, snacks %+v; expected the older snack caught first", g.State().Score, g.Snacks())
	}
	run(g, 2)
	if g.State().Score != 2 {
		t.Errorf("score = %d after the second update", g.State().Score)
	}
}

func TestMissedSnacksFallOff(t *testing.T) {
	g, _, _ := newTestGame(t)
	start(g)
	addSnack(g, 10, 23.95)

	run(g, 2)
	if len(g.Snacks()) != 0 {
		t.Errorf("snack below the screen was kept: %+v", g.Snacks())
	}
	if g.State().Score != 0 {
		t.Error("missed snack scored")
	}
}

func TestRoundLastsThirtySeconds(t *testing.T) {
	g, hub, rec := newTestGame(t)
	start(g)
	if !hub.Face.Running() {
		t.Fatal("face tracking not started")
	}

	run(g, int(30*time.Second/(20*time.Millisecond)))
	if !g.State().GameOver || g.Remaining() != 0 {
		t.Fatalf("state %+v, remaining %d", g.State(), g.Remaining())
	}
	if k, _ := rec.Last(); k != feedback.Success {
		t.Errorf("feedback = %v", k)
	}
	if hub.Face.Running() {
		t.Error("face tracking still running after the round")
	}
}

func TestRender(t *testing.T) {
	g, hub, _ := newTestGame(t)
	start(g)
	hub.Face.Publish(sensor.Face{JawOpen: 1})
	addSnack(g, 10, 5)
	run(g, 2)

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if got := screen.Row(23); got == "" {
		t.Fatal("empty bottom row")
	}
	if screen.Get(38, 23) != '(' || screen.Get(40, 23) != 'O' {
		t.Errorf("mouth row = %q", screen.Row(23))
	}
}
