package mirror

import (
	"math"
	"testing"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
)

var breath = sensor.Audio{RMS: 0.05, Decibels: -26}

func newTestGame(t *testing.T) (*Game, *sensor.Hub) {
	t.Helper()
	hub := sensor.NewHub()
	t.Cleanup(hub.Loudness.Attach())
	g, err := New(registry.Env{Sensors: hub}.WithDefaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 50})
	t.Cleanup(g.Close)
	return g, hub
}

func run(g *Game, ticks int) {
	for range ticks {
		g.Step(core.NewInputFrame())
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBreathBuildsFog(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(breath)

	run(g, 5)
	if !near(g.Fog(), 0.15) {
		t.Fatalf("fog after one breath update = %v", g.Fog())
	}
	run(g, 50)
	if !near(g.Fog(), 0.95) {
		t.Errorf("fog = %v, expected the 0.95 cap", g.Fog())
	}
}

func TestQuietLeavesMirrorClear(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(sensor.Audio{RMS: 0.01, Decibels: -40})
	run(g, 100)
	if g.Fog() != 0 {
		t.Errorf("fog = %v without breathing", g.Fog())
	}
}

func TestFogFadesAfterIdle(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(breath)
	run(g, 20) // four breath updates
	hub.Loudness.Publish(sensor.Audio{})

	run(g, 230) // 5s
	if !near(g.Fog(), 0.6) || g.Fading() {
		t.Fatalf("fog %v, fading %v before the idle delay", g.Fog(), g.Fading())
	}
	run(g, 100)
	if !g.Fading() || g.Fog() >= 0.6 {
		t.Fatalf("fog %v, fading %v after the idle delay", g.Fog(), g.Fading())
	}
	run(g, 450) // 16s
	if !near(g.Fog(), 0.3) || g.Fading() {
		t.Errorf("fog %v, fading %v; expected 0.3 faded over 10s", g.Fog(), g.Fading())
	}
}

func TestBreathStopsFade(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(breath)
	run(g, 5)
	hub.Loudness.Publish(sensor.Audio{})
	run(g, 300) // fading
	if !g.Fading() {
		t.Fatal("fade never started")
	}
	before := g.Fog()

	hub.Loudness.Publish(breath)
	run(g, 5)
	if g.Fading() || !near(g.Fog(), before+0.15) {
		t.Errorf("fog %v (was %v), fading %v", g.Fog(), before, g.Fading())
	}
}

func TestWipeNeedsFog(t *testing.T) {
	g, hub := newTestGame(t)
	drag := core.NewInputFrame()
	drag.Drag(10, 10)

	g.Step(drag)
	if g.Wiped(core.Point{X: 10, Y: 10}) {
		t.Fatal("drew on a clear mirror")
	}

	hub.Loudness.Publish(breath)
	run(g, 10)
	g.Step(drag)
	tests := []struct {
		p     core.Point
		wiped bool
	}{
		{core.Point{X: 10, Y: 10}, true},
		{core.Point{X: 12, Y: 10}, true},
		{core.Point{X: 13, Y: 10}, false},
		{core.Point{X: 10, Y: 11}, true},
		{core.Point{X: 11, Y: 11}, false},
	}
	for _, tc := range tests {
		if got := g.Wiped(tc.p); got != tc.wiped {
			t.Errorf("Wiped(%v) = %v, expected %v", tc.p, got, tc.wiped)
		}
	}

	outside := core.NewInputFrame()
	outside.Tap(0, 0)
	g.Step(outside)
	if g.Wiped(core.Point{X: 0, Y: 0}) {
		t.Error("wiped outside the glass")
	}
}

func TestCursorWipeAndClear(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(breath)
	run(g, 10)

	in := core.NewInputFrame()
	in.Set(core.ActionLeft)
	in.Set(core.ActionTap)
	g.Step(in)
	if !g.Wiped(core.Point{X: 39, Y: 12}) {
		t.Fatal("space did not draw at the cursor")
	}

	clearIn := core.NewInputFrame()
	clearIn.Set(core.ActionClear)
	g.Step(clearIn)
	if g.Wiped(core.Point{X: 39, Y: 12}) {
		t.Error("clear kept the drawing")
	}
}

func TestCycleFrames(t *testing.T) {
	g, _ := newTestGame(t)
	cycle := core.NewInputFrame()
	cycle.Set(core.ActionCycle)

	var seen []string
	for range len(g.cfg.Frames) + 1 {
		seen = append(seen, g.Frame())
		g.Step(cycle)
	}
	if seen[0] != "gold" || seen[2] != "rainbow" || seen[len(seen)-1] != "gold" {
		t.Errorf("frames = %v", seen)
	}
}

func TestRender(t *testing.T) {
	g, hub := newTestGame(t)
	hub.Loudness.Publish(breath)
	run(g, 50)
	drag := core.NewInputFrame()
	drag.Drag(20, 10)
	g.Step(drag)

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if screen.Get(5, 5) != '▓' {
		t.Errorf("fog cell = %q", screen.Get(5, 5))
	}
	if screen.Get(20, 10) != ' ' {
		t.Errorf("wiped cell = %q", screen.Get(20, 10))
	}
	if screen.Get(1, 1) != '┌' {
		t.Errorf("frame corner = %q", screen.Get(1, 1))
	}
}
