package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
)

func TestSessionLifecycle(t *testing.T) {
	rec := &feedback.Recorder{}
	s := New(HigherIsBetter, rec)

	if s.Phase() != core.PhaseReady {
		t.Fatalf("new session phase = %v, expected ready", s.Phase())
	}

	ticks := 0
	s.Start(func(c *Clock) {
		c.Every(tick, func() { ticks++ })
	})
	if !s.Playing() {
		t.Fatalf("phase = %v, expected playing", s.Phase())
	}

	s.Advance(5 * tick)
	s.AddScore(3)
	s.End(feedback.Success)

	if !s.Ended() {
		t.Fatalf("phase = %v, expected ended", s.Phase())
	}
	if ticks != 5 {
		t.Errorf("ticks = %d, expected 5", ticks)
	}
	if last, _ := rec.Last(); last != feedback.Success {
		t.Errorf("terminal feedback = %v, expected success", last)
	}

	// Ending twice is a no-op.
	s.End(feedback.Error)
	if rec.Count(feedback.Error) != 0 {
		t.Error("End on an ended session must not fire feedback")
	}
}

func TestSessionScoreMonotoneAndFrozen(t *testing.T) {
	s := New(HigherIsBetter, nil)

	s.AddScore(5)
	if s.Score() != 0 {
		t.Fatalf("score changed while ready: %d", s.Score())
	}

	s.Start(nil)
	prev := 0
	for _, n := range []int{1, -4, 0, 2, 7} {
		s.AddScore(n)
		if s.Score() < prev {
			t.Fatalf("score decreased from %d to %d", prev, s.Score())
		}
		prev = s.Score()
	}
	if s.Score() != 10 {
		t.Errorf("score = %d, expected 10", s.Score())
	}

	s.End(feedback.Success)
	s.AddScore(100)
	if s.Score() != 10 {
		t.Errorf("score changed after end: %d", s.Score())
	}
}

func TestSessionBestAcrossCycles(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		finals   []int
		expected int
	}{
		{"higher is better", HigherIsBetter, []int{4, 9, 2}, 9},
		{"lower is better", LowerIsBetter, []int{4200, 3100, 5000}, 3100},
		{"zero counts as a score", HigherIsBetter, []int{0}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.order, nil)
			for _, final := range tc.finals {
				s.Start(nil)
				s.AddScore(final)
				s.End(feedback.Success)
			}
			best, ok := s.Best().Value()
			if !ok || best != tc.expected {
				t.Errorf("best = %d (%v), expected %d", best, ok, tc.expected)
			}
		})
	}
}

func TestSessionRestartClearsScoreAndTimers(t *testing.T) {
	s := New(HigherIsBetter, nil)
	old := 0
	s.Start(func(c *Clock) { c.Every(tick, func() { old++ }) })
	s.AddScore(3)
	s.End(feedback.Error)

	fresh := 0
	s.Start(func(c *Clock) { c.Every(tick, func() { fresh++ }) })
	s.Advance(tick)

	if s.Score() != 0 {
		t.Errorf("restart should clear the score, got %d", s.Score())
	}
	if old != 0 || fresh != 1 {
		t.Errorf("old timer fired %d, new timer fired %d; expected 0 and 1", old, fresh)
	}
	if s.Elapsed() != tick {
		t.Errorf("Elapsed() = %v, expected %v", s.Elapsed(), tick)
	}
}

func TestSessionCloseStopsClock(t *testing.T) {
	s := New(HigherIsBetter, nil)
	fired := 0
	s.Start(func(c *Clock) { c.Every(tick, func() { fired++ }) })
	s.Close()
	s.Close()
	s.Advance(time.Second)

	if fired != 0 {
		t.Errorf("timers fired %d times after Close", fired)
	}
}

func TestRamp(t *testing.T) {
	r := Ramp{
		Initial: 500 * time.Millisecond,
		Step:    67 * time.Millisecond,
		Every:   5 * time.Second,
		Floor:   100 * time.Millisecond,
	}

	tests := []struct {
		elapsed  time.Duration
		expected time.Duration
	}{
		{0, 500 * time.Millisecond},
		{4900 * time.Millisecond, 500 * time.Millisecond},
		{5 * time.Second, 433 * time.Millisecond},
		{12 * time.Second, 366 * time.Millisecond},
		{25 * time.Second, 165 * time.Millisecond},
		{30 * time.Second, 100 * time.Millisecond},
		{time.Hour, 100 * time.Millisecond},
	}

	for _, tc := range tests {
		if got := r.At(tc.elapsed); got != tc.expected {
			t.Errorf("At(%v) = %v, expected %v", tc.elapsed, got, tc.expected)
		}
	}
}

func TestRampScale(t *testing.T) {
	r := Ramp{Initial: time.Second, Step: 100 * time.Millisecond, Every: 5 * time.Second, Floor: 200 * time.Millisecond}
	scaled := r.Scale(0.5)

	if scaled.Initial != 500*time.Millisecond || scaled.Floor != 100*time.Millisecond {
		t.Errorf("Scale(0.5) = %+v", scaled)
	}
	if scaled.Every != r.Every {
		t.Error("Scale must not change the step period")
	}
}

func TestEntitiesOrderAndRemoval(t *testing.T) {
	var e Entities[int]
	for i := 1; i <= 6; i++ {
		e.Add(i)
	}

	removed := e.RemoveIf(func(v *int) bool { return *v%2 == 0 })
	if removed != 3 {
		t.Errorf("removed %d, expected 3", removed)
	}
	got := e.Items()
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Errorf("items = %v, expected [1 3 5]", got)
	}

	e.Clear()
	if e.Len() != 0 {
		t.Errorf("Len() = %d after Clear", e.Len())
	}
}

func TestFirstMatchPicksOldest(t *testing.T) {
	type balloon struct {
		id  int
		box core.RectF
	}
	items := []balloon{
		{1, core.RectF{X: 0, Y: 0, W: 4, H: 4}},
		{2, core.RectF{X: 1, Y: 1, W: 4, H: 4}},
		{3, core.RectF{X: 20, Y: 20, W: 4, H: 4}},
	}
	tap := core.RectF{X: 2, Y: 2, W: 1, H: 1}

	hit, ok := Overlapping(items, func(b *balloon) core.RectF { return b.box }, tap)
	if !ok || hit.id != 1 {
		t.Fatalf("hit = %+v, expected balloon 1", hit)
	}

	calls := 0
	FirstMatch(items, func(b *balloon) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("FirstMatch evaluated %d candidates, expected to stop at the first hit", calls)
	}

	if _, ok := FirstMatch(items, func(b *balloon) bool { return b.id == 9 }); ok {
		t.Error("FirstMatch should report no match")
	}
}

func TestRandomPointWithinMargins(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	area := core.RectF{X: 0, Y: 0, W: 80, H: 24}
	m := Margins{Left: 4, Top: 3, Right: 6, Bottom: 2}

	for range 1000 {
		p := RandomPoint(rng, area, m)
		if p.X < 4 || p.X > 74 || p.Y < 3 || p.Y > 22 {
			t.Fatalf("point %+v outside margins", p)
		}
	}

	tiny := core.RectF{X: 0, Y: 0, W: 4, H: 4}
	p := RandomPoint(rng, tiny, Uniform(5))
	if p.X != 2 || p.Y != 2 {
		t.Errorf("too-small area should collapse to centre, got %+v", p)
	}
}
