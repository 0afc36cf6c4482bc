package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

type stubGame struct {
	id     string
	order  session.Order
	env    Env
	closed int
}

func (g *stubGame) ID() string                           { return g.id }
func (g *stubGame) Title() string                        { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig)             {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                  {}
func (g *stubGame) State() core.GameState                { return core.GameState{} }
func (g *stubGame) Close()                               { g.closed++ }
func (g *stubGame) ScoreOrder() session.Order            { return g.order }
func (g *stubGame) FormatScore(s int) string             { return fmt.Sprintf("%d.%03ds", s/1000, s%1000) }

func TestRegisterAndCreate(t *testing.T) {
	Register("stub-timed", func(env Env) (Game, error) {
		return &stubGame{id: "stub-timed", order: session.LowerIsBetter, env: env}, nil
	})
	Register("stub-toy", func(env Env) (Game, error) {
		return &stubGame{id: "stub-toy", order: session.Unranked, env: env}, nil
	})

	info, ok := Info("stub-timed")
	if !ok || info.Title != "Stub stub-timed" || info.Order != session.LowerIsBetter {
		t.Fatalf("Info = %+v, %v", info, ok)
	}
	if !Exists("stub-toy") || Exists("stub-missing") {
		t.Error("Exists")
	}

	for _, g := range RankedGames() {
		if g.ID == "stub-toy" {
			t.Error("unranked game listed as ranked")
		}
	}

	g, err := Create("stub-timed", Env{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stub := g.(*stubGame)
	if stub.env.Sensors == nil || stub.env.Feedback == nil {
		t.Error("Create should fill in default sensors and feedback")
	}

	if got := FormatScore("stub-timed", 12345); got != "12.345s" {
		t.Errorf("FormatScore = %q", got)
	}
	if got := FormatScore("stub-missing", 7); got != "7" {
		t.Errorf("FormatScore fallback = %q", got)
	}
}

func TestCreateErrors(t *testing.T) {
	if _, err := Create("no-such-game", Env{}); err == nil {
		t.Error("expected error for unknown game")
	}

	boom := errors.New("boom")
	calls := 0
	Register("stub-flaky", func(env Env) (Game, error) {
		calls++
		if calls > 1 {
			return nil, boom
		}
		return &stubGame{id: "stub-flaky"}, nil
	})
	if _, err := Create("stub-flaky", Env{}); !errors.Is(err, boom) {
		t.Errorf("Create error = %v, expected wrapped boom", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(env Env) (Game, error) { return &stubGame{id: "stub-dup"}, nil }
	Register("stub-dup", f)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("stub-dup", f)
}
