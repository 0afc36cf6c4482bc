package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
	"github.com/vovakirdan/pocket-arcade/internal/storage"
)

type stubGame struct {
	order  session.Order
	state  core.GameState
	resets int
	steps  int
	closed int
	last   core.InputFrame
}

func (g *stubGame) ID() string                   { return "stub" }
func (g *stubGame) Title() string                { return "Stub" }
func (g *stubGame) ScoreOrder() session.Order    { return g.order }
func (g *stubGame) Reset(core.RuntimeConfig)     { g.resets++ }
func (g *stubGame) Render(dst *core.Screen)      { dst.DrawText(0, 0, "stub") }
func (g *stubGame) State() core.GameState        { return g.state }
func (g *stubGame) Close()                       { g.closed++ }
func (g *stubGame) FormatScore(score int) string { return "#" + strings.Repeat("|", score) }

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	g.steps++
	g.last = in.Clone()
	return core.StepResult{State: g.state}
}

func init() {
	registry.Register("stub", func(registry.Env) (registry.Game, error) {
		return &stubGame{order: session.HigherIsBetter}, nil
	})
}

var quiet = log.New(io.Discard)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next
}

func TestKeyMapActions(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runes("h"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionTap},
		{runes("d"), core.ActionLane1},
		{runes("4"), core.ActionLane4},
		{runes("s"), core.ActionShake},
		{runes("v"), core.ActionBlow},
		{runes("m"), core.ActionMouth},
		{runes("+"), core.ActionGrow},
		{runes("_"), core.ActionShrink},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm},
		{tea.KeyMsg{Type: tea.KeyEscape}, core.ActionBack},
		{runes("p"), core.ActionPause},
		{runes("z"), core.ActionNone},
	}
	for _, tc := range tests {
		t.Run(tc.msg.String(), func(t *testing.T) {
			if got := keys.Action(tc.msg); got != tc.want {
				t.Errorf("Action(%q) = %v, expected %v", tc.msg.String(), got, tc.want)
			}
		})
	}

	frame := core.NewInputFrame()
	if !keys.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyCtrlC}, &frame) {
		t.Error("ctrl+c did not quit")
	}
	if !frame.Empty() {
		t.Error("quit key reached the frame")
	}
}

func TestMouseToFrame(t *testing.T) {
	frame := core.NewInputFrame()
	MapMouseToFrame(tea.MouseMsg{X: 3, Y: 4, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}, &frame)
	MapMouseToFrame(tea.MouseMsg{X: 5, Y: 4, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion}, &frame)
	MapMouseToFrame(tea.MouseMsg{X: 9, Y: 9, Button: tea.MouseButtonRight, Action: tea.MouseActionPress}, &frame)

	if len(frame.Taps) != 1 || frame.Taps[0] != (core.Point{X: 3, Y: 4}) {
		t.Errorf("taps = %v", frame.Taps)
	}
	if len(frame.Drags) != 1 || frame.Drags[0] != (core.Point{X: 5, Y: 4}) {
		t.Errorf("drags = %v", frame.Drags)
	}
}

func TestModelSavesScoreOnce(t *testing.T) {
	store := openStore(t)
	g := &stubGame{order: session.HigherIsBetter}
	var m tea.Model = NewModel(g, core.DefaultConfig(), Options{Store: store, Player: "ann", Logger: quiet})
	m.Init()

	g.state = core.GameState{Phase: core.PhasePlaying, Score: 3}
	m = update(t, m, TickMsg(time.Now()))
	g.state = core.GameState{Phase: core.PhaseEnded, GameOver: true, Score: 42}
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))

	scores, err := store.TopScores("stub", session.HigherIsBetter, 10)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 42 || scores[0].Player != "ann" {
		t.Fatalf("scores = %+v", scores)
	}

	// A restarted game saves again when it ends.
	g.state = core.GameState{Phase: core.PhasePlaying}
	m = update(t, m, TickMsg(time.Now()))
	g.state = core.GameState{Phase: core.PhaseEnded, GameOver: true, Score: 7}
	update(t, m, TickMsg(time.Now()))
	if scores, _ := store.TopScores("stub", session.HigherIsBetter, 10); len(scores) != 2 {
		t.Errorf("saved %d scores after two games", len(scores))
	}
}

func TestModelSkipsToys(t *testing.T) {
	store := openStore(t)
	g := &stubGame{order: session.Unranked, state: core.GameState{Phase: core.PhaseEnded, GameOver: true, Score: 5}}
	m := NewModel(g, core.DefaultConfig(), Options{Store: store, Logger: quiet})
	update(t, m, TickMsg(time.Now()))

	if scores, _ := store.AllScores("stub"); len(scores) != 0 {
		t.Errorf("toy saved %d scores", len(scores))
	}
}

func TestModelPassesInputAndDrivesVirtualDevice(t *testing.T) {
	hub := sensor.NewHub()
	virtual := sensor.NewVirtual(hub)
	virtual.Attach()
	t.Cleanup(virtual.Detach)
	if err := hub.Loudness.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	g := &stubGame{order: session.HigherIsBetter}
	var m tea.Model = NewModel(g, core.DefaultConfig(), Options{Virtual: virtual, Logger: quiet})
	m = update(t, m, runes("b"))
	m = update(t, m, tea.MouseMsg{X: 1, Y: 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m = update(t, m, TickMsg(time.Now()))

	if !g.last.Has(core.ActionBlow) || len(g.last.Taps) != 1 {
		t.Errorf("game saw %+v", g.last)
	}
	if hub.Loudness.Latest().RMS <= 0 {
		t.Error("blowing did not reach the loudness feed")
	}

	update(t, m, TickMsg(time.Now()))
	if g.last.Has(core.ActionBlow) {
		t.Error("input frame was not cleared after the tick")
	}
}

func TestModelBack(t *testing.T) {
	tests := []struct {
		name  string
		order session.Order
		state core.GameState
		leave bool
	}{
		{"ready", session.HigherIsBetter, core.GameState{Phase: core.PhaseReady}, true},
		{"playing", session.HigherIsBetter, core.GameState{Phase: core.PhasePlaying}, false},
		{"paused", session.HigherIsBetter, core.GameState{Phase: core.PhasePlaying, Paused: true}, true},
		{"ended", session.LowerIsBetter, core.GameState{Phase: core.PhaseEnded, GameOver: true}, true},
		{"toy", session.Unranked, core.GameState{Phase: core.PhasePlaying}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := &stubGame{order: tc.order, state: tc.state}
			var m tea.Model = NewModel(g, core.DefaultConfig(), Options{Logger: quiet})
			m = update(t, m, TickMsg(time.Now()))
			m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})

			if got := m.(Model).BackToMenu(); got != tc.leave {
				t.Errorf("BackToMenu = %v, expected %v", got, tc.leave)
			}
			if tc.leave && g.closed == 0 {
				t.Error("game not closed on the way out")
			}
		})
	}
}

func TestModelResizeResetsRunningGame(t *testing.T) {
	g := &stubGame{order: session.HigherIsBetter, state: core.GameState{Phase: core.PhasePlaying}}
	var m tea.Model = NewModel(g, core.DefaultConfig(), Options{Logger: quiet})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if g.resets != 1 {
		t.Fatalf("resets = %d", g.resets)
	}

	g.state = core.GameState{Phase: core.PhaseEnded, GameOver: true}
	m = update(t, m, TickMsg(time.Now()))
	update(t, m, tea.WindowSizeMsg{Width: 90, Height: 30})
	if g.resets != 1 {
		t.Errorf("finished game was reset by a resize")
	}
}

func TestScreenshot(t *testing.T) {
	dir := t.TempDir()
	g := &stubGame{}
	m := NewModel(g, core.DefaultConfig(), Options{DataDir: dir, Logger: quiet})
	if err := m.saveScreenshot(); err != nil {
		t.Fatalf("saveScreenshot: %v", err)
	}
	shots, _ := filepath.Glob(filepath.Join(dir, "screenshots", "stub_*.txt"))
	if len(shots) != 1 {
		t.Errorf("screenshots = %v", shots)
	}
}

func TestAppNavigation(t *testing.T) {
	store := openStore(t)
	if _, err := store.SavePlayerScore("stub", "ann", 3); err != nil {
		t.Fatalf("SavePlayerScore: %v", err)
	}

	app := NewApp(AppConfig{Store: store, Player: "bob", Logger: quiet}, core.DefaultConfig())
	if len(app.menu.Items()) == 0 || app.menu.Items()[0].Best != "#|||" {
		t.Fatalf("menu items = %+v", app.menu.Items())
	}
	if view := app.View(); !strings.Contains(view, "Games") || !strings.Contains(view, "best #|||") {
		t.Errorf("menu view = %q", view)
	}

	var m tea.Model = app
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.(App).Screen(); got != "scores" {
		t.Fatalf("screen after tab = %s", got)
	}
	if !strings.Contains(m.View(), "ann") {
		t.Error("scoreboard does not list the player")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if got := m.(App).Screen(); got != "menu" {
		t.Fatalf("screen after esc = %s", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(App).Screen(); got != "game" {
		t.Fatalf("screen after enter = %s", got)
	}
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if got := m.(App).Screen(); got != "menu" {
		t.Errorf("screen after leaving the game = %s", got)
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Error("q did not quit")
	}
}

func TestRenderScreen(t *testing.T) {
	screen := core.NewScreen(10, 3)
	screen.DrawTextColored(0, 0, "hi", core.ColorGold)
	screen.DrawText(0, 2, "there")

	out := RenderScreen(screen)
	if strings.Count(out, "\n") != 2 {
		t.Errorf("rendered %d lines", strings.Count(out, "\n")+1)
	}
	if !strings.Contains(out, "hi") || !strings.Contains(out, "there") {
		t.Errorf("output = %q", out)
	}
}
