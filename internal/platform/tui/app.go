package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/storage"
)

// AppConfig holds what one arcade session shares between its games.
type AppConfig struct {
	Store      *storage.Store
	Player     string
	Sensors    *sensor.Hub     // nil gets a fresh hub
	Virtual    *sensor.Virtual // keyboard device publishing into Sensors
	Feedback   feedback.Sink
	ConfigPath string
	Difficulty config.DifficultyPreset
	Logger     *log.Logger
	DataDir    string
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenScores
)

// resources tracks what must be released when a session ends, however it
// ends. Shared by every copy of the App value.
type resources struct {
	mu      sync.Mutex
	game    registry.Game
	sensors *sensor.Hub
	virtual *sensor.Virtual
}

func (r *resources) setGame(g registry.Game) {
	r.mu.Lock()
	r.game = g
	r.mu.Unlock()
}

func (r *resources) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.game != nil {
		r.game.Close()
		r.game = nil
	}
	if r.virtual != nil {
		r.virtual.Detach()
	}
	r.sensors.StopAll()
}

// App is the top-level model of an arcade session: menu, games and the
// scoreboard. Local play and every SSH session run one App.
type App struct {
	cfg      AppConfig
	res      *resources
	config   core.RuntimeConfig
	screen   appScreen
	menu     MenuModel
	scores   ScoreboardModel
	game     Model
	notice   string // shown under the menu, e.g. a game that failed to start
	quitting bool
}

// NewApp creates a session starting at the menu. The virtual device, when
// set, is attached for the lifetime of the session.
func NewApp(cfg AppConfig, rc core.RuntimeConfig) App {
	if cfg.Sensors == nil {
		cfg.Sensors = sensor.NewHub()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Virtual != nil {
		cfg.Virtual.Attach()
	}
	return App{
		cfg:    cfg,
		res:    &resources{sensors: cfg.Sensors, virtual: cfg.Virtual},
		config: rc,
		menu:   NewMenuModel(cfg.Store, rc),
	}
}

// Init initializes the session.
func (a App) Init() tea.Cmd {
	return a.menu.Init()
}

// Close releases the running game and the sensors. Safe to call more
// than once.
func (a App) Close() {
	a.res.close()
}

// Update handles messages for the session.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.config.ScreenW = wsm.Width
		a.config.ScreenH = wsm.Height
	}

	switch a.screen {
	case screenGame:
		return a.updateGame(msg)
	case screenScores:
		return a.updateScores(msg)
	}
	return a.updateMenu(msg)
}

func (a App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		a.menu = menu
	}

	switch {
	case a.menu.IsQuitting():
		a.quitting = true
		a.Close()
		return a, tea.Quit

	case a.menu.WantsScoreboard():
		a.screen = screenScores
		a.scores = NewScoreboardModel(a.cfg.Store, a.config.ScreenW, a.config.ScreenH)
		return a, a.scores.Init()

	case a.menu.Selected() != nil:
		return a.startGame(a.menu.Selected().GameID)
	}

	return a, cmd
}

func (a App) startGame(id string) (tea.Model, tea.Cmd) {
	game, err := registry.Create(id, registry.Env{
		Sensors:    a.cfg.Sensors,
		Feedback:   a.cfg.Feedback,
		ConfigPath: a.cfg.ConfigPath,
		Difficulty: a.cfg.Difficulty,
	})
	if err != nil {
		a.cfg.Logger.Error("create game", "game", id, "err", err)
		a.notice = err.Error()
		a.menu = NewMenuModel(a.cfg.Store, a.config)
		return a, nil
	}
	a.cfg.Logger.Info("game started", "game", id, "player", a.cfg.Player)

	rc := a.config
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	a.game = NewModel(game, rc, Options{
		Store:   a.cfg.Store,
		Player:  a.cfg.Player,
		Virtual: a.cfg.Virtual,
		Logger:  a.cfg.Logger,
		DataDir: a.cfg.DataDir,
	})
	a.res.setGame(game)
	a.screen = screenGame
	a.notice = ""
	return a, a.game.Init()
}

func (a App) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.game.Update(msg)
	if game, ok := next.(Model); ok {
		a.game = game
	}

	if a.game.IsQuitting() {
		a.quitting = true
		a.Close()
		return a, tea.Quit
	}
	if a.game.BackToMenu() {
		a.res.setGame(nil)
		a.cfg.Sensors.StopAll()
		a.screen = screenMenu
		a.menu = NewMenuModel(a.cfg.Store, a.config)
		return a, a.menu.Init()
	}

	return a, cmd
}

func (a App) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.scores.Update(msg)
	if scores, ok := next.(ScoreboardModel); ok {
		a.scores = scores
	}

	if a.scores.IsQuitting() {
		a.quitting = true
		a.Close()
		return a, tea.Quit
	}
	if a.scores.IsGoingBack() {
		a.screen = screenMenu
		a.menu = NewMenuModel(a.cfg.Store, a.config)
		return a, a.menu.Init()
	}
	return a, cmd
}

var noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// View renders the current screen.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	switch a.screen {
	case screenGame:
		return a.game.View()
	case screenScores:
		return a.scores.View()
	}
	if a.notice != "" {
		return a.menu.View() + "\n" + centerText(noticeStyle.Render(a.notice), a.config.ScreenW) + "\n"
	}
	return a.menu.View()
}

// Screen reports which screen is showing: "menu", "game" or "scores".
func (a App) Screen() string {
	switch a.screen {
	case screenGame:
		return "game"
	case screenScores:
		return "scores"
	}
	return "menu"
}

// RunApp runs a local arcade session until the player quits.
func RunApp(cfg AppConfig, rc core.RuntimeConfig) error {
	app := NewApp(cfg, rc)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
