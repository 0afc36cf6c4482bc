package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
	"github.com/vovakirdan/pocket-arcade/internal/storage"
)

// Options configure how a game runs inside the terminal.
type Options struct {
	Store   *storage.Store  // nil disables score saving
	Player  string          // name stored with each score
	Virtual *sensor.Virtual // keyboard device, nil when a phone drives the sensors
	Logger  *log.Logger
	Keys    KeyMap
	DataDir string // screenshots go under DataDir/screenshots
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Keys.actions == nil {
		o.Keys = DefaultKeyMap()
	}
	if o.DataDir == "" {
		o.DataDir = DefaultDataDir()
	}
	return o
}

// DefaultDataDir returns ~/.pocket-arcade.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pocket-arcade"
	}
	return filepath.Join(home, ".pocket-arcade")
}

// Model is the Bubble Tea model for running one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	ranked     bool
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
	backToMenu bool
	quitOnBack bool // standalone play has no menu to return to
	scoreSaved bool // Whether score has been saved for current game over
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	ranked := true
	if r, ok := game.(registry.Ranked); ok {
		ranked = r.ScoreOrder() != session.Unranked
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts.withDefaults(),
		ranked:     ranked,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	// gameState is set on the first tick (value receiver)
	return tickCmd(m.config)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		MapMouseToFrame(msg, &m.inputFrame)
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		if err := m.saveScreenshot(); err != nil {
			m.opts.Logger.Warn("screenshot failed", "game", m.game.ID(), "err", err)
		}
		return m, nil
	}

	if m.opts.Keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		m.game.Close()
		return m, tea.Quit
	}

	if m.inputFrame.Has(core.ActionBack) && m.canLeave() {
		m.game.Close()
		if m.quitOnBack {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	}

	return m, nil
}

// canLeave reports whether Back leaves the game. A running ranked game
// has to be paused or over first.
func (m Model) canLeave() bool {
	return !m.ranked || m.gameState.Phase != core.PhasePlaying || m.gameState.Paused
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	// Layouts depend on the screen size, so a running game starts over.
	if !m.gameState.GameOver {
		m.game.Reset(m.config)
		m.gameState = m.game.State()
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu || m.quitting {
		return m, nil
	}

	if v := m.opts.Virtual; v != nil {
		v.Apply(m.inputFrame)
		v.Tick(m.config.TickDuration())
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.Phase == core.PhasePlaying {
		m.scoreSaved = false
	}
	if m.gameState.GameOver && !m.scoreSaved {
		m.scoreSaved = true
		m.saveScore()
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config)
}

// saveScore stores the final score of a ranked game. A failed save is
// logged and the game goes on.
func (m Model) saveScore() {
	if !m.ranked || m.opts.Store == nil || m.gameState.Score <= 0 {
		return
	}
	id := m.game.ID()
	if _, err := m.opts.Store.SavePlayerScore(id, m.opts.Player, m.gameState.Score); err != nil {
		m.opts.Logger.Error("save score", "game", id, "err", err)
		return
	}
	m.opts.Logger.Info("score saved", "game", id, "player", m.opts.Player,
		"score", registry.FormatScore(id, m.gameState.Score))
}

// saveScreenshot writes the current screen as text.
func (m *Model) saveScreenshot() error {
	m.screen.Clear()
	m.game.Render(m.screen)

	dir := filepath.Join(m.opts.DataDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return err
	}
	m.opts.Logger.Info("screenshot saved", "path", path)
	return nil
}

// State returns the last state reported by the game.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting reports whether the player asked to quit the arcade.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu reports whether the player left the game.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// Run plays a single game full screen until the player quits.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)
	model.quitOnBack = true
	defer game.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
