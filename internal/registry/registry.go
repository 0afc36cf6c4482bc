// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/session"
)

// Game is the core interface that all arcade games must implement.
// Games contain pure logic with no external dependencies (especially no Bubble Tea).
// The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID returns a unique identifier for this game (e.g., "balloon", "maze").
	// Used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for display (e.g., "Balloon Pop").
	Title() string

	// Reset initializes the game for a screen size and seed and enters
	// the Ready phase. The in-memory best score survives.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	// Input is abstracted to platform-level actions (Tap, Lane1, etc.).
	// Returns the result of this tick including current game state.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current game state (phase, score, best, paused).
	State() core.GameState

	// Close stops every timer. Safe to call more than once.
	Close()
}

// Ranked is implemented by games whose scores are compared. Games that do
// not implement it are higher-is-better.
type Ranked interface {
	ScoreOrder() session.Order
}

// ScoreFormatter is implemented by games whose scores are not plain counts.
type ScoreFormatter interface {
	FormatScore(score int) string
}

// Env is everything a game receives from the platform.
type Env struct {
	Sensors    *sensor.Hub
	Feedback   feedback.Sink
	ConfigPath string                  // custom config file or directory
	Difficulty config.DifficultyPreset // empty keeps the file's settings
}

// WithDefaults fills the zero fields of e.
func (e Env) WithDefaults() Env {
	if e.Sensors == nil {
		e.Sensors = sensor.NewHub()
	}
	e.Feedback = feedback.OrNop(e.Feedback)
	return e
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
	Order session.Order
}

// Factory is a function that creates a new instance of a game.
type Factory func(env Env) (Game, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]GameInfo)
	formats   = make(map[string]ScoreFormatter)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID is already registered or cannot be
// built with default settings.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	// Get metadata by creating a temporary instance
	g, err := f(Env{}.WithDefaults())
	if err != nil {
		panic(fmt.Sprintf("registry: game %q: %v", id, err))
	}
	defer g.Close()

	info := GameInfo{ID: id, Title: g.Title(), Order: session.HigherIsBetter}
	if r, ok := g.(Ranked); ok {
		info.Order = r.ScoreOrder()
	}
	if sf, ok := g.(ScoreFormatter); ok {
		formats[id] = sf
	}
	factories[id] = f
	infos[id] = info
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Info returns the metadata of a registered game.
func Info(id string) (GameInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}

// RankedGames returns the games whose scores are kept, sorted by ID.
func RankedGames() []GameInfo {
	var result []GameInfo
	for _, info := range List() {
		if info.Order != session.Unranked {
			result = append(result, info)
		}
	}
	return result
}

// Create instantiates a new game by its ID.
// Returns an error if the game ID is not registered.
func Create(id string, env Env) (Game, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	g, err := f(env.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("registry: create %s: %w", id, err)
	}
	return g, nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// FormatScore renders a score the way the game shows it.
func FormatScore(id string, score int) string {
	mu.RLock()
	sf, ok := formats[id]
	mu.RUnlock()

	if ok {
		return sf.FormatScore(score)
	}
	return strconv.Itoa(score)
}
