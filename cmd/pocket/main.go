// pocket is a terminal arcade of sensor-driven mini-games: tilt, shake,
// blow and open your mouth, with a keyboard standing in for the device or
// a phone connected over the sensor bridge.
//
// Usage:
//
//	pocket list              - List available games
//	pocket play <game>       - Play a game
//	pocket menu              - Start menu to pick games interactively
//	pocket serve             - Start SSH server for remote play
//	pocket scores <game>     - Show high scores for a game
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 50)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.pocket-arcade/scores.db)
//	--bridge <addr>      - Serve the phone sensor bridge on addr
//	--log <path>         - Log file for terminal commands
//	--config <path>      - Custom game config file or directory
//	--difficulty <name>  - Difficulty preset: easy, normal, hard, fixed
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pocket-arcade/internal/bridge"
	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/platform/tui"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/pocket-arcade/internal/games/balloon"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/egg"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/eightball"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/maze"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/mirror"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/rhythm"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/rocket"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/snack"
	_ "github.com/vovakirdan/pocket-arcade/internal/games/zen"
)

// toneGain is the volume of feedback tones for local play.
const toneGain = 0.4

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagBridge     string
	flagLogPath    string
	flagConfig     string
	flagDifficulty string

	difficulty config.DifficultyPreset
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pocket",
	Short: "Pocket Arcade - sensor mini-games in your terminal",
	Long: `Pocket Arcade is a set of small games played by moving a device:
tilt it, shake it, blow into it or open your mouth at it.

Without a phone the keyboard plays the device: arrows tilt, S shakes,
B blows and M opens the mouth. Start a sensor bridge with --bridge and
open it on a phone to play for real.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  serve    - Start SSH server for remote play
  scores   - View high scores

Examples:
  pocket list
  pocket play balloon
  pocket menu --bridge :8080
  pocket serve --ssh :2222
  pocket scores maze`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	defaultDB := filepath.Join(tui.DefaultDataDir(), "scores.db")
	defaultLog := filepath.Join(tui.DefaultDataDir(), "arcade.log")

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", core.DefaultTickRate, "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", defaultDB, "Path to scores database")
	pf.StringVar(&flagBridge, "bridge", "", "Serve the phone sensor bridge on this address (e.g. :8080)")
	pf.StringVar(&flagLogPath, "log", defaultLog, "Log file for play and menu")
	pf.StringVar(&flagConfig, "config", "", "Path to custom game config YAML or directory")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// applyEnv fills flags the user did not set from .env and POCKET_*
// variables, then validates them.
func applyEnv(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") && env.DB != "" {
		flagDBPath = env.DB
	}
	if !flags.Changed("bridge") && env.Bridge != "" {
		flagBridge = env.Bridge
	}
	if !flags.Changed("fps") && env.FPS > 0 {
		flagFPS = env.FPS
	}
	if flags.Lookup("ssh") != nil && !flags.Changed("ssh") && env.SSHAddr != "" {
		flagSSHAddr = env.SSHAddr
	}

	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	difficulty, err = config.ParsePreset(flagDifficulty)
	return err
}

// openLog opens the log file of a terminal command. Logging to the
// terminal would tear up the alt screen.
func openLog() (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(flagLogPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "pocket",
	})
	return logger, func() { f.Close() }, nil
}

// openStore opens the scores database. Games still run without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "path", flagDBPath, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

// terminalConfig builds the runtime config from the terminal size and
// the global flags.
func terminalConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// sensors returns the hub games read and the keyboard device that drives
// it. With --bridge a phone is the device: the bridge runs until ctx is
// done and no keyboard device is returned.
func sensors(ctx context.Context, logger *log.Logger) (*sensor.Hub, *sensor.Virtual) {
	hub := sensor.NewHub()
	if flagBridge == "" {
		return hub, sensor.NewVirtual(hub)
	}

	srv := bridge.NewServer(hub, logger)
	go func() {
		if err := srv.ListenAndServe(ctx, flagBridge); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("sensor bridge stopped", "addr", flagBridge, "err", err)
		}
	}()
	fmt.Fprintf(os.Stderr, "Sensor bridge on %s, open it on your phone\n", flagBridge)
	return hub, nil
}

// playerName is the name stored with local scores.
func playerName() string {
	return config.Or(os.Getenv("USER"), "player")
}
