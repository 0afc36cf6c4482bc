package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/platform/tui"
	"github.com/vovakirdan/pocket-arcade/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Arrows       - Tilt the device / move the cursor
  Space        - Tap
  D F J K      - Rhythm lanes
  S / B / M    - Shake / blow / open the mouth
  Enter        - Start
  P            - Pause
  R            - Restart (after the game ends)
  Esc          - Leave (when paused or ended)
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  pocket play balloon
  pocket play rocket --difficulty hard
  pocket play maze --bridge :8080
  pocket play rhythm --config ./my-rhythm.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q, run 'pocket list' to see available games", gameID)
	}

	logger, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	hub, virtual := sensors(ctx, logger)
	if virtual != nil {
		virtual.Attach()
		defer virtual.Detach()
	}

	tones := feedback.NewTones(logger, toneGain)
	defer tones.Close()

	game, err := registry.Create(gameID, registry.Env{
		Sensors:    hub,
		Feedback:   tones,
		ConfigPath: flagConfig,
		Difficulty: difficulty,
	})
	if err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	logger.Info("playing", "game", gameID, "fps", flagFPS, "seed", flagSeed, "bridge", flagBridge)
	return tui.Run(game, terminalConfig(), tui.Options{
		Store:   store,
		Player:  playerName(),
		Virtual: virtual,
		Logger:  logger,
	})
}
