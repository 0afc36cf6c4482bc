package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pocket-arcade/internal/feedback"
	"github.com/vovakirdan/pocket-arcade/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a game picker menu",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a game.
Leave a game with Esc once it is paused or over to return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select game
  Tab          - High scores
  Q            - Quit

Examples:
  pocket menu
  pocket menu --fps 30
  pocket menu --db ./scores.db
  pocket menu --bridge :8080`,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	hub, virtual := sensors(ctx, logger)

	tones := feedback.NewTones(logger, toneGain)
	defer tones.Close()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	return tui.RunApp(tui.AppConfig{
		Store:      store,
		Player:     playerName(),
		Sensors:    hub,
		Virtual:    virtual,
		Feedback:   tones,
		ConfigPath: flagConfig,
		Difficulty: difficulty,
		Logger:     logger,
	}, terminalConfig())
}
