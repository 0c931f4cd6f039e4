// ABOUTME: CLI entry point wiring config, store, enricher and controller
// ABOUTME: Subcommands: play, stations, saved
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mwynn/portable-radio/internal/application/config"
	"github.com/mwynn/portable-radio/internal/logging"
)

var (
	logger   zerolog.Logger
	stations *config.Config
	settings *config.Settings

	stationsPath string
)

var rootCmd = &cobra.Command{
	Use:   "portableradio",
	Short: "Portable Radio - independent-station internet radio player",
	Long:  "Portable Radio streams independent radio stations, reconciles their now-playing feeds into a single track display, and saves the tracks you discover.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stationsPath, "stations", "", "path to a station registry YAML (default: built-in set)")
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(savedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the station registry and player settings (called by
// commands that need them).
func loadConfig() error {
	var err error
	stations, err = config.Load(stationsPath)
	if err != nil {
		return fmt.Errorf("load stations: %w", err)
	}

	settings, err = config.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger = logging.Setup(settings.Environment)
	return nil
}
