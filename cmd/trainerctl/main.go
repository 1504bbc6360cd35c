// trainerctl is the operator CLI for the hotspot trainer.
//
// Usage:
//
//	trainerctl scenarios [--data-dir=<dir>]
//	trainerctl replay -f <script.json> [--data-dir=<dir>]
//	trainerctl stats [--user=<id>] [--archive=<path>]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hotspot-trainer/internal/config"
	"github.com/jwebster45206/hotspot-trainer/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	dataDir     string
	archivePath string
}

// Filled in by the root PersistentPreRunE.
var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trainerctl",
	Short: "Operate the public WiFi safety trainer",
	Long:  "trainerctl inspects scenario content, replays decision scripts\nagainst the engine and reads the completion archive.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.dataDir, "data-dir", "", "Content directory (default from DATA_DIR)")
	f.StringVar(&rootFlags.archivePath, "archive", "", "SQLite archive path (default from ARCHIVE_PATH)")

	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.Version = version
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rootFlags.dataDir != "" {
		c.DataDir = rootFlags.dataDir
	}
	if rootFlags.archivePath != "" {
		c.ArchivePath = rootFlags.archivePath
	}
	cfg = c
	log = logger.SetupWriter(c, cmd.ErrOrStderr())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
