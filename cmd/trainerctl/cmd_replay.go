package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hotspot-trainer/internal/storage"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
)

var replayFlags struct {
	script string
	asJSON bool
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a decision script and print the graded result",
	RunE:  runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringVarP(&replayFlags.script, "file", "f", "", "Decision script (JSON, required)")
	f.BoolVar(&replayFlags.asJSON, "json", false, "Print the final session as JSON")

	_ = replayCmd.MarkFlagRequired("file")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	script, err := loadScript(replayFlags.script)
	if err != nil {
		return err
	}

	loader := storage.NewCatalogLoader(cfg.DataDir, log)
	loaded, err := loader.LoadScenarios(cmd.Context())
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	badges, err := loader.LoadBadges(cmd.Context())
	if err != nil {
		return fmt.Errorf("load badges: %w", err)
	}

	r := NewReplayer(engine.New(grading.NewBadgeCatalog(badges...)), scenario.NewCatalog(loaded...), cfg.HistoryLimit)
	gs, err := r.Run(script)
	if err != nil {
		return fmt.Errorf("replay %s: %w", replayFlags.script, err)
	}

	out := cmd.OutOrStdout()
	if replayFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(gs)
	}
	renderResult(out, gs)
	return nil
}
