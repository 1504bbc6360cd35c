package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hotspot-trainer/internal/storage"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenarios in the content directory",
	RunE:  runScenarios,
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	loaded, err := storage.NewCatalogLoader(cfg.DataDir, log).LoadScenarios(cmd.Context())
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	catalog := scenario.NewCatalog(loaded...)

	out := cmd.OutOrStdout()
	if catalog.Len() == 0 {
		fmt.Fprintf(out, "No scenarios in %s\n", cfg.DataDir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDIFFICULTY\tSCENES\tTIMER\tEXPLORE\tTITLE")
	for _, s := range catalog.List() {
		timer := "-"
		if s.TimerSeconds > 0 {
			timer = fmt.Sprintf("%ds", s.TimerSeconds)
		}
		explore := "no"
		if s.Explorable {
			explore = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.Difficulty, s.SceneCount, timer, explore, s.Title)
	}
	return tw.Flush()
}
