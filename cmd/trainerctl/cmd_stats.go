package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
)

var statsFlags struct {
	userID string
	recent int
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate results from the completion archive",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVar(&statsFlags.userID, "user", "", "Limit to one learner")
	f.IntVar(&statsFlags.recent, "recent", 5, "Number of recent runs to list")
}

func runStats(cmd *cobra.Command, _ []string) error {
	store, err := archive.NewStore(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	st, err := store.Stats(ctx, statsFlags.userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	who := "all learners"
	if statsFlags.userID != "" {
		who = statsFlags.userID
	}
	fmt.Fprintln(out, headingStyle.Render("Archive: "+who))
	fmt.Fprintf(out, "Completions:    %d\n", st.Completions)
	if st.Completions == 0 {
		return nil
	}
	fmt.Fprintf(out, "Avg safety:     %.1f\n", st.AverageSafety)
	fmt.Fprintf(out, "Avg risk:       %.1f\n", st.AverageRisk)
	fmt.Fprintf(out, "Accuracy:       %.0f%%\n", st.Accuracy*100)
	printCounts(cmd, "Grades", st.GradeCounts)
	printCounts(cmd, "Scenarios", st.ScenarioCounts)
	printCounts(cmd, "Badges", st.BadgeCounts)

	if statsFlags.recent <= 0 {
		return nil
	}
	recent, err := store.Recent(ctx, statsFlags.userID, statsFlags.recent)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Recent:")
	for _, c := range recent {
		fmt.Fprintf(out, "  %s  %-16s %s  safety=%d risk=%d  %s\n",
			c.CompletedAt.Format("2006-01-02 15:04"), c.ScenarioID, c.Grade, c.SafetyPoints, c.RiskPoints, c.UserID)
	}
	return nil
}

func printCounts(cmd *cobra.Command, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", label)
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(out, "  %-20s %d\n", k, counts[k])
	}
}
