package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/dukerupert/habiti/internal/tracker"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show points, level, streaks and per-habit progress",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the stats as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.tracker.Stats()
	w := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	printStats(w, stats, len(a.tracker.Achievements()))
	return nil
}

func printStats(w io.Writer, stats tracker.Stats, catalogue int) {
	g := stats.Game
	fmt.Fprintf(w, "Today %s\n", stats.Today)
	fmt.Fprintf(w, "Level %d  %s points\n", g.Level, humanize.Comma(int64(g.TotalPoints)))
	fmt.Fprintf(w, "Daily streak %s (longest %d)\n", english.Plural(g.DailyStreak, "day", "days"), g.LongestStreak)
	fmt.Fprintf(w, "Achievements %d/%d\n\n", len(g.Unlocked), catalogue)

	if len(stats.Habits) == 0 {
		fmt.Fprintln(w, "No habits yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HABIT\tKIND\tTODAY\tSTREAK\tBEST\t30-DAY\tPOINTS")
	for _, h := range stats.Habits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.0f%%\t%d\n",
			h.Name, h.Kind, h.Today, h.Streak, h.BestStreak, h.CompletionRate, h.Points)
	}
	tw.Flush()
}
