package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/statistics"
)

func statsCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completed work statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.timerService()
			summary := svc.Stats()
			var daily []statistics.DayCount
			if days > 0 {
				daily, err = svc.Daily(days)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Summary statistics.Summary    `json:"summary"`
					Daily   []statistics.DayCount `json:"daily,omitempty"`
				}{summary, daily})
			}
			printSummary(out, summary)
			printDaily(out, daily)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Also show a per-day breakdown for the last N days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printSummary(w io.Writer, s statistics.Summary) {
	fmt.Fprintf(w, "Today (%s): %d pomodoros, %s\n", s.Date, s.Today, formatMinutes(s.TodayMinutes))
	fmt.Fprintf(w, "Last 7 days: %d\n", s.Week)
	fmt.Fprintf(w, "All time:    %d (%s)\n", s.AllTime, formatMinutes(s.TotalMinutes))
	fmt.Fprintf(w, "Streak:      %d day(s)\n", s.StreakDays)
}

func printDaily(w io.Writer, days []statistics.DayCount) {
	if len(days) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, d := range days {
		fmt.Fprintf(w, "%s  %3d  %s\n", d.Date, d.Count, strings.Repeat("#", d.Count))
	}
}

func formatMinutes(minutes int) string {
	d := time.Duration(minutes) * time.Minute
	if d < time.Hour {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
