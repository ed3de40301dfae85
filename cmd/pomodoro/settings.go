package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "pomodoro/timer/internal/errors"
)

func settingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.settings.Current())
		},
	})

	var (
		work, shortBreak, longBreak, cycles int
		autoBreak, autoWork                 bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  pomodoro settings set --work 50 --short-break 10
  pomodoro settings set --auto-start-work=true`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			candidate := a.settings.Current()
			flags := cmd.Flags()
			if flags.Changed("work") {
				candidate.WorkMinutes = work
			}
			if flags.Changed("short-break") {
				candidate.ShortBreakMinutes = shortBreak
			}
			if flags.Changed("long-break") {
				candidate.LongBreakMinutes = longBreak
			}
			if flags.Changed("cycles") {
				candidate.CyclesBeforeLongBreak = cycles
			}
			if flags.Changed("auto-start-break") {
				candidate.AutoStartBreak = autoBreak
			}
			if flags.Changed("auto-start-work") {
				candidate.AutoStartWork = autoWork
			}

			updated, err := a.timerService().UpdateSettings(candidate)
			if err != nil {
				if appErr, ok := apperrors.As(err); ok {
					for _, f := range appErr.Fields() {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
					}
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(updated)
		},
	}
	set.Flags().IntVar(&work, "work", 0, "Work phase length in minutes (1-180)")
	set.Flags().IntVar(&shortBreak, "short-break", 0, "Short break length in minutes (1-180)")
	set.Flags().IntVar(&longBreak, "long-break", 0, "Long break length in minutes (1-180)")
	set.Flags().IntVar(&cycles, "cycles", 0, "Work phases before a long break (1-12)")
	set.Flags().BoolVar(&autoBreak, "auto-start-break", false, "Start breaks automatically")
	set.Flags().BoolVar(&autoWork, "auto-start-work", false, "Start work phases automatically")
	cmd.AddCommand(set)

	return cmd
}
