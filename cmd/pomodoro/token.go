package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/service"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			signed, err := service.NewTokenService(a.cfg.APISecret, a.cfg.TokenTTL).Issue(subject)
			if err != nil {
				return fmt.Errorf("issue token (set POMODORO_API_SECRET): %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	return cmd
}
