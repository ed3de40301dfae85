package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const appName = "pomodoro"

type rootOptions struct {
	configPath string
	logLevel   string
	debug      bool
	noLogFile  bool
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Pomodoro work/break timer",
		Long: `Pomodoro runs focused work phases separated by short breaks, with a
long break after every few work phases. Completed work phases are
recorded so daily, weekly and streak statistics can be shown.

Run without a subcommand to start the interactive terminal timer.`,
		Version:       fmt.Sprintf("%s (build: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "App config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (same as --log-level=debug)")
	cmd.PersistentFlags().BoolVar(&opts.noLogFile, "no-log-file", false, "Log to the console only")
	cmd.Flags().BoolP("version", "v", false, "Print version information")

	cmd.AddCommand(
		runCmd(opts),
		serveCmd(opts),
		statsCmd(opts),
		settingsCmd(opts),
		tokenCmd(opts),
	)
	return cmd
}
