package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/config"
	"pomodoro/timer/internal/db"
	"pomodoro/timer/internal/repository"
	"pomodoro/timer/internal/statistics"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		importJSON bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQLite statistics schema",
		Long: `Migrate creates or upgrades the SQLite statistics database. With
--import-json it also copies events from the JSON statistics file, skipping
events already present.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			return migrate(cmd.Context(), cfg, importJSON, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "App config file path (YAML)")
	cmd.Flags().BoolVar(&importJSON, "import-json", false, "Import events from the JSON statistics file")
	return cmd
}

func migrate(ctx context.Context, cfg config.Config, importJSON bool, logger *slog.Logger) error {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	applied, err := db.RunMigrations(ctx, database, db.Migrations())
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations applied", "db", cfg.DBPath, "applied", applied)

	if !importJSON {
		return nil
	}

	events, err := statistics.NewJSONFile(cfg.StatisticsPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.StatisticsPath, err)
	}
	imported, err := repository.NewEventRepository(database).Import(ctx, events)
	if err != nil {
		return fmt.Errorf("import events: %w", err)
	}
	logger.Info("events imported", "from", cfg.StatisticsPath, "read", len(events), "imported", imported)
	return nil
}
