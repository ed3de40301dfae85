package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"pomodoro/timer/internal/config"
	"pomodoro/timer/internal/db"
	"pomodoro/timer/internal/i18n"
	"pomodoro/timer/internal/logging"
	"pomodoro/timer/internal/metrics"
	"pomodoro/timer/internal/repository"
	"pomodoro/timer/internal/service"
	"pomodoro/timer/internal/settings"
	"pomodoro/timer/internal/statistics"
)

// app holds everything a command needs, built once from the root flags.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	settings *settings.Store
	stats    *statistics.Store
	metrics  *metrics.Metrics
	lang     i18n.Lang

	database *sql.DB
	closeLog func() error
}

// newApp builds the app for one command. Interactive commands own the
// terminal, so their console log only shows warnings and errors; the log file
// still gets everything at the configured level.
func newApp(ctx context.Context, opts *rootOptions, console io.Writer, interactive bool) (*app, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		level = slog.LevelDebug
	}
	logOpts := logging.Options{Level: level, Console: console, Dir: cfg.LogDir()}
	if opts.noLogFile {
		logOpts.Dir = ""
	}
	if interactive && level < slog.LevelWarn {
		logOpts.ConsoleLevel = slog.LevelWarn
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.New(),
		lang:     i18n.Resolve(cfg.Language, os.Getenv),
		closeLog: closeLog,
	}

	a.settings = settings.NewStore(cfg.SettingsPath, logger)
	a.settings.Load()

	backend, err := a.statisticsBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.stats = statistics.Open(ctx, backend, statistics.WithLogger(logger))

	logger.Debug("app ready",
		"data_dir", cfg.DataDir,
		"settings", cfg.SettingsPath,
		"statistics_backend", cfg.StatisticsBackend,
		"language", a.lang,
	)
	return a, nil
}

func (a *app) statisticsBackend(ctx context.Context) (statistics.Backend, error) {
	if a.cfg.StatisticsBackend != config.BackendSQLite {
		return statistics.NewJSONFile(a.cfg.StatisticsPath), nil
	}

	database, err := db.OpenSQLite(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.RunMigrations(ctx, database, db.Migrations()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.database = database
	return repository.NewEventRepository(database), nil
}

func (a *app) timerService(opts ...service.Option) *service.TimerService {
	base := []service.Option{
		service.WithLogger(a.logger),
		service.WithObserver(a.metrics),
		service.WithFailureRecorder(a.metrics),
		service.WithLanguage(a.lang),
	}
	return service.NewTimerService(a.settings, a.stats, append(base, opts...)...)
}

// watchSettings reloads edits of the settings file into svc until ctx is done.
func (a *app) watchSettings(ctx context.Context, svc *service.TimerService) error {
	if !a.cfg.WatchSettings {
		return nil
	}
	w, err := settings.NewWatcher(a.settings, svc.ApplyExternalSettings)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (a *app) Close() {
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}
