package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pomodoro/timer/internal/handler"
	"pomodoro/timer/internal/notify"
	"pomodoro/timer/internal/router"
	"pomodoro/timer/internal/service"
	"pomodoro/timer/internal/timer"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timer behind the HTTP control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	var notifier timer.Notifier = notify.Nop{}
	if a.cfg.Bell {
		notifier = notify.NewBell(os.Stdout)
	}
	svc := a.timerService(service.WithNotifier(notifier))
	tokens := service.NewTokenService(a.cfg.APISecret, a.cfg.TokenTTL)

	if !a.logger.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(router.Deps{
		Tokens:      tokens,
		Auth:        handler.NewAuthHandler(tokens),
		Timer:       handler.NewTimerHandler(svc),
		Metrics:     a.metrics.Handler(),
		CORSOrigins: a.cfg.CORSOrigins,
		Logger:      a.logger,
	})
	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(ctx, a.cfg.TickInterval)
	})
	g.Go(func() error {
		return a.watchSettings(ctx, svc)
	})
	g.Go(func() error {
		a.logger.Info("control API listening", "addr", a.cfg.HTTPAddr, "auth", tokens.Enabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.logger.Info("control API stopped")
	return err
}
