package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/notify"
	"pomodoro/timer/internal/service"
	"pomodoro/timer/internal/timer"
)

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the interactive terminal timer",
		Long: `Run the timer in the terminal. Type a command and press enter:

  s  start (or continue a paused phase)
  p  pause
  r  resume
  k  skip to the next phase
  x  stop and reset the cycle
  q  quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd, opts)
		},
	}
}

func runTerminal(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var notifier timer.Notifier = notify.Nop{}
	if a.cfg.Bell {
		notifier = notify.NewBell(out)
	}
	printer := &statusPrinter{w: out}
	svc := a.timerService(
		service.WithNotifier(notifier),
		service.WithUpdateHook(printer.Print),
	)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		printer.Newline()
	}()
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.watchSettings(ctx, svc); err != nil {
			a.logger.Warn("settings watcher stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		_ = svc.Run(ctx, a.cfg.TickInterval)
	}()

	printer.Message("commands: s=start p=pause r=resume k=skip x=stop q=quit")
	printer.Print(svc.State())

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := dispatch(ctx, svc, line)
			if quit {
				return nil
			}
			if err != nil {
				printer.Message(err.Error())
			}
		}
	}
}

func dispatch(ctx context.Context, svc *service.TimerService, line string) (bool, error) {
	var err error
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return false, nil
	case "s", "start":
		_, err = svc.Start()
	case "p", "pause":
		_, err = svc.Pause()
	case "r", "resume":
		_, err = svc.Resume()
	case "k", "skip":
		_, err = svc.Skip(ctx)
	case "x", "stop", "reset":
		_, err = svc.Stop()
	case "q", "quit", "exit":
		return true, nil
	default:
		err = fmt.Errorf("unknown command %q", strings.TrimSpace(line))
	}
	return false, err
}

// readLines sends each line of r until r ends or ctx is done. A Scan already
// blocked on r returns only when r does.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case lines <- scanner.Text():
			}
		}
	}()
	return lines
}

// statusPrinter redraws a single status line. Ticks and commands print from
// different goroutines.
type statusPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *statusPrinter) Print(view service.StateView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K%s", statusLine(view))
}

func (p *statusPrinter) Message(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K%s\n", msg)
}

func (p *statusPrinter) Newline() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

func statusLine(view service.StateView) string {
	marker := " "
	if view.WarningZone {
		marker = "!"
	}
	return fmt.Sprintf("%s[%s] %s  %-7s  cycle %d/%d  today %d  week %d  streak %dd",
		marker,
		view.Label,
		view.Clock,
		view.RunState,
		view.CyclePosition,
		view.Settings.CyclesBeforeLongBreak,
		view.Stats.Today,
		view.Stats.Week,
		view.Stats.StreakDays,
	)
}
