package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/i18n"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/settings"
	"pomodoro/timer/internal/statistics"
	"pomodoro/timer/internal/timer"
)

// FailureRecorder counts persistence failures per store.
type FailureRecorder interface {
	PersistenceFailed(store string)
}

const (
	storeSettings   = "settings"
	storeStatistics = "statistics"
)

// TimerService serialises every command and tick against one Machine so the
// HTTP handlers, the ticker loop and the settings watcher can share it.
type TimerService struct {
	mu       sync.Mutex
	machine  *timer.Machine
	settings *settings.Store
	stats    *statistics.Store
	failures FailureRecorder
	onUpdate func(StateView)
	now      func() time.Time
	logger   *slog.Logger
	lang     i18n.Lang

	// pending holds an externally edited settings file that arrived while a
	// phase was in flight. It is applied on the next Stop.
	pending *model.Settings
}

type StateView struct {
	model.TimerState
	Label         string             `json:"label"`
	Clock         string             `json:"clock"`
	WarningZone   bool               `json:"warningZone"`
	CyclePosition int                `json:"cyclePosition"`
	CanStart      bool               `json:"canStart"`
	CanPause      bool               `json:"canPause"`
	CanResume     bool               `json:"canResume"`
	CanSkip       bool               `json:"canSkip"`
	Settings      model.Settings     `json:"settings"`
	Stats         statistics.Summary `json:"stats"`
	ServerTime    time.Time          `json:"serverTime"`
}

type Option func(*serviceOptions)

type serviceOptions struct {
	notifier timer.Notifier
	observer timer.Observer
	failures FailureRecorder
	onUpdate func(StateView)
	now      func() time.Time
	logger   *slog.Logger
	lang     i18n.Lang
}

func WithNotifier(n timer.Notifier) Option {
	return func(o *serviceOptions) { o.notifier = n }
}

func WithObserver(obs timer.Observer) Option {
	return func(o *serviceOptions) { o.observer = obs }
}

func WithFailureRecorder(f FailureRecorder) Option {
	return func(o *serviceOptions) { o.failures = f }
}

// WithUpdateHook is called with the new view after every tick and command.
// It runs outside the service lock.
func WithUpdateHook(fn func(StateView)) Option {
	return func(o *serviceOptions) { o.onUpdate = fn }
}

func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithLanguage sets the language of StateView.Label.
func WithLanguage(lang i18n.Lang) Option {
	return func(o *serviceOptions) { o.lang = lang }
}

func NewTimerService(settingsStore *settings.Store, stats *statistics.Store, opts ...Option) *TimerService {
	o := serviceOptions{now: time.Now, logger: slog.Default(), lang: i18n.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	machineOpts := []timer.Option{
		timer.WithClock(o.now),
		timer.WithLogger(o.logger),
	}
	if o.notifier != nil {
		machineOpts = append(machineOpts, timer.WithNotifier(o.notifier))
	}
	if o.observer != nil {
		machineOpts = append(machineOpts, timer.WithObserver(o.observer))
	}

	return &TimerService{
		machine:  timer.New(settingsStore, stats, machineOpts...),
		settings: settingsStore,
		stats:    stats,
		failures: o.failures,
		onUpdate: o.onUpdate,
		now:      o.now,
		logger:   o.logger.With("component", "service"),
		lang:     o.lang,
	}
}

func (s *TimerService) State() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *TimerService) Start() (StateView, error) {
	return s.command(func() error {
		_, err := s.machine.Start()
		return err
	})
}

func (s *TimerService) Pause() (StateView, error) {
	return s.command(func() error {
		_, err := s.machine.Pause()
		return err
	})
}

func (s *TimerService) Resume() (StateView, error) {
	return s.command(func() error {
		_, err := s.machine.Resume()
		return err
	})
}

func (s *TimerService) Stop() (StateView, error) {
	return s.command(func() error {
		s.machine.Stop()
		s.applyPendingLocked()
		return nil
	})
}

func (s *TimerService) Skip(ctx context.Context) (StateView, error) {
	return s.command(func() error {
		_, err := s.machine.Skip(ctx)
		return err
	})
}

// Tick advances the countdown once. A returned error is a persistence
// warning; the view reflects the advanced state either way.
func (s *TimerService) Tick(ctx context.Context) (StateView, error) {
	s.mu.Lock()
	_, err := s.machine.Tick(ctx)
	if err != nil {
		s.persistenceFailedLocked(storeStatistics, err)
	}
	view := s.viewLocked()
	s.mu.Unlock()

	s.publish(view)
	return view, err
}

func (s *TimerService) Settings() model.Settings {
	return s.settings.Current()
}

// UpdateSettings is allowed only while the timer is idle.
func (s *TimerService) UpdateSettings(candidate model.Settings) (model.Settings, error) {
	s.mu.Lock()
	updated, err := s.machine.UpdateSettings(candidate)
	if apperrors.IsKind(err, apperrors.KindPersistence) {
		s.persistenceFailedLocked(storeSettings, err)
	}
	view := s.viewLocked()
	s.mu.Unlock()

	if err == nil {
		s.publish(view)
	}
	return updated, err
}

// ApplyExternalSettings takes a settings file edited outside the program. It
// is applied now when idle, otherwise after the next Stop.
func (s *TimerService) ApplyExternalSettings(candidate model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = &candidate
	if s.machine.State().RunState != model.RunStateIdle {
		s.logger.Info("settings file changed, applying after reset")
		return
	}
	s.applyPendingLocked()
}

func (s *TimerService) Stats() statistics.Summary {
	return s.stats.Summary(s.now())
}

// Daily returns the last days calendar days ending today, oldest first.
func (s *TimerService) Daily(days int) ([]statistics.DayCount, error) {
	if days < 1 || days > 366 {
		return nil, apperrors.BadRequest("invalid_days", "days must be between 1 and 366")
	}
	today := s.now()
	return s.stats.DailyCounts(today.AddDate(0, 0, -(days-1)), today), nil
}

// Run ticks once per interval until ctx is done.
func (s *TimerService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Warn("tick completed with warning", "error", err)
			}
		}
	}
}

func (s *TimerService) command(fn func() error) (StateView, error) {
	s.mu.Lock()
	err := fn()
	view := s.viewLocked()
	s.mu.Unlock()

	if err == nil {
		s.publish(view)
	}
	return view, err
}

func (s *TimerService) applyPendingLocked() {
	if s.pending == nil {
		return
	}
	candidate := *s.pending
	s.pending = nil

	if _, err := s.machine.UpdateSettings(candidate); err != nil {
		if apperrors.IsKind(err, apperrors.KindPersistence) {
			s.persistenceFailedLocked(storeSettings, err)
		}
		s.logger.Warn("external settings rejected", "error", err)
		return
	}
	s.logger.Info("external settings applied")
}

func (s *TimerService) persistenceFailedLocked(store string, err error) {
	s.logger.Warn("persistence failed", "store", store, "error", err)
	if s.failures != nil {
		s.failures.PersistenceFailed(store)
	}
}

func (s *TimerService) viewLocked() StateView {
	state := s.machine.State()
	current := s.settings.Current()
	now := s.now()
	return StateView{
		TimerState:    state,
		Label:         i18n.PhaseLabel(s.lang, state.Phase),
		Clock:         state.Clock(),
		WarningZone:   state.InWarningZone(),
		CyclePosition: state.CyclePosition(current.CyclesBeforeLongBreak),
		CanStart:      s.machine.CanStart(),
		CanPause:      s.machine.CanPause(),
		CanResume:     s.machine.CanResume(),
		CanSkip:       s.machine.CanSkip(),
		Settings:      current,
		Stats:         s.stats.Summary(now),
		ServerTime:    now.UTC(),
	}
}

func (s *TimerService) publish(view StateView) {
	if s.onUpdate != nil {
		s.onUpdate(view)
	}
}
