// Package timer implements the work/break cycle state machine.
//
// A Machine is not safe for concurrent use. It is driven by a single caller
// that invokes Tick about once per second and relays user commands; callers
// that need concurrency wrap it (see the service package).
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
)

// SettingsSource provides validated settings. CyclesBeforeLongBreak is
// assumed to be at least one.
type SettingsSource interface {
	Current() model.Settings
	Update(candidate model.Settings) error
}

type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, date time.Time, minutes int) (model.CompletionEvent, error)
}

// Notifier plays the end-of-phase notification. Failures are logged and
// otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, finished model.Phase) error
}

type Transition struct {
	From               model.Phase
	To                 model.Phase
	Skipped            bool
	RunState           model.RunState
	CompletedWorkCount int
}

type Observer interface {
	PhaseChanged(Transition)
	Ticked(model.TimerState)
	NotificationFailed(error)
}

type Machine struct {
	settings SettingsSource
	recorder CompletionRecorder
	notifier Notifier
	observer Observer
	now      func() time.Time
	logger   *slog.Logger

	state model.TimerState
}

type Option func(*Machine)

func WithNotifier(n Notifier) Option {
	return func(m *Machine) {
		m.notifier = n
	}
}

func WithObserver(o Observer) Option {
	return func(m *Machine) {
		m.observer = o
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func New(settings SettingsSource, recorder CompletionRecorder, opts ...Option) *Machine {
	m := &Machine{
		settings: settings,
		recorder: recorder,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "timer")
	m.state = idleState()
	return m
}

func idleState() model.TimerState {
	return model.TimerState{
		Phase:    model.PhaseWork,
		RunState: model.RunStateIdle,
	}
}

func (m *Machine) State() model.TimerState {
	return m.state
}

// Start begins a fresh work phase from Idle. On a paused phase it resumes,
// matching the start button of the desktop UI.
func (m *Machine) Start() (model.TimerState, error) {
	if err := m.check(cmdStart); err != nil {
		return m.state, err
	}
	if m.state.RunState == model.RunStatePaused {
		return m.Resume()
	}

	total := m.settings.Current().PhaseSeconds(model.PhaseWork)
	m.state = model.TimerState{
		Phase:              model.PhaseWork,
		RunState:           model.RunStateRunning,
		RemainingSeconds:   total,
		TotalSeconds:       total,
		CompletedWorkCount: m.state.CompletedWorkCount,
	}
	m.logger.Info("timer started", "phase", m.state.Phase, "seconds", total)
	return m.state, nil
}

func (m *Machine) Pause() (model.TimerState, error) {
	if err := m.check(cmdPause); err != nil {
		return m.state, err
	}
	m.state.RunState = model.RunStatePaused
	m.logger.Info("timer paused", "phase", m.state.Phase, "remaining", m.state.RemainingSeconds)
	return m.state, nil
}

func (m *Machine) Resume() (model.TimerState, error) {
	if err := m.check(cmdResume); err != nil {
		return m.state, err
	}
	m.state.RunState = model.RunStateRunning
	m.logger.Info("timer resumed", "phase", m.state.Phase, "remaining", m.state.RemainingSeconds)
	return m.state, nil
}

// Stop resets the whole cycle, including the completed work count. It is
// valid in every state.
func (m *Machine) Stop() model.TimerState {
	m.state = idleState()
	m.logger.Info("timer reset")
	return m.state
}

// Tick advances a running countdown by one second. It is ignored unless the
// timer is running. The returned error is a non-fatal persistence warning
// from recording a completed work phase; the state has advanced regardless.
func (m *Machine) Tick(ctx context.Context) (model.TimerState, error) {
	if !allowed(cmdTick, m.state.RunState) {
		return m.state, nil
	}

	if m.state.RemainingSeconds > 0 {
		m.state.RemainingSeconds--
	}
	if m.observer != nil {
		m.observer.Ticked(m.state)
	}
	if m.state.RemainingSeconds > 0 {
		return m.state, nil
	}
	return m.state, m.complete(ctx, false)
}

// Skip ends the current phase immediately. A skipped work phase advances the
// cycle but is not credited in the statistics, and no notification plays.
func (m *Machine) Skip(ctx context.Context) (model.TimerState, error) {
	if err := m.check(cmdSkip); err != nil {
		return m.state, err
	}
	return m.state, m.complete(ctx, true)
}

// UpdateSettings applies new settings. Only allowed while idle; the values
// are read again at the start of each phase.
func (m *Machine) UpdateSettings(candidate model.Settings) (model.Settings, error) {
	if err := m.check(cmdUpdateSettings); err != nil {
		return m.settings.Current(), err
	}
	if err := m.settings.Update(candidate); err != nil {
		return m.settings.Current(), err
	}
	return m.settings.Current(), nil
}

func (m *Machine) CanStart() bool  { return allowed(cmdStart, m.state.RunState) }
func (m *Machine) CanPause() bool  { return allowed(cmdPause, m.state.RunState) }
func (m *Machine) CanResume() bool { return allowed(cmdResume, m.state.RunState) }
func (m *Machine) CanSkip() bool   { return allowed(cmdSkip, m.state.RunState) }

func (m *Machine) complete(ctx context.Context, skipped bool) error {
	finished := m.state.Phase
	var warning error

	if finished == model.PhaseWork {
		m.state.CompletedWorkCount++
		if !skipped && m.recorder != nil {
			minutes := m.state.TotalSeconds / 60
			if _, err := m.recorder.RecordCompletion(ctx, m.now(), minutes); err != nil {
				m.logger.Warn("completion not persisted", "error", err)
				warning = fmt.Errorf("record completion: %w", err)
			}
		}
	}

	settings := m.settings.Current()
	next := nextPhase(finished, m.state.CompletedWorkCount, settings.CyclesBeforeLongBreak)
	total := settings.PhaseSeconds(next)
	runState := model.RunStatePaused
	if settings.AutoStarts(next) {
		runState = model.RunStateRunning
	}

	m.state = model.TimerState{
		Phase:              next,
		RunState:           runState,
		RemainingSeconds:   total,
		TotalSeconds:       total,
		CompletedWorkCount: m.state.CompletedWorkCount,
	}

	if !skipped {
		m.notify(ctx, finished)
	}

	m.logger.Info("phase finished",
		"finished", finished,
		"next", next,
		"skipped", skipped,
		"run_state", runState,
		"completed_work", m.state.CompletedWorkCount,
	)
	if m.observer != nil {
		m.observer.PhaseChanged(Transition{
			From:               finished,
			To:                 next,
			Skipped:            skipped,
			RunState:           runState,
			CompletedWorkCount: m.state.CompletedWorkCount,
		})
	}
	return warning
}

func (m *Machine) notify(ctx context.Context, finished model.Phase) {
	if m.notifier == nil {
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notifier panic: %v", r)
			}
		}()
		err = m.notifier.Notify(ctx, finished)
	}()
	if err == nil {
		return
	}

	notifyErr := apperrors.Notification(err)
	m.logger.Warn("notification failed", "error", notifyErr)
	if m.observer != nil {
		m.observer.NotificationFailed(notifyErr)
	}
}

func (m *Machine) check(cmd command) error {
	if allowed(cmd, m.state.RunState) {
		return nil
	}
	return apperrors.InvalidTransition(string(cmd), m.state.RunState.String())
}
