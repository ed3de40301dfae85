package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/i18n"
	"pomodoro/timer/internal/logging"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/settings"
	"pomodoro/timer/internal/statistics"
)

var fixedNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.Local)

type countingFailures struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingFailures) PersistenceFailed(store string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[store]++
}

func newTestService(t *testing.T, opts ...Option) (*TimerService, *settings.Store, *statistics.Store) {
	t.Helper()
	dir := t.TempDir()
	logger := logging.Discard()

	settingsStore := settings.NewStore(filepath.Join(dir, "config.json"), logger)
	settingsStore.Load()
	clock := func() time.Time { return fixedNow }
	stats := statistics.Open(context.Background(), statistics.NewJSONFile(filepath.Join(dir, "statistics.json")),
		statistics.WithClock(clock), statistics.WithLogger(logger))

	opts = append([]Option{WithClock(clock), WithLogger(logger)}, opts...)
	return NewTimerService(settingsStore, stats, opts...), settingsStore, stats
}

func oneMinute() model.Settings {
	s := model.DefaultSettings()
	s.WorkMinutes = 1
	s.ShortBreakMinutes = 1
	s.LongBreakMinutes = 2
	return s
}

func TestStateViewOfIdleTimer(t *testing.T) {
	svc, _, _ := newTestService(t)

	view := svc.State()

	assert.Equal(t, model.RunStateIdle, view.RunState)
	assert.Equal(t, "Focus", view.Label)
	assert.Equal(t, "00:00", view.Clock)
	assert.True(t, view.CanStart)
	assert.False(t, view.CanPause)
	assert.Equal(t, model.DefaultSettings(), view.Settings)
	assert.Equal(t, "2026-03-18", view.Stats.Date)
}

func TestCommandsReturnViews(t *testing.T) {
	var updates []StateView
	svc, _, _ := newTestService(t, WithUpdateHook(func(v StateView) { updates = append(updates, v) }))

	view, err := svc.Start()
	require.NoError(t, err)
	assert.Equal(t, "25:00", view.Clock)
	assert.True(t, view.CanPause)

	view, err = svc.Pause()
	require.NoError(t, err)
	assert.True(t, view.CanResume)

	_, err = svc.Pause()
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	view, err = svc.Resume()
	require.NoError(t, err)
	assert.Equal(t, model.RunStateRunning, view.RunState)

	view, err = svc.Stop()
	require.NoError(t, err)
	assert.Equal(t, model.RunStateIdle, view.RunState)

	assert.Len(t, updates, 4)
}

func TestTickCompletesWorkAndRecords(t *testing.T) {
	svc, _, stats := newTestService(t)
	_, err := svc.UpdateSettings(oneMinute())
	require.NoError(t, err)
	_, err = svc.Start()
	require.NoError(t, err)

	var view StateView
	for i := 0; i < 60; i++ {
		view, err = svc.Tick(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, model.PhaseShortBreak, view.Phase)
	assert.Equal(t, model.RunStateRunning, view.RunState)
	assert.Equal(t, 1, view.CompletedWorkCount)
	assert.Equal(t, 1, view.CyclePosition)
	assert.Equal(t, 1, view.Stats.Today)
	assert.Equal(t, 1, stats.TodayMinutes())
}

func TestWarningZoneNearEndOfWork(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.UpdateSettings(oneMinute())
	require.NoError(t, err)
	_, err = svc.Start()
	require.NoError(t, err)

	var view StateView
	for i := 0; i < 54; i++ {
		view, _ = svc.Tick(context.Background())
	}
	assert.True(t, view.WarningZone)
	assert.Equal(t, "00:06", view.Clock)
}

func TestSkipDoesNotRecord(t *testing.T) {
	svc, _, stats := newTestService(t)
	_, err := svc.Start()
	require.NoError(t, err)

	view, err := svc.Skip(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.PhaseShortBreak, view.Phase)
	assert.Equal(t, 1, view.CompletedWorkCount)
	assert.Zero(t, stats.AllTimeCount())
}

func TestUpdateSettingsRejectedWhileRunning(t *testing.T) {
	svc, store, _ := newTestService(t)
	_, err := svc.Start()
	require.NoError(t, err)

	_, err = svc.UpdateSettings(oneMinute())

	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	assert.Equal(t, model.DefaultSettings(), store.Current())
}

func TestUpdateSettingsValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	bad := model.DefaultSettings()
	bad.WorkMinutes = 0

	_, err := svc.UpdateSettings(bad)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
}

func TestExternalSettingsWaitForStop(t *testing.T) {
	svc, store, _ := newTestService(t)
	_, err := svc.Start()
	require.NoError(t, err)

	svc.ApplyExternalSettings(oneMinute())
	assert.Equal(t, model.DefaultSettings(), store.Current())

	_, err = svc.Stop()
	require.NoError(t, err)
	assert.Equal(t, oneMinute(), store.Current())
}

func TestExternalSettingsAppliedWhenIdle(t *testing.T) {
	svc, store, _ := newTestService(t)

	svc.ApplyExternalSettings(oneMinute())

	assert.Equal(t, oneMinute(), store.Current())
}

func TestDaily(t *testing.T) {
	svc, _, stats := newTestService(t)
	_, err := stats.RecordCompletion(context.Background(), fixedNow.AddDate(0, 0, -1), 25)
	require.NoError(t, err)

	days, err := svc.Daily(3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-03-16", days[0].Date)
	assert.Equal(t, 1, days[1].Count)
	assert.Equal(t, "2026-03-18", days[2].Date)

	_, err = svc.Daily(0)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestRunTicksUntilCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, time.Millisecond) }()

	assert.Eventually(t, func() bool {
		return svc.State().RemainingSeconds < 25*60
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Error(t, svc.Run(context.Background(), 0))
	assert.Error(t, svc.Run(context.Background(), -time.Second))
}

func TestLabelFollowsLanguage(t *testing.T) {
	svc, _, _ := newTestService(t, WithLanguage(i18n.Russian))
	assert.Equal(t, "Фокус", svc.State().Label)

	svc, _, _ = newTestService(t)
	assert.Equal(t, "Focus", svc.State().Label)
}

func TestTickReportsStatisticsFailure(t *testing.T) {
	failures := &countingFailures{}
	dir := t.TempDir()
	logger := logging.Discard()
	settingsStore := settings.NewStore(filepath.Join(dir, "config.json"), logger)
	require.NoError(t, settingsStore.Update(oneMinute()))
	// A regular file in place of the statistics directory makes every write fail.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	stats := statistics.Open(context.Background(), statistics.NewJSONFile(filepath.Join(blocker, "statistics.json")),
		statistics.WithLogger(logger))

	svc := NewTimerService(settingsStore, stats, WithFailureRecorder(failures), WithLogger(logger))
	_, err := svc.Start()
	require.NoError(t, err)

	var tickErr error
	var view StateView
	for i := 0; i < 60; i++ {
		view, tickErr = svc.Tick(context.Background())
	}

	require.Error(t, tickErr)
	assert.True(t, apperrors.IsKind(tickErr, apperrors.KindPersistence))
	assert.Equal(t, model.PhaseShortBreak, view.Phase)
	assert.Equal(t, 1, stats.AllTimeCount())
	assert.Equal(t, 1, failures.counts[storeStatistics])
}
