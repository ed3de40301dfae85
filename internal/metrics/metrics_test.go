package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/timer"
)

func TestObserverCounters(t *testing.T) {
	m := New()

	m.PhaseChanged(timer.Transition{From: model.PhaseWork, To: model.PhaseShortBreak})
	m.PhaseChanged(timer.Transition{From: model.PhaseWork, To: model.PhaseShortBreak, Skipped: true})
	m.PhaseChanged(timer.Transition{From: model.PhaseShortBreak, To: model.PhaseWork})
	m.Ticked(model.TimerState{RemainingSeconds: 42})
	m.NotificationFailed(errors.New("no audio"))
	m.PersistenceFailed("statistics")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("work")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("short_break")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skips.WithLabelValues("work")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.remaining))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceFailures.WithLabelValues("statistics")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.Ticked(model.TimerState{RemainingSeconds: 7})

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "pomodoro_remaining_seconds 7")
	assert.Contains(t, recorder.Body.String(), "pomodoro_ticks_total 1")
}
