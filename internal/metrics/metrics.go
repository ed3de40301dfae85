// Package metrics exposes timer activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/timer"
)

type Metrics struct {
	registry *prometheus.Registry

	completions         *prometheus.CounterVec
	skips               *prometheus.CounterVec
	ticks               prometheus.Counter
	notifyFailures      prometheus.Counter
	persistenceFailures *prometheus.CounterVec
	remaining           prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pomodoro",
			Name:      "phase_completions_total",
			Help:      "Phases that ran to zero, by phase.",
		}, []string{"phase"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pomodoro",
			Name:      "phase_skips_total",
			Help:      "Phases ended early with skip, by phase.",
		}, []string{"phase"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pomodoro",
			Name:      "ticks_total",
			Help:      "Countdown ticks applied to a running phase.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pomodoro",
			Name:      "notification_failures_total",
			Help:      "End-of-phase notifications that failed.",
		}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pomodoro",
			Name:      "persistence_failures_total",
			Help:      "Failed writes, by store.",
		}, []string{"store"}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pomodoro",
			Name:      "remaining_seconds",
			Help:      "Seconds left in the current phase.",
		}),
	}

	m.registry.MustRegister(
		m.completions,
		m.skips,
		m.ticks,
		m.notifyFailures,
		m.persistenceFailures,
		m.remaining,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PhaseChanged(t timer.Transition) {
	if t.Skipped {
		m.skips.WithLabelValues(t.From.String()).Inc()
	} else {
		m.completions.WithLabelValues(t.From.String()).Inc()
	}
}

func (m *Metrics) Ticked(state model.TimerState) {
	m.ticks.Inc()
	m.remaining.Set(float64(state.RemainingSeconds))
}

func (m *Metrics) NotificationFailed(error) {
	m.notifyFailures.Inc()
}

func (m *Metrics) PersistenceFailed(store string) {
	m.persistenceFailures.WithLabelValues(store).Inc()
}

var _ timer.Observer = (*Metrics)(nil)
