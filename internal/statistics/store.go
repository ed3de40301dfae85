// Package statistics records completed work sessions and derives the daily,
// weekly, all-time and streak views from that append-only sequence.
package statistics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
)

// Backend is the durable side of the store.
type Backend interface {
	Load(ctx context.Context) ([]model.CompletionEvent, error)
	Append(ctx context.Context, event model.CompletionEvent) error
}

type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	events []model.CompletionEvent
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the event sequence. Load failures are logged and leave the
// store empty.
func Open(ctx context.Context, backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "statistics")

	events, err := backend.Load(ctx)
	if err != nil {
		s.logger.Warn("could not load statistics, starting empty", "error", err)
		events = nil
	}
	s.events = events
	return s
}

// RecordCompletion appends one work completion dated date. The event is kept
// in memory even when persisting it fails; the error is then a persistence
// error the caller may surface as a warning.
func (s *Store) RecordCompletion(ctx context.Context, date time.Time, minutes int) (model.CompletionEvent, error) {
	event := model.CompletionEvent{
		ID:          uuid.NewString(),
		Date:        model.DateOf(date),
		Phase:       model.PhaseWork,
		Minutes:     minutes,
		CompletedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	total := len(s.events)
	s.mu.Unlock()

	if err := s.backend.Append(ctx, event); err != nil {
		s.logger.Error("could not save statistics", "error", err)
		return event, apperrors.Persistence("save statistics", err)
	}

	s.logger.Info("recorded pomodoro", "minutes", minutes, "total", total)
	return event, nil
}

// Events returns a copy of the sequence in recording order.
func (s *Store) Events() []model.CompletionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CompletionEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) TodayCount() int {
	return s.countOn(model.DateOf(s.now()))
}

func (s *Store) TodayMinutes() int {
	today := model.DateOf(s.now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.events {
		if e.Date == today {
			total += e.Minutes
		}
	}
	return total
}

// WeekCount counts completions in the rolling seven calendar days ending on
// ref, inclusive.
func (s *Store) WeekCount(ref time.Time) int {
	window := make(map[string]struct{}, 7)
	for i := 0; i < 7; i++ {
		window[model.DateOf(ref.AddDate(0, 0, -i))] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.events {
		if _, ok := window[e.Date]; ok {
			count++
		}
	}
	return count
}

func (s *Store) AllTimeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) TotalMinutes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.events {
		total += e.Minutes
	}
	return total
}

// CurrentStreak counts consecutive days with at least one completion. The run
// may end on ref or on the day before it (today not worked yet); any other gap
// yields zero.
func (s *Store) CurrentStreak(ref time.Time) int {
	days := s.daySet()

	day := ref
	if _, ok := days[model.DateOf(day)]; !ok {
		day = ref.AddDate(0, 0, -1)
		if _, ok := days[model.DateOf(day)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[model.DateOf(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

type DayCount struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Minutes int    `json:"minutes"`
}

// DailyCounts returns one entry per calendar day from..to inclusive, oldest
// first, including days without completions.
func (s *Store) DailyCounts(from, to time.Time) []DayCount {
	if model.DateOf(from) > model.DateOf(to) {
		return nil
	}

	s.mu.RLock()
	byDate := make(map[string]DayCount)
	for _, e := range s.events {
		dc := byDate[e.Date]
		dc.Count++
		dc.Minutes += e.Minutes
		byDate[e.Date] = dc
	}
	s.mu.RUnlock()

	var out []DayCount
	last := model.DateOf(to)
	for day := from; ; day = day.AddDate(0, 0, 1) {
		key := model.DateOf(day)
		dc := byDate[key]
		dc.Date = key
		out = append(out, dc)
		if key == last {
			return out
		}
	}
}

type Summary struct {
	Date         string `json:"date"`
	Today        int    `json:"today"`
	TodayMinutes int    `json:"todayMinutes"`
	Week         int    `json:"week"`
	AllTime      int    `json:"allTime"`
	TotalMinutes int    `json:"totalMinutes"`
	StreakDays   int    `json:"streakDays"`
}

func (s *Store) Summary(ref time.Time) Summary {
	date := model.DateOf(ref)
	todayMinutes := 0
	s.mu.RLock()
	for _, e := range s.events {
		if e.Date == date {
			todayMinutes += e.Minutes
		}
	}
	s.mu.RUnlock()

	return Summary{
		Date:         date,
		Today:        s.countOn(date),
		TodayMinutes: todayMinutes,
		Week:         s.WeekCount(ref),
		AllTime:      s.AllTimeCount(),
		TotalMinutes: s.TotalMinutes(),
		StreakDays:   s.CurrentStreak(ref),
	}
}

func (s *Store) countOn(date string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.events {
		if e.Date == date {
			count++
		}
	}
	return count
}

func (s *Store) daySet() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := make(map[string]struct{}, len(s.events))
	for _, e := range s.events {
		days[e.Date] = struct{}{}
	}
	return days
}
