package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/statistics"
)

// EventRepository stores completion events in SQLite. It satisfies
// statistics.Backend.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ statistics.Backend = (*EventRepository)(nil)

func (r *EventRepository) Load(ctx context.Context) ([]model.CompletionEvent, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, event_date, phase, minutes, completed_at
		 FROM completion_events
		 ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.CompletionEvent
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) Append(ctx context.Context, event model.CompletionEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM completion_events`).Scan(&seq); err != nil {
		return fmt.Errorf("next event seq: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO completion_events (id, event_date, phase, minutes, completed_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Date,
		event.Phase.String(),
		event.Minutes,
		event.CompletedAt.UTC().Format(time.RFC3339Nano),
		seq,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*model.CompletionEvent, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, event_date, phase, minutes, completed_at
		 FROM completion_events
		 WHERE id = ?`,
		id,
	)
	return scanEvent(row)
}

// Import appends events not already stored, in order. Used to move a JSON
// statistics file into the database.
func (r *EventRepository) Import(ctx context.Context, events []model.CompletionEvent) (int, error) {
	imported := 0
	for _, event := range events {
		_, err := r.Get(ctx, event.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return imported, err
		}
		if err := r.Append(ctx, event); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (*model.CompletionEvent, error) {
	event := model.CompletionEvent{}
	var phase string
	var completedAt string
	err := s.Scan(
		&event.ID,
		&event.Date,
		&phase,
		&event.Minutes,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	parsedPhase, err := model.ParsePhase(phase)
	if err != nil {
		return nil, fmt.Errorf("parse event phase: %w", err)
	}
	event.Phase = parsedPhase

	if _, err := model.ParseDate(event.Date, time.Local); err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}

	parsedCompletedAt, err := parseTime(completedAt)
	if err != nil {
		return nil, fmt.Errorf("parse event completed_at: %w", err)
	}
	event.CompletedAt = parsedCompletedAt

	return &event, nil
}

// parseTime accepts the RFC3339Nano text written by Append and plain RFC3339
// from hand-edited rows.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
