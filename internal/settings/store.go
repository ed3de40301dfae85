// Package settings persists the user's timer configuration as a JSON file.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
)

type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current model.Settings
}

// NewStore returns a store holding the defaults. Call Load to read the file.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:    path,
		logger:  logger.With("component", "settings"),
		current: model.DefaultSettings(),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted record. A missing, unreadable or invalid file
// yields the defaults; Load never fails.
func (s *Store) Load() model.Settings {
	loaded, err := readFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no settings file, using defaults", "path", s.path)
		} else {
			s.logger.Warn("could not load settings, using defaults", "path", s.path, "error", err)
		}
		loaded = model.DefaultSettings()
	} else {
		s.logger.Info("settings loaded", "path", s.path)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

func (s *Store) Current() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates candidate, writes it atomically and only then replaces
// the in-memory record.
func (s *Store) Update(candidate model.Settings) error {
	if err := Validate(candidate); err != nil {
		return err
	}

	if err := writeFile(s.path, candidate); err != nil {
		s.logger.Error("could not save settings", "path", s.path, "error", err)
		return apperrors.Persistence("save settings", err)
	}

	s.mu.Lock()
	s.current = candidate
	s.mu.Unlock()

	s.logger.Info("settings saved",
		"work", candidate.WorkMinutes,
		"short_break", candidate.ShortBreakMinutes,
		"long_break", candidate.LongBreakMinutes,
		"cycles", candidate.CyclesBeforeLongBreak,
	)
	return nil
}

// Validate checks every field and reports all offenders at once.
func Validate(candidate model.Settings) error {
	var fields []apperrors.FieldError
	checkMinutes := func(name string, value int) {
		if value < model.MinPhaseMinutes || value > model.MaxPhaseMinutes {
			fields = append(fields, apperrors.FieldError{
				Field:   name,
				Message: fmt.Sprintf("must be between %d and %d minutes", model.MinPhaseMinutes, model.MaxPhaseMinutes),
			})
		}
	}

	checkMinutes("work_minutes", candidate.WorkMinutes)
	checkMinutes("short_break_minutes", candidate.ShortBreakMinutes)
	checkMinutes("long_break_minutes", candidate.LongBreakMinutes)
	if candidate.CyclesBeforeLongBreak < model.MinCycles || candidate.CyclesBeforeLongBreak > model.MaxCycles {
		fields = append(fields, apperrors.FieldError{
			Field:   "cycles_before_long_break",
			Message: fmt.Sprintf("must be between %d and %d", model.MinCycles, model.MaxCycles),
		})
	}

	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

func readFile(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Settings{}, err
	}

	// Fields absent from the file keep their default values.
	loaded := model.DefaultSettings()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return model.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := Validate(loaded); err != nil {
		return model.Settings{}, err
	}
	return loaded, nil
}

func writeFile(path string, settings model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
