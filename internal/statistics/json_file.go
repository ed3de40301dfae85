package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"pomodoro/timer/internal/model"
)

const fileVersion = 1

type fileRecord struct {
	Version int                     `json:"version"`
	Events  []model.CompletionEvent `json:"events"`
}

// JSONFile keeps the whole sequence in one JSON document, rewritten
// atomically on every append.
type JSONFile struct {
	path string

	mu     sync.Mutex
	events []model.CompletionEvent
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Load(_ context.Context) ([]model.CompletionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read statistics file: %w", err)
	}

	var record fileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse statistics file: %w", err)
	}
	for i, e := range record.Events {
		if e.Phase != model.PhaseWork {
			return nil, fmt.Errorf("event %d: unexpected phase %s", i, e.Phase)
		}
		if _, err := model.ParseDate(e.Date, nil); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	f.events = record.Events
	out := make([]model.CompletionEvent, len(record.Events))
	copy(out, record.Events)
	return out, nil
}

// Append adds event and rewrites the file. A failed write keeps the event
// queued so the next successful append persists it too.
func (f *JSONFile) Append(_ context.Context, event model.CompletionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create statistics dir: %w", err)
	}

	data, err := json.MarshalIndent(fileRecord{Version: fileVersion, Events: f.events}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write statistics file: %w", err)
	}
	return nil
}
