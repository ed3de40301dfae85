package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"pomodoro/timer/internal/model"
)

// Watcher reports external edits of the settings file. It never mutates the
// store; the callback decides whether the candidate is applied.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	onChange func(model.Settings)
}

func NewWatcher(store *Store, onChange func(model.Settings)) (*Watcher, error) {
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: atomic writes replace the file, which would drop
	// a watch placed on the file itself.
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		store:    store,
		watcher:  w,
		onChange: onChange,
	}, nil
}

// Run delivers changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.store.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.handleChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.store.logger.Warn("settings watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleChange() {
	candidate, err := readFile(w.store.path)
	if err != nil {
		w.store.logger.Warn("ignoring unreadable settings edit", "path", w.store.path, "error", err)
		return
	}
	// Our own writes land here too.
	if candidate == w.store.Current() {
		return
	}
	w.store.logger.Info("settings file changed on disk", "path", w.store.path)
	w.onChange(candidate)
}
