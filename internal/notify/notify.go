// Package notify provides the end-of-phase notification collaborators.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"pomodoro/timer/internal/model"
)

// Bell rings the terminal bell on the wrapped writer.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Notify(_ context.Context, finished model.Phase) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("ring bell after %s: %w", finished, err)
	}
	return nil
}

type Nop struct{}

func (Nop) Notify(context.Context, model.Phase) error {
	return nil
}

type Notifier interface {
	Notify(ctx context.Context, finished model.Phase) error
}

// Multi notifies every member and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, finished model.Phase) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, finished); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a plain function, mostly for callers that push a message to a UI.
type Func func(ctx context.Context, finished model.Phase) error

func (f Func) Notify(ctx context.Context, finished model.Phase) error {
	return f(ctx, finished)
}
