package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ajramos/labelsheet/internal/sheet"
)

// Mirror is the snapshot store the watcher diffs the sheet against.
// db.RowStore is the production implementation.
type Mirror interface {
	Rows(ctx context.Context) ([]sheet.Row, error)
	ReplaceAll(ctx context.Context, rows []sheet.Row) error
}

// Watcher turns sheet polling into edit events. The sheet host has no
// push channel here, so each poll compares the current name cells
// against the mirror taken after the previous poll and synthesizes one
// EditEvent per changed cell.
type Watcher struct {
	Source     sheet.RowStore
	Mirror     Mirror
	Dispatcher *Dispatcher
	Interval   time.Duration
	Logger     *slog.Logger
}

// NewWatcher creates a watcher polling source on the given interval
func NewWatcher(source sheet.RowStore, mirror Mirror, dispatcher *Dispatcher, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{Source: source, Mirror: mirror, Dispatcher: dispatcher, Interval: interval, Logger: logger}
}

// Run polls until the context is cancelled. Poll failures are logged
// and the loop keeps going; a broken poll must not kill the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Poll(ctx); err != nil {
				w.Logger.Warn("poll failed", "error", err)
			}
		}
	}
}

// Poll runs one diff pass: dispatch an edit event for every name cell
// that changed since the last snapshot, then refresh the mirror from
// the post-edit sheet state. Row removals are not edits and are only
// absorbed into the new snapshot.
func (w *Watcher) Poll(ctx context.Context) error {
	previous, err := w.Mirror.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read mirror: %w", err)
	}
	current, err := w.Source.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	prevByIndex := make(map[int]sheet.Row, len(previous))
	for _, row := range previous {
		prevByIndex[row.Index] = row
	}

	for _, row := range current {
		oldName := prevByIndex[row.Index].Name
		if oldName == row.Name {
			continue
		}
		ev := EditEvent{
			Row:      row.Index + w.Dispatcher.HeaderRows + 1,
			Column:   w.Dispatcher.NameColumn,
			OldValue: oldName,
			NewValue: row.Name,
		}
		if err := w.Dispatcher.Dispatch(ctx, ev); err != nil {
			// reported by the dispatcher, keep processing other rows
			w.Logger.Debug("dispatched edit failed", "row", ev.Row)
		}
	}

	// the edits above may have rewritten cells (ids, restored names),
	// so the snapshot comes from a fresh read
	final, err := w.Source.Rows(ctx)
	if err != nil {
		return fmt.Errorf("re-read sheet: %w", err)
	}
	if err := w.Mirror.ReplaceAll(ctx, final); err != nil {
		return fmt.Errorf("refresh mirror: %w", err)
	}
	return nil
}
