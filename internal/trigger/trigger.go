package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ajramos/labelsheet/internal/services"
)

// EditEvent is one cell edit as the sheet host reports it: 1-based row
// and column coordinates plus the cell's previous and current values.
type EditEvent struct {
	Row      int
	Column   int
	OldValue string
	NewValue string
}

// Settings is the persisted flag storage the trigger layer consults.
// db.SettingsStore is the production implementation.
type Settings interface {
	GetBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Dispatcher filters raw edit events down to name-column, non-header
// deltas and forwards them to the row edit service. The state machine
// behind it is only safe for that subset.
type Dispatcher struct {
	HeaderRows int
	NameColumn int
	Editor     services.RowEditService
	Logger     *slog.Logger
}

// NewDispatcher creates a dispatcher for the given sheet geometry
func NewDispatcher(headerRows, nameColumn int, editor services.RowEditService, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{HeaderRows: headerRows, NameColumn: nameColumn, Editor: editor, Logger: logger}
}

// Dispatch forwards a single edit. Header-row and non-name-column edits
// are dropped silently. Errors from the edit itself are returned for
// the caller to log; they never panic upward.
func (d *Dispatcher) Dispatch(ctx context.Context, ev EditEvent) error {
	if ev.Row <= d.HeaderRows || ev.Column != d.NameColumn {
		return nil
	}
	index := ev.Row - d.HeaderRows - 1
	if err := d.Editor.HandleEdit(ctx, index, ev.OldValue, ev.NewValue); err != nil {
		d.Logger.Warn("row edit failed", "row", ev.Row, "old", ev.OldValue, "new", ev.NewValue, "error", err)
		return fmt.Errorf("handle edit at row %d: %w", ev.Row, err)
	}
	return nil
}

// Runner holds the two parameterless entry points: the manual sync
// command and the on-open hook.
type Runner struct {
	Sync     services.SyncService
	Reporter services.Reporter
	Settings Settings
	Logger   *slog.Logger

	// AutoSyncKey is the settings key gating OnOpen
	AutoSyncKey string
}

// NewRunner creates a runner over the given collaborators
func NewRunner(sync services.SyncService, reporter services.Reporter, settings Settings, autoSyncKey string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Sync: sync, Reporter: reporter, Settings: settings, AutoSyncKey: autoSyncKey, Logger: logger}
}

// RunSync runs one full reconcile and hands the summary to the reporter.
func (r *Runner) RunSync(ctx context.Context) (*services.SyncResult, error) {
	result, err := r.Sync.Reconcile(ctx)
	if err != nil {
		r.Logger.Error("sync failed", "error", err)
		return nil, err
	}
	r.Reporter.SyncSummary(result)
	return result, nil
}

// OnOpen runs a full sync only when the persisted auto-sync flag is on.
// A nil result means the sync was skipped.
func (r *Runner) OnOpen(ctx context.Context) (*services.SyncResult, error) {
	enabled, err := r.Settings.GetBool(ctx, r.AutoSyncKey, false)
	if err != nil {
		return nil, fmt.Errorf("read auto-sync setting: %w", err)
	}
	if !enabled {
		r.Logger.Debug("auto-sync on open disabled, skipping")
		return nil, nil
	}
	return r.RunSync(ctx)
}

// SetAutoSync flips the persisted auto-sync-on-open flag.
func (r *Runner) SetAutoSync(ctx context.Context, enabled bool) error {
	return r.Settings.SetBool(ctx, r.AutoSyncKey, enabled)
}
