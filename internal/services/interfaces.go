package services

import (
	"context"

	"github.com/ajramos/labelsheet/internal/label"
)

// Directory is the remote label store. *gmail.Client is the production
// implementation; tests use a fake.
type Directory interface {
	// ListLabels returns every user label. Implementations never surface
	// system labels.
	ListLabels(ctx context.Context) ([]label.Record, error)
	// LabelIDByName resolves a name against a fresh listing. Returns
	// gmail.ErrLabelNotFound when no label carries the name.
	LabelIDByName(ctx context.Context, name string) (string, error)
	// CreateLabel creates a label. The directory does not dedupe, callers
	// check existence first.
	CreateLabel(ctx context.Context, name string) (label.Record, error)
	DeleteLabel(ctx context.Context, id string) error
	// MessagesWithLabel returns the ids of messages tagged with the named
	// label. The deletion guard and rename re-tagging depend on it.
	MessagesWithLabel(ctx context.Context, name string) ([]string, error)
	// AddLabelToMessages and RemoveLabelFromMessages run in fixed-size
	// batches. All adds issued by a rename complete before any removal
	// begins.
	AddLabelToMessages(ctx context.Context, messageIDs []string, labelID string) error
	RemoveLabelFromMessages(ctx context.Context, messageIDs []string, labelID string) error
}

// SyncService runs the merge-sync reconciliation between the sheet and
// Gmail.
type SyncService interface {
	Reconcile(ctx context.Context) (*SyncResult, error)
}

// RowEditService applies a single-row name-cell edit to Gmail.
type RowEditService interface {
	HandleEdit(ctx context.Context, rowIndex int, oldValue, newValue string) error
}

// Reporter receives human-readable outcome summaries. The core does not
// know or care how they are displayed.
type Reporter interface {
	Notice(msg string)
	Warning(msg string)
	SyncSummary(result *SyncResult)
}

// SyncResult lists what a reconcile pass changed on each side. Both
// slices are empty when the stores were already congruent.
type SyncResult struct {
	CreatedInGmail []string
	AddedToSheet   []string
	Failures       []NameError
}

// NameError records a per-name failure that did not stop the pass.
type NameError struct {
	Name string
	Err  error
}

// Empty reports whether the pass changed nothing and nothing failed.
func (r *SyncResult) Empty() bool {
	return len(r.CreatedInGmail) == 0 && len(r.AddedToSheet) == 0 && len(r.Failures) == 0
}
