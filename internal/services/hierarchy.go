package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajramos/labelsheet/internal/label"
	"github.com/ajramos/labelsheet/internal/sheet"
)

// HierarchyResolver makes sure every ancestor of a nested label name
// exists in both stores before the leaf is touched. Gmail refuses to
// create "A/B" while "A" is missing, so ancestors go in shallowest
// first.
type HierarchyResolver struct {
	directory Directory
	rows      sheet.RowStore
	logger    *slog.Logger
}

// NewHierarchyResolver creates a resolver over the given stores
func NewHierarchyResolver(directory Directory, rows sheet.RowStore, logger *slog.Logger) *HierarchyResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &HierarchyResolver{directory: directory, rows: rows, logger: logger}
}

// EnsureAncestors creates every missing proper ancestor of name, remote
// side first so the local row can carry the remote id. Non-nested names
// are a no-op. ensured, when non-nil, caches paths already handled this
// pass so reconcile does not re-create shared prefixes; callers outside
// a pass hand in nil.
//
// Each level is best-effort: a failing ancestor is reported and the
// remaining levels are still attempted. Partial hierarchy
// materialization is an accepted outcome, not a rollback trigger.
func (h *HierarchyResolver) EnsureAncestors(ctx context.Context, name string, ensured map[string]bool) error {
	path := label.ParsePath(name)
	if !path.IsNested() {
		return nil
	}

	var errs []error
	for _, ancestor := range path.Ancestors() {
		if ensured != nil && ensured[ancestor] {
			continue
		}
		if err := h.ensureOne(ctx, ancestor); err != nil {
			errs = append(errs, err)
			continue
		}
		if ensured != nil {
			ensured[ancestor] = true
		}
	}
	return errors.Join(errs...)
}

func (h *HierarchyResolver) ensureOne(ctx context.Context, ancestor string) error {
	id, err := h.directory.LabelIDByName(ctx, ancestor)
	switch {
	case IsNotFound(err), IsDirectoryUnavailable(err):
		if IsDirectoryUnavailable(err) {
			h.logger.Warn("label directory unavailable, treating remote set as empty", "ancestor", ancestor)
		}
		created, cerr := h.directory.CreateLabel(ctx, ancestor)
		if cerr != nil {
			return fmt.Errorf("create ancestor %q: %w", ancestor, cerr)
		}
		id = created.ID
	case err != nil:
		return fmt.Errorf("look up ancestor %q: %w", ancestor, err)
	}

	rows, err := h.rows.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read rows for ancestor %q: %w", ancestor, err)
	}
	for _, row := range rows {
		if row.Name == ancestor {
			return nil
		}
	}
	if _, err := h.rows.Append(ctx, ancestor, id); err != nil {
		return fmt.Errorf("append ancestor row %q: %w", ancestor, err)
	}
	return nil
}
