package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajramos/labelsheet/internal/sheet"
)

// RowEditServiceImpl implements RowEditService: a state machine over the
// (old, new) values of one edited name cell.
type RowEditServiceImpl struct {
	directory Directory
	rows      sheet.RowStore
	resolver  *HierarchyResolver
	reporter  Reporter
	logger    *slog.Logger
}

// NewRowEditService creates a new row edit service
func NewRowEditService(directory Directory, rows sheet.RowStore, resolver *HierarchyResolver, reporter Reporter, logger *slog.Logger) *RowEditServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowEditServiceImpl{
		directory: directory,
		rows:      rows,
		resolver:  resolver,
		reporter:  reporter,
		logger:    logger,
	}
}

// HandleEdit classifies a single-row name edit into a create, rename or
// delete and applies it to Gmail. It expects name-column, non-header
// deltas only; the trigger layer filters everything else. Errors are
// returned for logging but every failure path leaves the row in a safe,
// reported state.
func (s *RowEditServiceImpl) HandleEdit(ctx context.Context, rowIndex int, oldValue, newValue string) error {
	if rowIndex < 0 {
		return fmt.Errorf("%w: index %d", ErrInvalidRow, rowIndex)
	}
	oldValue = strings.TrimSpace(oldValue)
	newValue = strings.TrimSpace(newValue)

	switch {
	case oldValue == "" && newValue == "":
		return nil
	case oldValue == newValue:
		return nil
	case oldValue == "":
		return s.create(ctx, rowIndex, newValue)
	case newValue == "":
		return s.remove(ctx, rowIndex, oldValue)
	default:
		return s.rename(ctx, rowIndex, oldValue, newValue)
	}
}

func (s *RowEditServiceImpl) create(ctx context.Context, rowIndex int, name string) error {
	// adopt an existing label instead of duplicating it
	id, err := s.directory.LabelIDByName(ctx, name)
	if err == nil {
		if err := s.rows.SetID(ctx, rowIndex, id); err != nil {
			return fmt.Errorf("link existing label %q: %w", name, err)
		}
		s.reporter.Notice(fmt.Sprintf("label %q already exists, linked to it", name))
		return nil
	}
	if !IsNotFound(err) && !IsDirectoryUnavailable(err) {
		return fmt.Errorf("%w: look up %q: %v", ErrRemoteOperation, name, err)
	}
	if IsDirectoryUnavailable(err) {
		s.logger.Warn("label directory unavailable, treating remote set as empty", "label", name)
	}

	if err := s.resolver.EnsureAncestors(ctx, name, nil); err != nil {
		// partial hierarchy is reported, the leaf create below decides
		// whether the edit succeeds
		s.reporter.Warning(fmt.Sprintf("could not create all ancestors of %q: %v", name, err))
	}

	created, err := s.directory.CreateLabel(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: create %q: %v", ErrRemoteOperation, name, err)
	}
	if err := s.rows.SetID(ctx, rowIndex, created.ID); err != nil {
		return fmt.Errorf("write id for %q: %w", name, err)
	}
	s.reporter.Notice(fmt.Sprintf("created label %q", name))
	return nil
}

func (s *RowEditServiceImpl) remove(ctx context.Context, rowIndex int, name string) error {
	id, err := s.directory.LabelIDByName(ctx, name)
	if IsNotFound(err) || IsDirectoryUnavailable(err) {
		// nothing remote to remove, just drop the stale id
		if cerr := s.rows.ClearID(ctx, rowIndex); cerr != nil {
			return fmt.Errorf("clear id for %q: %w", name, cerr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: look up %q: %v", ErrRemoteOperation, name, err)
	}

	tagged, err := s.directory.MessagesWithLabel(ctx, name)
	if err != nil {
		// cannot verify the guard, restore the cell and refuse
		if rerr := s.rows.SetName(ctx, rowIndex, name); rerr != nil {
			s.logger.Error("could not restore name cell", "label", name, "error", rerr)
		}
		return fmt.Errorf("%w: count messages for %q: %v", ErrRemoteOperation, name, err)
	}
	if len(tagged) > 0 {
		if rerr := s.rows.SetName(ctx, rowIndex, name); rerr != nil {
			s.logger.Error("could not restore name cell", "label", name, "error", rerr)
		}
		s.reporter.Warning(fmt.Sprintf("cannot delete label %q: still applied to %d messages", name, len(tagged)))
		return fmt.Errorf("%w: %q applied to %d messages", ErrDeletionBlocked, name, len(tagged))
	}

	if err := s.directory.DeleteLabel(ctx, id); err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrRemoteOperation, name, err)
	}
	if err := s.rows.ClearID(ctx, rowIndex); err != nil {
		return fmt.Errorf("clear id for %q: %w", name, err)
	}
	s.reporter.Notice(fmt.Sprintf("deleted label %q", name))
	return nil
}

func (s *RowEditServiceImpl) rename(ctx context.Context, rowIndex int, oldName, newName string) error {
	oldID, err := s.directory.LabelIDByName(ctx, oldName)
	if IsNotFound(err) || IsDirectoryUnavailable(err) {
		// old label is gone, treat the edit as a plain create
		return s.create(ctx, rowIndex, newName)
	}
	if err != nil {
		return fmt.Errorf("%w: look up %q: %v", ErrRemoteOperation, oldName, err)
	}

	if err := s.resolver.EnsureAncestors(ctx, newName, nil); err != nil {
		s.reporter.Warning(fmt.Sprintf("could not create all ancestors of %q: %v", newName, err))
	}

	tagged, err := s.directory.MessagesWithLabel(ctx, oldName)
	if err != nil {
		return fmt.Errorf("%w: enumerate messages for %q: %v", ErrRemoteOperation, oldName, err)
	}

	newID, err := s.directory.LabelIDByName(ctx, newName)
	if IsNotFound(err) || IsDirectoryUnavailable(err) {
		created, cerr := s.directory.CreateLabel(ctx, newName)
		if cerr != nil {
			return fmt.Errorf("%w: create %q: %v", ErrRemoteOperation, newName, cerr)
		}
		newID = created.ID
	} else if err != nil {
		return fmt.Errorf("%w: look up %q: %v", ErrRemoteOperation, newName, err)
	}

	// every add completes before the first removal so a batch failure
	// cannot strand messages with no label at all
	if len(tagged) > 0 {
		if err := s.directory.AddLabelToMessages(ctx, tagged, newID); err != nil {
			return fmt.Errorf("%w: apply %q to messages: %v", ErrRemoteOperation, newName, err)
		}
		if err := s.directory.RemoveLabelFromMessages(ctx, tagged, oldID); err != nil {
			// deleting the old label detaches any stragglers anyway
			s.reporter.Warning(fmt.Sprintf("could not remove %q from every message: %v", oldName, err))
		}
	}

	deleteErr := s.directory.DeleteLabel(ctx, oldID)
	if err := s.rows.SetID(ctx, rowIndex, newID); err != nil {
		return fmt.Errorf("write id for %q: %w", newName, err)
	}
	if deleteErr != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrRemoteOperation, oldName, deleteErr)
	}
	s.reporter.Notice(fmt.Sprintf("renamed label %q to %q (%d messages moved)", oldName, newName, len(tagged)))
	return nil
}
