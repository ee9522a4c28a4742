package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ajramos/labelsheet/internal/label"
	"github.com/ajramos/labelsheet/internal/sheet"
)

// SyncServiceImpl implements SyncService: a pure merge between the sheet
// rows and the Gmail label set. It only ever adds what is missing on
// each side. An ambiguous mismatch (renamed vs. created-plus-deleted) is
// never resolved automatically, so nothing is deleted or renamed here.
type SyncServiceImpl struct {
	directory Directory
	rows      sheet.RowStore
	resolver  *HierarchyResolver
	logger    *slog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(directory Directory, rows sheet.RowStore, resolver *HierarchyResolver, logger *slog.Logger) *SyncServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncServiceImpl{
		directory: directory,
		rows:      rows,
		resolver:  resolver,
		logger:    logger,
	}
}

// Reconcile diffs the two label sets and converges them with the minimal
// set of create operations. A failure on one name is recorded and the
// remaining names still run. Only a local store failure aborts the pass.
func (s *SyncServiceImpl) Reconcile(ctx context.Context) (*SyncResult, error) {
	rows, err := s.rows.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	remote := s.listRemote(ctx)
	remoteByName := make(map[string]string, len(remote))
	for _, r := range remote {
		remoteByName[r.Name] = r.ID
	}

	// last write wins on duplicate local names, the later row owns the name
	owner := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Name != "" {
			owner[row.Name] = row.Index
		}
	}

	result := &SyncResult{CreatedInGmail: []string{}, AddedToSheet: []string{}}
	ensured := make(map[string]bool)

	for _, row := range rows {
		name := row.Name
		if name == "" || owner[name] != row.Index {
			continue
		}

		if remoteID, ok := remoteByName[name]; ok {
			// id drift repair is local-only, Gmail stays untouched
			if row.ID != remoteID {
				if err := s.rows.SetID(ctx, row.Index, remoteID); err != nil {
					result.Failures = append(result.Failures, NameError{Name: name, Err: err})
				}
			}
			ensured[name] = true
			continue
		}

		if ensured[name] {
			// already created this pass while materializing another
			// name's ancestors; adopt its id instead of re-creating
			remoteID, err := s.directory.LabelIDByName(ctx, name)
			if err != nil {
				result.Failures = append(result.Failures, NameError{Name: name, Err: err})
				continue
			}
			if row.ID != remoteID {
				if err := s.rows.SetID(ctx, row.Index, remoteID); err != nil {
					result.Failures = append(result.Failures, NameError{Name: name, Err: err})
					continue
				}
			}
			result.CreatedInGmail = append(result.CreatedInGmail, name)
			continue
		}

		if err := s.createRemote(ctx, row, ensured); err != nil {
			result.Failures = append(result.Failures, NameError{Name: name, Err: err})
			continue
		}
		result.CreatedInGmail = append(result.CreatedInGmail, name)
		ensured[name] = true
	}

	s.adoptUnmatchedRemote(ctx, remote, result)
	return result, nil
}

// createRemote materializes missing ancestors, creates the leaf and
// writes the fresh id back into the row. The ensured cache spans the
// whole pass so names sharing a prefix do not re-create its ancestors.
func (s *SyncServiceImpl) createRemote(ctx context.Context, row sheet.Row, ensured map[string]bool) error {
	if err := s.resolver.EnsureAncestors(ctx, row.Name, ensured); err != nil {
		return fmt.Errorf("%w: ancestors of %q: %v", ErrRemoteOperation, row.Name, err)
	}
	created, err := s.directory.CreateLabel(ctx, row.Name)
	if err != nil {
		return fmt.Errorf("%w: create %q: %v", ErrRemoteOperation, row.Name, err)
	}
	if err := s.rows.SetID(ctx, row.Index, created.ID); err != nil {
		return fmt.Errorf("write id for %q: %w", row.Name, err)
	}
	return nil
}

// adoptUnmatchedRemote appends a row for every remote label the sheet
// does not know yet. Local rows are re-read because ancestor creation
// earlier in the pass may have appended rows behind the initial
// snapshot.
func (s *SyncServiceImpl) adoptUnmatchedRemote(ctx context.Context, initial []label.Record, result *SyncResult) {
	remote := s.listRemoteOr(ctx, initial)

	rows, err := s.rows.Rows(ctx)
	if err != nil {
		result.Failures = append(result.Failures, NameError{Name: "", Err: fmt.Errorf("re-read rows: %w", err)})
		return
	}
	localNames := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Name != "" {
			localNames[row.Name] = true
		}
	}

	for _, r := range remote {
		if localNames[r.Name] {
			continue
		}
		if _, err := s.rows.Append(ctx, r.Name, r.ID); err != nil {
			result.Failures = append(result.Failures, NameError{Name: r.Name, Err: err})
			continue
		}
		localNames[r.Name] = true
		result.AddedToSheet = append(result.AddedToSheet, r.Name)
	}
}

// listRemote fetches the remote label set, degrading to empty when the
// directory has no usable payload.
func (s *SyncServiceImpl) listRemote(ctx context.Context) []label.Record {
	remote, err := s.directory.ListLabels(ctx)
	if err != nil {
		s.logger.Warn("label directory unavailable, treating remote set as empty", "error", err)
		return nil
	}
	return remote
}

// listRemoteOr refreshes the remote snapshot, falling back to the
// initial one when the refresh fails.
func (s *SyncServiceImpl) listRemoteOr(ctx context.Context, initial []label.Record) []label.Record {
	remote, err := s.directory.ListLabels(ctx)
	if err != nil {
		s.logger.Warn("could not refresh remote labels, using initial snapshot", "error", err)
		return initial
	}
	return remote
}
