package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ajramos/labelsheet/internal/sheet"
)

// RowStore is a sheet.RowStore over SQLite. It doubles as the local
// mirror the watcher diffs against to synthesize edit events.
type RowStore struct {
	store *Store
}

// NewRowStore creates a row store over an open database
func NewRowStore(store *Store) *RowStore {
	return &RowStore{store: store}
}

func (r *RowStore) Rows(ctx context.Context) ([]sheet.Row, error) {
	rows, err := r.store.DB().QueryContext(ctx, `SELECT idx, name, label_id FROM label_rows ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []sheet.Row
	for rows.Next() {
		var row sheet.Row
		if err := rows.Scan(&row.Index, &row.Name, &row.ID); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RowStore) Append(ctx context.Context, name, id string) (sheet.Row, error) {
	var next int
	err := r.store.DB().QueryRowContext(ctx, `SELECT COALESCE(MAX(idx)+1, 0) FROM label_rows`).Scan(&next)
	if err != nil {
		return sheet.Row{}, fmt.Errorf("next index: %w", err)
	}
	_, err = r.store.DB().ExecContext(ctx,
		`INSERT INTO label_rows (idx, name, label_id, updated_at) VALUES (?, ?, ?, ?)`,
		next, name, id, time.Now().Unix())
	if err != nil {
		return sheet.Row{}, fmt.Errorf("append row: %w", err)
	}
	return sheet.Row{Index: next, Name: name, ID: id}, nil
}

func (r *RowStore) SetName(ctx context.Context, index int, name string) error {
	return r.setColumn(ctx, index, "name", name)
}

func (r *RowStore) SetID(ctx context.Context, index int, id string) error {
	return r.setColumn(ctx, index, "label_id", id)
}

func (r *RowStore) ClearID(ctx context.Context, index int) error {
	return r.setColumn(ctx, index, "label_id", "")
}

func (r *RowStore) setColumn(ctx context.Context, index int, column, value string) error {
	res, err := r.store.DB().ExecContext(ctx,
		fmt.Sprintf(`UPDATE label_rows SET %s = ?, updated_at = ? WHERE idx = ?`, column),
		value, time.Now().Unix(), index)
	if err != nil {
		return fmt.Errorf("update row %d: %w", index, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("row %d not found", index)
	}
	return nil
}

// ReplaceAll swaps the mirror contents for the given snapshot in one
// transaction. The watcher calls this after dispatching a poll's events.
func (r *RowStore) ReplaceAll(ctx context.Context, rows []sheet.Row) error {
	tx, err := r.store.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM label_rows`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear mirror: %w", err)
	}
	now := time.Now().Unix()
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO label_rows (idx, name, label_id, updated_at) VALUES (?, ?, ?, ?)`,
			row.Index, row.Name, row.ID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", row.Index, err)
		}
	}
	return tx.Commit()
}
