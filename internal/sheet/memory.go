package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process RowStore. It backs tests and dry runs.
type Memory struct {
	mu   sync.Mutex
	rows []Row
}

// NewMemory creates a Memory store pre-populated with the given rows.
// Indexes are assigned from position, any caller-provided Index is
// ignored.
func NewMemory(rows ...Row) *Memory {
	m := &Memory{rows: make([]Row, len(rows))}
	for i, r := range rows {
		r.Index = i
		m.rows[i] = r
	}
	return m
}

func (m *Memory) Rows(ctx context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *Memory) Append(ctx context.Context, name, id string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := Row{Index: len(m.rows), Name: name, ID: id}
	m.rows = append(m.rows, row)
	return row, nil
}

func (m *Memory) SetName(ctx context.Context, index int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	m.rows[index].Name = name
	return nil
}

func (m *Memory) SetID(ctx context.Context, index int, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	m.rows[index].ID = id
	return nil
}

func (m *Memory) ClearID(ctx context.Context, index int) error {
	return m.SetID(ctx, index, "")
}
