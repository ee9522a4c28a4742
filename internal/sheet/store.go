package sheet

import "context"

// Row is one local record: a label name and the Gmail id attached to it.
// Index is the position in the data region below the header. Ordering is
// insertion order and carries no meaning, the store is treated as a set.
type Row struct {
	Index int
	Name  string
	ID    string
}

// RowStore is the local side of the sync: an ordered row sequence with a
// user-editable name cell and a system-managed id cell per row.
type RowStore interface {
	Rows(ctx context.Context) ([]Row, error)
	Append(ctx context.Context, name, id string) (Row, error)
	SetName(ctx context.Context, index int, name string) error
	SetID(ctx context.Context, index int, id string) error
	ClearID(ctx context.Context, index int) error
}
