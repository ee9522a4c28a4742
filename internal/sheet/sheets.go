package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// Layout describes where the label table lives inside a spreadsheet.
// The id column is system-managed metadata and is normally hidden from
// the user; the name column is the one the user edits.
type Layout struct {
	SpreadsheetID string
	SheetName     string
	HeaderRows    int
	IDColumn      string
	NameColumn    string
}

// Sheets is a RowStore backed by a Google Sheet.
type Sheets struct {
	service *sheets.Service
	layout  Layout
}

// NewSheets creates a Sheets row store over the given service and layout.
func NewSheets(service *sheets.Service, layout Layout) (*Sheets, error) {
	if layout.SpreadsheetID == "" || layout.SheetName == "" {
		return nil, fmt.Errorf("spreadsheet id and sheet name are required")
	}
	if layout.IDColumn == "" || layout.NameColumn == "" {
		return nil, fmt.Errorf("id and name columns are required")
	}
	if layout.HeaderRows < 0 {
		return nil, fmt.Errorf("header rows cannot be negative")
	}
	return &Sheets{service: service, layout: layout}, nil
}

// Rows reads the data region below the header. Rows where both cells are
// blank are still returned so indexes stay aligned with the sheet.
func (s *Sheets) Rows(ctx context.Context) ([]Row, error) {
	first, last := s.columnSpan()
	rng := fmt.Sprintf("%s!%s%d:%s", s.layout.SheetName, first, s.layout.HeaderRows+1, last)

	res, err := s.service.Spreadsheets.Values.Get(s.layout.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not read rows: %w", err)
	}

	base := columnIndex(first)
	idOff := columnIndex(s.layout.IDColumn) - base
	nameOff := columnIndex(s.layout.NameColumn) - base

	rows := make([]Row, 0, len(res.Values))
	for i, cells := range res.Values {
		rows = append(rows, Row{
			Index: i,
			ID:    cellString(cells, idOff),
			Name:  cellString(cells, nameOff),
		})
	}
	return rows, nil
}

func (s *Sheets) Append(ctx context.Context, name, id string) (Row, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return Row{}, err
	}

	first, last := s.columnSpan()
	base := columnIndex(first)
	width := columnIndex(last) - base + 1
	cells := make([]interface{}, width)
	for i := range cells {
		cells[i] = ""
	}
	cells[columnIndex(s.layout.IDColumn)-base] = id
	cells[columnIndex(s.layout.NameColumn)-base] = name

	rng := fmt.Sprintf("%s!%s%d:%s", s.layout.SheetName, first, s.layout.HeaderRows+1, last)
	_, err = s.service.Spreadsheets.Values.Append(s.layout.SpreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return Row{}, fmt.Errorf("could not append row: %w", err)
	}
	return Row{Index: len(rows), Name: name, ID: id}, nil
}

func (s *Sheets) SetName(ctx context.Context, index int, name string) error {
	return s.setCell(ctx, s.layout.NameColumn, index, name)
}

func (s *Sheets) SetID(ctx context.Context, index int, id string) error {
	return s.setCell(ctx, s.layout.IDColumn, index, id)
}

func (s *Sheets) ClearID(ctx context.Context, index int) error {
	rng := s.cellRange(s.layout.IDColumn, index)
	_, err := s.service.Spreadsheets.Values.Clear(s.layout.SpreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not clear %s: %w", rng, err)
	}
	return nil
}

func (s *Sheets) setCell(ctx context.Context, column string, index int, value string) error {
	rng := s.cellRange(column, index)
	_, err := s.service.Spreadsheets.Values.Update(s.layout.SpreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not update %s: %w", rng, err)
	}
	return nil
}

func (s *Sheets) cellRange(column string, index int) string {
	// sheet rows are 1-based, data starts below the header
	return fmt.Sprintf("%s!%s%d", s.layout.SheetName, column, s.layout.HeaderRows+index+1)
}

func (s *Sheets) columnSpan() (first, last string) {
	if columnIndex(s.layout.IDColumn) <= columnIndex(s.layout.NameColumn) {
		return s.layout.IDColumn, s.layout.NameColumn
	}
	return s.layout.NameColumn, s.layout.IDColumn
}

func cellString(cells []interface{}, offset int) string {
	if offset < 0 || offset >= len(cells) {
		return ""
	}
	if s, ok := cells[offset].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(cells[offset]))
}

// ColumnNumber converts a column letter to its 1-based position, the
// form edit events carry.
func ColumnNumber(column string) int {
	return columnIndex(column) + 1
}

// columnIndex converts a column letter ("A", "B", ... "AA") to 0-based.
func columnIndex(column string) int {
	n := 0
	for _, r := range strings.ToUpper(column) {
		if r < 'A' || r > 'Z' {
			continue
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}
