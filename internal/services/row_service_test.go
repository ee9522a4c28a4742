package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ajramos/labelsheet/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRowEditService(dir Directory, rows sheet.RowStore, reporter *fakeReporter) *RowEditServiceImpl {
	resolver := NewHierarchyResolver(dir, rows, nil)
	return NewRowEditService(dir, rows, resolver, reporter, nil)
}

func TestHandleEdit_NoopTransitions(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	rows := sheet.NewMemory(sheet.Row{Name: "Work"})
	svc := newRowEditService(dir, rows, &fakeReporter{})

	require.NoError(t, svc.HandleEdit(ctx, 0, "", ""))
	require.NoError(t, svc.HandleEdit(ctx, 0, "Work", "Work"))
	require.NoError(t, svc.HandleEdit(ctx, 0, " Work ", "Work"))
	assert.Empty(t, dir.calls)

	assert.ErrorIs(t, svc.HandleEdit(ctx, -1, "", "X"), ErrInvalidRow)
}

func TestHandleEdit_CreateNestedName(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	rows := sheet.NewMemory(sheet.Row{Name: "Proj/Sub"})
	reporter := &fakeReporter{}
	svc := newRowEditService(dir, rows, reporter)

	require.NoError(t, svc.HandleEdit(ctx, 0, "", "Proj/Sub"))

	// ancestor created and registered locally before the leaf
	assert.Equal(t, []string{"Proj", "Proj/Sub"}, dir.created)

	got, _ := rows.Rows(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, dir.labels["Proj/Sub"], got[0].ID)
	assert.Equal(t, "Proj", got[1].Name)
	assert.Equal(t, dir.labels["Proj"], got[1].ID)
	require.Len(t, reporter.notices, 1)
	assert.Contains(t, reporter.notices[0], "created")
}

func TestHandleEdit_CreateExistingLabelAdoptsID(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	id := dir.seed("Work")
	rows := sheet.NewMemory(sheet.Row{Name: "Work"})
	reporter := &fakeReporter{}
	svc := newRowEditService(dir, rows, reporter)

	require.NoError(t, svc.HandleEdit(ctx, 0, "", "Work"))

	assert.Empty(t, dir.created, "no duplicate creation")
	got, _ := rows.Rows(ctx)
	assert.Equal(t, id, got[0].ID)
	require.Len(t, reporter.notices, 1)
	assert.Contains(t, reporter.notices[0], "already exists")
}

func TestHandleEdit_DeleteWithNothingRemote(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	rows := sheet.NewMemory(sheet.Row{Name: "", ID: "stale"})
	svc := newRowEditService(dir, rows, &fakeReporter{})

	require.NoError(t, svc.HandleEdit(ctx, 0, "Gone", ""))

	got, _ := rows.Rows(ctx)
	assert.Equal(t, "", got[0].ID, "stale id cleared")
	assert.Empty(t, dir.deleted)
}

func TestHandleEdit_DeleteRefusedWhileLabelInUse(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	id := dir.seed("Old")
	dir.tagged["Old"] = []string{"m1", "m2", "m3"}
	rows := sheet.NewMemory(sheet.Row{Name: "", ID: id})
	reporter := &fakeReporter{}
	svc := newRowEditService(dir, rows, reporter)

	err := svc.HandleEdit(ctx, 0, "Old", "")
	assert.ErrorIs(t, err, ErrDeletionBlocked)

	// label, tags and id cell unchanged; name cell restored
	assert.Equal(t, id, dir.labels["Old"])
	assert.Len(t, dir.tagged["Old"], 3)
	got, _ := rows.Rows(ctx)
	assert.Equal(t, "Old", got[0].Name)
	assert.Equal(t, id, got[0].ID)
	require.Len(t, reporter.warnings, 1)
	assert.Contains(t, reporter.warnings[0], "3 messages")
}

func TestHandleEdit_DeleteUnusedLabel(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	id := dir.seed("Old")
	rows := sheet.NewMemory(sheet.Row{Name: "", ID: id})
	svc := newRowEditService(dir, rows, &fakeReporter{})

	require.NoError(t, svc.HandleEdit(ctx, 0, "Old", ""))

	assert.Equal(t, []string{"Old"}, dir.deleted)
	got, _ := rows.Rows(ctx)
	assert.Equal(t, "", got[0].ID)
}

func TestHandleEdit_RenameRetagsInOrder(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	oldID := dir.seed("A")
	msgs := make([]string, 250)
	for i := range msgs {
		msgs[i] = fmt.Sprintf("m%d", i)
	}
	dir.tagged["A"] = msgs
	rows := sheet.NewMemory(sheet.Row{Name: "B", ID: oldID})
	reporter := &fakeReporter{}
	svc := newRowEditService(dir, rows, reporter)

	require.NoError(t, svc.HandleEdit(ctx, 0, "A", "B"))

	// adds land before removals, then the old label goes away
	var order []string
	for _, call := range dir.calls {
		if strings.HasPrefix(call, "add:") || strings.HasPrefix(call, "remove:") || strings.HasPrefix(call, "delete:") {
			order = append(order, call)
		}
	}
	assert.Equal(t, []string{"add:B:250", "remove:A:250", "delete:A"}, order)

	assert.Len(t, dir.tagged["B"], 250)
	assert.NotContains(t, dir.labels, "A")
	got, _ := rows.Rows(ctx)
	assert.Equal(t, dir.labels["B"], got[0].ID)
	require.Len(t, reporter.notices, 1)
	assert.Contains(t, reporter.notices[0], "250 messages")
}

func TestHandleEdit_RenameMissingOldFallsBackToCreate(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	rows := sheet.NewMemory(sheet.Row{Name: "B"})
	reporter := &fakeReporter{}
	svc := newRowEditService(dir, rows, reporter)

	require.NoError(t, svc.HandleEdit(ctx, 0, "A", "B"))

	assert.Equal(t, []string{"B"}, dir.created)
	assert.Empty(t, dir.deleted)
	got, _ := rows.Rows(ctx)
	assert.Equal(t, dir.labels["B"], got[0].ID)
}

func TestHandleEdit_RenameOntoExistingLabel(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	oldID := dir.seed("A")
	newID := dir.seed("B")
	dir.tagged["A"] = []string{"m1"}
	rows := sheet.NewMemory(sheet.Row{Name: "B", ID: oldID})
	svc := newRowEditService(dir, rows, &fakeReporter{})

	require.NoError(t, svc.HandleEdit(ctx, 0, "A", "B"))

	assert.Empty(t, dir.created, "existing target label reused")
	assert.Equal(t, []string{"A"}, dir.deleted)
	assert.Equal(t, []string{"m1"}, dir.tagged["B"])
	got, _ := rows.Rows(ctx)
	assert.Equal(t, newID, got[0].ID)
}

func TestHandleEdit_RenameNestedTargetEnsuresAncestors(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.seed("Old")
	rows := sheet.NewMemory(sheet.Row{Name: "Proj/Sub"})
	svc := newRowEditService(dir, rows, &fakeReporter{})

	require.NoError(t, svc.HandleEdit(ctx, 0, "Old", "Proj/Sub"))

	assert.Equal(t, []string{"Proj", "Proj/Sub"}, dir.created)
	got, _ := rows.Rows(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "Proj", got[1].Name)
}
