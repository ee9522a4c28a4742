package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ajramos/labelsheet/internal/gmail"
	"github.com/ajramos/labelsheet/internal/label"
)

// fakeDirectory is an in-memory Directory with call recording. Message
// tagging is tracked per label name so the deletion guard and rename
// re-tagging can be observed.
type fakeDirectory struct {
	labels map[string]string   // name -> id
	tagged map[string][]string // name -> message ids
	nextID int

	created []string // creation order
	deleted []string // deleted label names
	calls   []string // coarse call log for ordering assertions

	listErr    error
	createErrs map[string]error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		labels:     map[string]string{},
		tagged:     map[string][]string{},
		createErrs: map[string]error{},
	}
}

// seed registers an existing remote label and returns its id
func (f *fakeDirectory) seed(name string) string {
	f.nextID++
	id := fmt.Sprintf("Label_%d", f.nextID)
	f.labels[name] = id
	return id
}

func (f *fakeDirectory) nameOf(id string) string {
	for name, lid := range f.labels {
		if lid == id {
			return name
		}
	}
	return ""
}

func (f *fakeDirectory) ListLabels(ctx context.Context) ([]label.Record, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, 0, len(f.labels))
	for name := range f.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]label.Record, 0, len(names))
	for _, name := range names {
		out = append(out, label.Record{Name: name, ID: f.labels[name]})
	}
	return out, nil
}

func (f *fakeDirectory) LabelIDByName(ctx context.Context, name string) (string, error) {
	if f.listErr != nil {
		return "", f.listErr
	}
	if id, ok := f.labels[name]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", gmail.ErrLabelNotFound, name)
}

func (f *fakeDirectory) CreateLabel(ctx context.Context, name string) (label.Record, error) {
	f.calls = append(f.calls, "create:"+name)
	if err := f.createErrs[name]; err != nil {
		return label.Record{}, err
	}
	if id, ok := f.labels[name]; ok {
		// the real directory errors on duplicates; surfacing it keeps
		// caller-side existence checks honest
		return label.Record{}, fmt.Errorf("label %q already exists as %s", name, id)
	}
	f.nextID++
	id := fmt.Sprintf("Label_%d", f.nextID)
	f.labels[name] = id
	f.created = append(f.created, name)
	return label.Record{Name: name, ID: id}, nil
}

func (f *fakeDirectory) DeleteLabel(ctx context.Context, id string) error {
	name := f.nameOf(id)
	if name == "" {
		return fmt.Errorf("%w: id %s", gmail.ErrLabelNotFound, id)
	}
	f.calls = append(f.calls, "delete:"+name)
	delete(f.labels, name)
	delete(f.tagged, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeDirectory) MessagesWithLabel(ctx context.Context, name string) ([]string, error) {
	return append([]string(nil), f.tagged[name]...), nil
}

func (f *fakeDirectory) AddLabelToMessages(ctx context.Context, messageIDs []string, labelID string) error {
	name := f.nameOf(labelID)
	f.calls = append(f.calls, fmt.Sprintf("add:%s:%d", name, len(messageIDs)))
	f.tagged[name] = append(f.tagged[name], messageIDs...)
	return nil
}

func (f *fakeDirectory) RemoveLabelFromMessages(ctx context.Context, messageIDs []string, labelID string) error {
	name := f.nameOf(labelID)
	f.calls = append(f.calls, fmt.Sprintf("remove:%s:%d", name, len(messageIDs)))
	drop := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		drop[id] = true
	}
	var kept []string
	for _, id := range f.tagged[name] {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	f.tagged[name] = kept
	return nil
}

// fakeReporter records every summary it receives
type fakeReporter struct {
	notices   []string
	warnings  []string
	summaries []*SyncResult
}

func (r *fakeReporter) Notice(msg string)             { r.notices = append(r.notices, msg) }
func (r *fakeReporter) Warning(msg string)            { r.warnings = append(r.warnings, msg) }
func (r *fakeReporter) SyncSummary(result *SyncResult) { r.summaries = append(r.summaries, result) }
