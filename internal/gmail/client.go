package gmail

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajramos/labelsheet/internal/label"
	"google.golang.org/api/gmail/v1"
)

var (
	// ErrDirectoryUnavailable means Gmail returned no usable label payload.
	// Callers treat the remote set as empty and log, they do not crash.
	ErrDirectoryUnavailable = errors.New("label directory unavailable")

	// ErrLabelNotFound means no label with the requested name or id exists.
	ErrLabelNotFound = errors.New("label not found")
)

// batchChunk bounds the number of message ids sent in a single modify
// call. Rename re-tagging runs through here.
const batchChunk = 100

// Client wraps the gmail.Service and provides the label directory surface
type Client struct {
	Service *gmail.Service
}

// NewClient creates a new Gmail client
func NewClient(service *gmail.Service) *Client {
	return &Client{Service: service}
}

// ListLabels returns all user labels. System labels (INBOX, SENT,
// CATEGORY_* and friends) are filtered out and never surfaced.
func (c *Client) ListLabels(ctx context.Context) ([]label.Record, error) {
	user := "me"
	res, err := c.Service.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not list labels: %w", err)
	}
	if res == nil || res.Labels == nil {
		return nil, ErrDirectoryUnavailable
	}

	out := make([]label.Record, 0, len(res.Labels))
	for _, l := range res.Labels {
		if l.Type == "system" || label.IsSystem(l.Id) {
			continue
		}
		out = append(out, label.Record{Name: l.Name, ID: l.Id})
	}
	return out, nil
}

// LabelIDByName resolves a label name to its id using a fresh listing.
// No cache: label counts are small and a stale id is worse than an extra
// round trip.
func (c *Client) LabelIDByName(ctx context.Context, name string) (string, error) {
	labels, err := c.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLabelNotFound, name)
}

// CreateLabel creates a new label. The directory itself does not dedupe,
// callers must check existence first.
func (c *Client) CreateLabel(ctx context.Context, name string) (label.Record, error) {
	user := "me"
	created, err := c.Service.Users.Labels.Create(user, &gmail.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return label.Record{}, fmt.Errorf("could not create label %q: %w", name, err)
	}
	return label.Record{Name: created.Name, ID: created.Id}, nil
}

// DeleteLabel deletes a label by id
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	user := "me"
	if err := c.Service.Users.Labels.Delete(user, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("could not delete label %s: %w", id, err)
	}
	return nil
}

// MessagesWithLabel returns the ids of every message currently tagged
// with the named label, following pagination to the end.
func (c *Client) MessagesWithLabel(ctx context.Context, name string) ([]string, error) {
	user := "me"
	query := fmt.Sprintf("label:%q", name)

	var ids []string
	pageToken := ""
	for {
		call := c.Service.Users.Messages.List(user).Q(query).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("could not search messages for label %q: %w", name, err)
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" {
			return ids, nil
		}
		pageToken = res.NextPageToken
	}
}

// AddLabelToMessages applies a label to every given message, chunked to
// bound single-call payloads. A failing chunk is reported with its offset
// and does not stop the remaining chunks.
func (c *Client) AddLabelToMessages(ctx context.Context, messageIDs []string, labelID string) error {
	return c.batchModify(ctx, messageIDs, &gmail.BatchModifyMessagesRequest{
		AddLabelIds: []string{labelID},
	})
}

// RemoveLabelFromMessages removes a label from every given message, with
// the same chunking and per-chunk error reporting as AddLabelToMessages.
func (c *Client) RemoveLabelFromMessages(ctx context.Context, messageIDs []string, labelID string) error {
	return c.batchModify(ctx, messageIDs, &gmail.BatchModifyMessagesRequest{
		RemoveLabelIds: []string{labelID},
	})
}

func (c *Client) batchModify(ctx context.Context, messageIDs []string, req *gmail.BatchModifyMessagesRequest) error {
	user := "me"
	var errs []error
	for i := 0; i < len(messageIDs); i += batchChunk {
		j := min(i+batchChunk, len(messageIDs))
		chunk := *req
		chunk.Ids = messageIDs[i:j]
		if err := c.Service.Users.Messages.BatchModify(user, &chunk).Context(ctx).Do(); err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", i, j-1, err))
		}
	}
	return errors.Join(errs...)
}
