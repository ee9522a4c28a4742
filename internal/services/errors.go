package services

import (
	"errors"

	"github.com/ajramos/labelsheet/internal/gmail"
)

// Standard service errors
var (
	// ErrDeletionBlocked means a delete was refused because messages are
	// still tagged with the label. Always recovered by restoring the row.
	ErrDeletionBlocked = errors.New("label still in use")

	// ErrRemoteOperation wraps a failing Gmail call at an operation
	// boundary. Sibling operations in the same pass keep going.
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrInvalidRow means an edit referenced a row the store does not have
	ErrInvalidRow = errors.New("invalid row")
)

// IsNotFound reports whether err means the label is absent remotely.
// Callers fall back to the sibling operation (e.g. rename with a missing
// old label becomes a create).
func IsNotFound(err error) bool {
	return errors.Is(err, gmail.ErrLabelNotFound)
}

// IsDirectoryUnavailable reports whether the remote listing produced no
// usable payload. Callers degrade to an empty remote set and log.
func IsDirectoryUnavailable(err error) bool {
	return errors.Is(err, gmail.ErrDirectoryUnavailable)
}
