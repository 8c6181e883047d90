// Package remote is the client's view of the remote backend: the Backend
// boundary the sync engine pushes to and pulls from, and a gRPC
// implementation of it.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Backend is the remote source of truth. Every call is scoped to userID;
// writes to rows owned by somebody else fail with common.ErrOwnerMismatch.
type Backend interface {
	// UpsertNote creates or updates a note by id and returns the accepted
	// row with its new sync_version.
	UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error)
	// SoftDeleteNote sets deleted_at and refreshes updated_at.
	SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error)

	UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error)
	DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error
	DeleteTag(ctx context.Context, userID, tagID string) error

	UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error
	DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error

	// NotesChangedSince returns notes whose updated_at is after since,
	// together with their tag associations.
	NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error)
	// TagsChangedSince returns tags whose created_at is after since.
	TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error)
}

// Archive describes an exported snapshot stored on the server side.
type Archive struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Notes     int
	Tags      int
}
