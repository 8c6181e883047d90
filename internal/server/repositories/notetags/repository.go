// Package notetags stores note-tag links in PostgreSQL. Links are never
// updated; ownership is derived from the linked note and tag.
package notetags

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID string, nt *models.NoteTag) error
	Delete(ctx context.Context, userID, noteID, tagID string) error
	DeleteByTag(ctx context.Context, userID, tagID string) error
	ForNotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteTag, error)
}
