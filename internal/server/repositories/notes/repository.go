// Package notes stores notes in PostgreSQL. Every statement is scoped by
// the owning user; deletes are soft and a tombstone is never revived.
package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, n *models.Note) (*models.Note, error)
	SoftDelete(ctx context.Context, userID, id string) (*models.Note, error)
	ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Note, error)
}
