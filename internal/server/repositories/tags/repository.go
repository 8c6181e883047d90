// Package tags stores tags in PostgreSQL. Names are unique per user and
// tags are deleted physically.
package tags

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error)
	Delete(ctx context.Context, userID, id string) error
	ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error)
}
