package users

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository stores accounts. Create fills in the generated id and
// creation time; a taken username yields common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrNotFound for an unknown username.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
