package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates the tag or renames an existing one, keeping created_at.
// created_at is stamped by the database; pulls select tags on it. A
// duplicate name yields common.ErrAlreadyExists, a tag owned by someone
// else common.ErrOwnerMismatch.
func (r *PostgresRepository) Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	query :=
		`INSERT INTO tags (id, user_id, name, created_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		 WHERE tags.user_id = EXCLUDED.user_id
		 RETURNING id, user_id, name, created_at`

	out := &models.Tag{}
	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.Name).
		Scan(&out.ID, &out.UserID, &out.Name, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %s: %w", t.ID, common.ErrOwnerMismatch)
		}
		return nil, repositories.DBError(err)
	}
	return out, nil
}

// Delete removes the tag. Deleting a missing tag is not an error; a tag
// still linked from note_tags yields common.ErrReferenced.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return repositories.DBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repositories.DBError(err)
	}
	if n > 0 {
		return nil
	}

	var owner string
	err = r.db.QueryRowContext(ctx, `SELECT user_id FROM tags WHERE id = $1`, id).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return repositories.DBError(err)
	default:
		return fmt.Errorf("tag %s: %w", id, common.ErrOwnerMismatch)
	}
}

// ChangedSince returns the user's tags created after since, oldest first.
func (r *PostgresRepository) ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	query :=
		`SELECT id, user_id, name, created_at FROM tags
		 WHERE user_id = $1 AND created_at > $2
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, repositories.DBError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return out, nil
}
