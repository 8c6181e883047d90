package notes

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

const columns = `id, user_id, title, content, created_at, updated_at, deleted_at, is_favorite, is_archived, sync_version`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	n := &models.Note{}
	err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt,
		&n.DeletedAt, &n.IsFavorite, &n.IsArchived, &n.SyncVersion)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Upsert inserts n with sync_version 1, or updates the existing row and
// bumps its sync_version. updated_at is always stamped by the database and
// an existing deleted_at wins over the incoming one. A row owned by another
// user is left alone and common.ErrOwnerMismatch is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, n *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, now(), $6, $7, $8, 1)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = now(),
			deleted_at = COALESCE(notes.deleted_at, EXCLUDED.deleted_at),
			is_favorite = EXCLUDED.is_favorite,
			is_archived = EXCLUDED.is_archived,
			sync_version = notes.sync_version + 1
		 WHERE notes.user_id = EXCLUDED.user_id
		 RETURNING ` + columns

	row := r.db.QueryRowContext(ctx, query, n.ID, n.UserID, n.Title, n.Content, n.CreatedAt,
		n.DeletedAt, n.IsFavorite, n.IsArchived)
	out, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", n.ID, common.ErrOwnerMismatch)
		}
		return nil, repositories.DBError(err)
	}
	return out, nil
}

// SoftDelete marks the note deleted (keeping an earlier deletion time) and
// refreshes updated_at so the tombstone is pulled by other devices.
func (r *PostgresRepository) SoftDelete(ctx context.Context, userID, id string) (*models.Note, error) {
	query :=
		`UPDATE notes SET
			deleted_at = COALESCE(deleted_at, now()),
			updated_at = now(),
			sync_version = sync_version + 1
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + columns

	out, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", id, common.ErrNotFound)
		}
		return nil, repositories.DBError(err)
	}
	return out, nil
}

// ChangedSince returns the user's notes, tombstones included, updated after
// since, oldest first.
func (r *PostgresRepository) ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Note, error) {
	query :=
		`SELECT ` + columns + ` FROM notes
		 WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, repositories.DBError(err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return out, nil
}
