package notetags

import (
	"context"
	"database/sql"
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

// Upsert links the note and tag. Both must exist (common.ErrNotFound) and
// belong to userID (common.ErrOwnerMismatch). An existing link is kept; a
// new one touches the note's updated_at so pulls carry it.
// Run it inside a transaction so the check and the insert agree.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, nt *models.NoteTag) error {
	var noteOwner, tagOwner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT user_id FROM notes WHERE id = $1), (SELECT user_id FROM tags WHERE id = $2)`,
		nt.NoteID, nt.TagID).Scan(&noteOwner, &tagOwner)
	if err != nil {
		return repositories.DBError(err)
	}
	if !noteOwner.Valid {
		return fmt.Errorf("note %s: %w", nt.NoteID, common.ErrNotFound)
	}
	if !tagOwner.Valid {
		return fmt.Errorf("tag %s: %w", nt.TagID, common.ErrNotFound)
	}
	if noteOwner.String != userID || tagOwner.String != userID {
		return fmt.Errorf("note_tag %s:%s: %w", nt.NoteID, nt.TagID, common.ErrOwnerMismatch)
	}

	_, err = r.db.ExecContext(ctx,
		`WITH ins AS (
			INSERT INTO note_tags (note_id, tag_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (note_id, tag_id) DO NOTHING
			RETURNING note_id
		 )
		 UPDATE notes SET updated_at = now() WHERE id IN (SELECT note_id FROM ins)`,
		nt.NoteID, nt.TagID, nt.CreatedAt)
	if err != nil {
		return repositories.DBError(err)
	}
	return nil
}

// Delete removes one link of a note owned by userID and touches the note's
// updated_at. Missing links are ignored.
func (r *PostgresRepository) Delete(ctx context.Context, userID, noteID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		`WITH del AS (
			DELETE FROM note_tags nt USING notes n
			WHERE nt.note_id = n.id AND n.user_id = $1 AND nt.note_id = $2 AND nt.tag_id = $3
			RETURNING nt.note_id
		 )
		 UPDATE notes SET updated_at = now() WHERE id IN (SELECT note_id FROM del)`,
		userID, noteID, tagID)
	if err != nil {
		return repositories.DBError(err)
	}
	return nil
}

// DeleteByTag removes every link to a tag owned by userID and touches the
// notes that lost one.
func (r *PostgresRepository) DeleteByTag(ctx context.Context, userID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		`WITH del AS (
			DELETE FROM note_tags nt USING tags t
			WHERE nt.tag_id = t.id AND t.user_id = $1 AND nt.tag_id = $2
			RETURNING nt.note_id
		 )
		 UPDATE notes SET updated_at = now() WHERE id IN (SELECT note_id FROM del)`,
		userID, tagID)
	if err != nil {
		return repositories.DBError(err)
	}
	return nil
}

// ForNotesChangedSince returns all links of the user's notes updated after
// since, grouped by note.
func (r *PostgresRepository) ForNotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteTag, error) {
	query :=
		`SELECT nt.note_id, nt.tag_id, nt.created_at
		 FROM note_tags nt
		 JOIN notes n ON n.id = nt.note_id
		 WHERE n.user_id = $1 AND n.updated_at > $2
		 ORDER BY nt.note_id, nt.tag_id`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, repositories.DBError(err)
	}
	defer rows.Close()

	var out []models.NoteTag
	for rows.Next() {
		var nt models.NoteTag
		if err := rows.Scan(&nt.NoteID, &nt.TagID, &nt.CreatedAt); err != nil {
			return nil, repositories.DBError(err)
		}
		out = append(out, nt)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.DBError(err)
	}
	return out, nil
}
