package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

const maxTagNameLen = 64

// SyncService implements the per-row operations clients push and the
// change feeds they pull. Every call is scoped to a user id that the
// transport layer has already matched against the caller's token.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager) *SyncService {
	return &SyncService{db: db, repomanager: m, now: time.Now}
}

func required(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", common.ErrValidation, field)
	}
	return nil
}

func (s *SyncService) UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	if err := required("note id", n.ID); err != nil {
		return nil, err
	}
	if err := required("user id", n.UserID); err != nil {
		return nil, err
	}
	if len(n.Content) > common.MaxNoteContentBytes {
		return nil, fmt.Errorf("%w: note content exceeds %d bytes", common.ErrValidation, common.MaxNoteContentBytes)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	return s.repomanager.Notes(s.db).Upsert(ctx, n)
}

func (s *SyncService) SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	if err := required("note id", noteID); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).SoftDelete(ctx, userID, noteID)
}

func (s *SyncService) UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if err := required("tag id", t.ID); err != nil {
		return nil, err
	}
	if err := required("user id", t.UserID); err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := required("tag name", t.Name); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(t.Name) > maxTagNameLen {
		return nil, fmt.Errorf("%w: tag name longer than %d characters", common.ErrValidation, maxTagNameLen)
	}
	return s.repomanager.Tags(s.db).Upsert(ctx, t)
}

func (s *SyncService) DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error {
	return s.repomanager.NoteTags(s.db).DeleteByTag(ctx, userID, tagID)
}

// DeleteTag fails with common.ErrReferenced while links to the tag remain;
// clients remove them first with DeleteNoteTagsByTag.
func (s *SyncService) DeleteTag(ctx context.Context, userID, tagID string) error {
	return s.repomanager.Tags(s.db).Delete(ctx, userID, tagID)
}

func (s *SyncService) UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error {
	if err := required("note id", nt.NoteID); err != nil {
		return err
	}
	if err := required("tag id", nt.TagID); err != nil {
		return err
	}
	if nt.CreatedAt.IsZero() {
		nt.CreatedAt = s.now().UTC()
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.NoteTags(tx).Upsert(ctx, userID, nt)
	})
}

func (s *SyncService) DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error {
	return s.repomanager.NoteTags(s.db).Delete(ctx, userID, noteID, tagID)
}

// NotesChangedSince returns notes updated after since with all their tag
// links, read from one snapshot.
func (s *SyncService) NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error) {
	var (
		notes []models.Note
		links []models.NoteTag
	)
	err := dbx.WithSnapshot(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if notes, err = s.repomanager.Notes(tx).ChangedSince(ctx, userID, since); err != nil {
			return err
		}
		links, err = s.repomanager.NoteTags(tx).ForNotesChangedSince(ctx, userID, since)
		return err
	})
	if err != nil {
		return nil, err
	}

	byNote := make(map[string][]models.NoteTag, len(notes))
	for _, l := range links {
		byNote[l.NoteID] = append(byNote[l.NoteID], l)
	}

	out := make([]models.NoteWithTags, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.NoteWithTags{Note: n, Tags: byNote[n.ID]})
	}
	return out, nil
}

func (s *SyncService) TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	return s.repomanager.Tags(s.db).ChangedSince(ctx, userID, since)
}
