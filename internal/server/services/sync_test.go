package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSyncService(t *testing.T) (*SyncService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := newFakeRepoManager()
	s := NewSyncService(db, rm)
	s.now = func() time.Time { return fixedNow }
	return s, rm, mock
}

func TestUpsertNote_StampsCreatedAt(t *testing.T) {
	s, rm, _ := newSyncService(t)

	got, err := s.UpsertNote(context.Background(), &models.Note{ID: "n1", UserID: "u1", Content: "x"})
	require.NoError(t, err)
	require.Equal(t, fixedNow, got.CreatedAt)
	require.Len(t, rm.notes.upserted, 1)

	created := fixedNow.Add(-time.Hour)
	got, err = s.UpsertNote(context.Background(), &models.Note{ID: "n1", UserID: "u1", CreatedAt: created})
	require.NoError(t, err)
	require.Equal(t, created, got.CreatedAt)
}

func TestUpsertNote_Validation(t *testing.T) {
	s, rm, _ := newSyncService(t)
	ctx := context.Background()

	_, err := s.UpsertNote(ctx, &models.Note{UserID: "u1"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.UpsertNote(ctx, &models.Note{ID: "n1"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.UpsertNote(ctx, &models.Note{ID: "n1", UserID: "u1", Content: strings.Repeat("a", common.MaxNoteContentBytes+1)})
	require.ErrorIs(t, err, common.ErrValidation)

	require.Empty(t, rm.notes.upserted)
}

func TestUpsertNote_PassesRepositoryErrors(t *testing.T) {
	s, rm, _ := newSyncService(t)
	rm.notes.err = common.ErrOwnerMismatch

	_, err := s.UpsertNote(context.Background(), &models.Note{ID: "n1", UserID: "u1"})
	require.ErrorIs(t, err, common.ErrOwnerMismatch)
}

func TestUpsertTag_TrimsAndValidates(t *testing.T) {
	s, rm, _ := newSyncService(t)
	ctx := context.Background()

	got, err := s.UpsertTag(ctx, &models.Tag{ID: "t1", UserID: "u1", Name: "  work "})
	require.NoError(t, err)
	require.Equal(t, "work", got.Name)

	_, err = s.UpsertTag(ctx, &models.Tag{ID: "t2", UserID: "u1", Name: "   "})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.UpsertTag(ctx, &models.Tag{ID: "t3", UserID: "u1", Name: strings.Repeat("é", maxTagNameLen+1)})
	require.ErrorIs(t, err, common.ErrValidation)

	require.Len(t, rm.tags.upserted, 1)
}

func TestDeleteTag_Referenced(t *testing.T) {
	s, rm, _ := newSyncService(t)
	rm.tags.err = common.ErrReferenced

	require.ErrorIs(t, s.DeleteTag(context.Background(), "u1", "t1"), common.ErrReferenced)
}

func TestUpsertNoteTag_RunsInTransaction(t *testing.T) {
	s, rm, mock := newSyncService(t)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.UpsertNoteTag(context.Background(), "u1", &models.NoteTag{NoteID: "n1", TagID: "t1"}))
	require.Equal(t, fixedNow, rm.noteTags.upserted[0].CreatedAt)

	rm.noteTags.err = common.ErrOwnerMismatch
	mock.ExpectBegin()
	mock.ExpectRollback()
	err := s.UpsertNoteTag(context.Background(), "u1", &models.NoteTag{NoteID: "n1", TagID: "t9"})
	require.ErrorIs(t, err, common.ErrOwnerMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertNoteTag_Validation(t *testing.T) {
	s, _, _ := newSyncService(t)

	err := s.UpsertNoteTag(context.Background(), "u1", &models.NoteTag{NoteID: "n1"})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestNotesChangedSince_GroupsLinks(t *testing.T) {
	s, rm, mock := newSyncService(t)
	rm.notes.changed = []models.Note{{ID: "n1", UserID: "u1"}, {ID: "n2", UserID: "u1"}}
	rm.noteTags.links = []models.NoteTag{{NoteID: "n1", TagID: "t1"}, {NoteID: "n1", TagID: "t2"}}

	mock.ExpectBegin()
	mock.ExpectCommit()

	got, err := s.NotesChangedSince(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "n1", got[0].Note.ID)
	require.Len(t, got[0].Tags, 2)
	require.Empty(t, got[1].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotesChangedSince_Error(t *testing.T) {
	s, rm, mock := newSyncService(t)
	rm.notes.err = errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.NotesChangedSince(context.Background(), "u1", time.Time{})
	require.EqualError(t, err, "boom")
}

func TestDeleteOperations_Delegate(t *testing.T) {
	s, rm, _ := newSyncService(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteNoteTagsByTag(ctx, "u1", "t1"))
	require.NoError(t, s.DeleteNoteTag(ctx, "u1", "n1", "t1"))
	require.Equal(t, []string{"DeleteByTag", "Delete"}, rm.noteTags.calls)

	n, err := s.SoftDeleteNote(ctx, "u1", "n1")
	require.NoError(t, err)
	require.NotNil(t, n.DeletedAt)

	_, err = s.SoftDeleteNote(ctx, "u1", "")
	require.ErrorIs(t, err, common.ErrValidation)
}
