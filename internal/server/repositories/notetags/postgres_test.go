package notetags

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

const (
	ownersQuery  = `^SELECT\s+\(SELECT\s+user_id\s+FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\),\s*\(SELECT\s+user_id\s+FROM\s+tags\s+WHERE\s+id\s*=\s*\$2\)$`
	insertQuery  = `^WITH\s+ins\s+AS\s+\(\s*INSERT\s+INTO\s+note_tags\s*\(note_id,\s*tag_id,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s+\(note_id,\s*tag_id\)\s+DO\s+NOTHING\s+RETURNING\s+note_id\s*\)\s*` + touchNotes + `ins\)$`
	deleteQuery  = `^WITH\s+del\s+AS\s+\(\s*DELETE\s+FROM\s+note_tags\s+nt\s+USING\s+notes\s+n\s+WHERE\s+.+\s+RETURNING\s+nt\.note_id\s*\)\s*` + touchNotes + `del\)$`
	byTagQuery   = `^WITH\s+del\s+AS\s+\(\s*DELETE\s+FROM\s+note_tags\s+nt\s+USING\s+tags\s+t\s+WHERE\s+.+\s+RETURNING\s+nt\.note_id\s*\)\s*` + touchNotes + `del\)$`
	touchNotes   = `UPDATE\s+notes\s+SET\s+updated_at\s*=\s*now\(\)\s+WHERE\s+id\s+IN\s+\(SELECT\s+note_id\s+FROM\s+`
	changedQuery = `^SELECT\s+nt\.note_id,\s*nt\.tag_id,\s*nt\.created_at\s+FROM\s+note_tags\s+nt\s+JOIN\s+notes\s+n\s+ON\s+n\.id\s*=\s*nt\.note_id\s+WHERE\s+n\.user_id\s*=\s*\$1\s+AND\s+n\.updated_at\s*>\s*\$2`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func owners(note, tag any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"note_owner", "tag_owner"}).AddRow(note, tag)
}

func TestUpsert(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	link := &models.NoteTag{NoteID: "n1", TagID: "t1", CreatedAt: created}

	t.Run("inserts owned link", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(ownersQuery).WithArgs("n1", "t1").WillReturnRows(owners("u1", "u1"))
		mock.ExpectExec(insertQuery).WithArgs("n1", "t1", created).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(context.Background(), "u1", link))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing note", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(ownersQuery).WithArgs("n1", "t1").WillReturnRows(owners(nil, "u1"))

		require.ErrorIs(t, repo.Upsert(context.Background(), "u1", link), common.ErrNotFound)
	})

	t.Run("missing tag", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(ownersQuery).WithArgs("n1", "t1").WillReturnRows(owners("u1", nil))

		require.ErrorIs(t, repo.Upsert(context.Background(), "u1", link), common.ErrNotFound)
	})

	t.Run("foreign tag", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(ownersQuery).WithArgs("n1", "t1").WillReturnRows(owners("u1", "u2"))

		require.ErrorIs(t, repo.Upsert(context.Background(), "u1", link), common.ErrOwnerMismatch)
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(deleteQuery).WithArgs("u1", "n1", "t1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "u1", "n1", "t1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByTag(t *testing.T) {
	t.Run("touches linked notes", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(byTagQuery).WithArgs("u1", "t1").WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, repo.DeleteByTag(context.Background(), "u1", "t1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(byTagQuery).WithArgs("u1", "t1").WillReturnError(errors.New("boom"))

		require.ErrorContains(t, repo.DeleteByTag(context.Background(), "u1", "t1"), "db error: boom")
	})
}

func TestForNotesChangedSince(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(changedQuery).
		WithArgs("u1", since).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "tag_id", "created_at"}).
			AddRow("n1", "t1", since).
			AddRow("n1", "t2", since))

	got, err := repo.ForNotesChangedSince(context.Background(), "u1", since)
	require.NoError(t, err)
	require.Equal(t, []models.NoteTag{
		{NoteID: "n1", TagID: "t1", CreatedAt: since},
		{NoteID: "n1", TagID: "t2", CreatedAt: since},
	}, got)
}
