package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notetags"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.ID = "id-" + u.UserName
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, name string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeNotesRepo struct {
	upserted []*models.Note
	changed  []models.Note
	err      error
}

func (f *fakeNotesRepo) Upsert(ctx context.Context, n *models.Note) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = append(f.upserted, n)
	out := *n
	out.SyncVersion = 1
	return &out, nil
}

func (f *fakeNotesRepo) SoftDelete(ctx context.Context, userID, id string) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now()
	return &models.Note{ID: id, UserID: userID, DeletedAt: &now}, nil
}

func (f *fakeNotesRepo) ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Note, error) {
	return f.changed, f.err
}

type fakeTagsRepo struct {
	upserted []*models.Tag
	deleted  []string
	changed  []models.Tag
	err      error
}

func (f *fakeTagsRepo) Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = append(f.upserted, t)
	out := *t
	return &out, nil
}

func (f *fakeTagsRepo) Delete(ctx context.Context, userID, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeTagsRepo) ChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	return f.changed, f.err
}

type fakeNoteTagsRepo struct {
	upserted []models.NoteTag
	calls    []string
	links    []models.NoteTag
	err      error
}

func (f *fakeNoteTagsRepo) Upsert(ctx context.Context, userID string, nt *models.NoteTag) error {
	f.calls = append(f.calls, "Upsert")
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, *nt)
	return nil
}

func (f *fakeNoteTagsRepo) Delete(ctx context.Context, userID, noteID, tagID string) error {
	f.calls = append(f.calls, "Delete")
	return f.err
}

func (f *fakeNoteTagsRepo) DeleteByTag(ctx context.Context, userID, tagID string) error {
	f.calls = append(f.calls, "DeleteByTag")
	return f.err
}

func (f *fakeNoteTagsRepo) ForNotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteTag, error) {
	return f.links, f.err
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	notes    *fakeNotesRepo
	tags     *fakeTagsRepo
	noteTags *fakeNoteTagsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:    &fakeUsersRepo{byName: map[string]*models.User{}},
		notes:    &fakeNotesRepo{},
		tags:     &fakeTagsRepo{},
		noteTags: &fakeNoteTagsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository             { return m.notes }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository               { return m.tags }
func (m *fakeRepoManager) NoteTags(dbx.DBTX) notetags.Repository       { return m.noteTags }
