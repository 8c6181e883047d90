package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

type fakeUsers struct{}

func (fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "taken" {
		return nil, common.ErrAlreadyExists
	}
	return &models.User{ID: "id-" + username, UserName: username}, nil
}

func (fakeUsers) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	if password != "pw" {
		return nil, common.ErrUnauthorized
	}
	return &services.LoginResult{UserID: "id-" + username, AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// fakeSync keeps rows in maps and records the user id each call acted for.
type fakeSync struct {
	mu    sync.Mutex
	notes map[string]models.Note
	tags  map[string]models.Tag
	links []models.NoteTag
	users []string
	err   error
}

func newFakeSync() *fakeSync {
	return &fakeSync{notes: map[string]models.Note{}, tags: map[string]models.Tag{}}
}

func (f *fakeSync) seen(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return f.err
}

func (f *fakeSync) UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	if err := f.seen(n.UserID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.SyncVersion = f.notes[n.ID].SyncVersion + 1
	n.UpdatedAt = time.Now().UTC()
	f.notes[n.ID] = *n
	return n, nil
}

func (f *fakeSync) SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	if err := f.seen(userID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[noteID]
	if !ok {
		return nil, common.ErrNotFound
	}
	now := time.Now().UTC()
	n.DeletedAt = &now
	n.SyncVersion++
	f.notes[noteID] = n
	return &n, nil
}

func (f *fakeSync) UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if err := f.seen(t.UserID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[t.ID] = *t
	return t, nil
}

func (f *fakeSync) DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error {
	return f.seen(userID)
}

func (f *fakeSync) DeleteTag(ctx context.Context, userID, tagID string) error {
	return f.seen(userID)
}

func (f *fakeSync) UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error {
	if err := f.seen(userID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, *nt)
	return nil
}

func (f *fakeSync) DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error {
	return f.seen(userID)
}

func (f *fakeSync) NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error) {
	if err := f.seen(userID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NoteWithTags
	for _, n := range f.notes {
		if n.UpdatedAt.After(since) {
			nw := models.NoteWithTags{Note: n}
			for _, l := range f.links {
				if l.NoteID == n.ID {
					nw.Tags = append(nw.Tags, l)
				}
			}
			out = append(out, nw)
		}
	}
	return out, nil
}

func (f *fakeSync) TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	if err := f.seen(userID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tag
	for _, t := range f.tags {
		out = append(out, t)
	}
	return out, nil
}

type fakeArchives struct{}

func (fakeArchives) Export(ctx context.Context, userID string) (*models.Archive, error) {
	return &models.Archive{Key: "archives/" + userID + "/x.json", URL: "https://s3/x", Notes: 1}, nil
}
