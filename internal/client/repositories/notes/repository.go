package notes

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// Patch lists the fields to change; nil fields are left as they are.
type Patch struct {
	Title      *string
	Content    *string
	IsFavorite *bool
	IsArchived *bool
}

type Repository struct {
	deps repositories.Deps
}

func New(d repositories.Deps) *Repository {
	return &Repository{deps: d.WithDefaults()}
}

func validateContent(content string) error {
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", common.ErrValidation)
	}
	if len(content) > common.MaxNoteContentBytes {
		return fmt.Errorf("%w: content is %d bytes, limit is %d", common.ErrValidation, len(content), common.MaxNoteContentBytes)
	}
	return nil
}

// Create stores a new note owned by the session user.
func (r *Repository) Create(ctx context.Context, title, content string) (*models.Note, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}

	now := r.deps.Now()
	n := &models.Note{
		ID:        r.deps.NewID(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.deps.Write(ctx, models.EntityNote, models.OpCreate, userID, n, func(tx *store.Store) error {
		_, err := store.Notes.Put(ctx, tx, n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return n, nil
}

// Update applies p to an active note.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (*models.Note, error) {
	if p.Content != nil {
		if err := validateContent(*p.Content); err != nil {
			return nil, err
		}
	}
	n, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	if p.IsArchived != nil {
		n.IsArchived = *p.IsArchived
	}
	n.UpdatedAt = r.deps.Now()

	err = r.deps.Write(ctx, models.EntityNote, models.OpUpdate, n.UserID, n, func(tx *store.Store) error {
		_, err := store.Notes.Put(ctx, tx, n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update note %s: %w", id, err)
	}
	return n, nil
}

// Delete marks the note deleted. The row stays in the store.
func (r *Repository) Delete(ctx context.Context, id string) error {
	n, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	now := r.deps.Now()
	n.DeletedAt = &now
	n.UpdatedAt = now

	err = r.deps.Write(ctx, models.EntityNote, models.OpDelete, n.UserID, n, func(tx *store.Store) error {
		_, err := store.Notes.Put(ctx, tx, n)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}

// Get returns an active note of the session user. Tombstones and other
// users' notes are reported as common.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*models.Note, error) {
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var n *models.Note
	if r.deps.OnlineOnly() {
		n, err = r.remoteGet(ctx, userID, id)
	} else {
		n, err = store.Notes.GetByID(ctx, r.deps.Store, id)
	}
	if err != nil {
		return nil, err
	}
	if n.UserID != userID || n.Deleted() {
		return nil, fmt.Errorf("note %s: %w", id, common.ErrNotFound)
	}
	return n, nil
}

func (r *Repository) remoteGet(ctx context.Context, userID, id string) (*models.Note, error) {
	all, err := r.deps.Remote.NotesChangedSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Note.ID == id {
			return &all[i].Note, nil
		}
	}
	return nil, fmt.Errorf("note %s: %w", id, common.ErrNotFound)
}

// ListActive returns the session user's notes that are not deleted.
func (r *Repository) ListActive(ctx context.Context) ([]models.Note, error) {
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var all []models.Note
	if r.deps.OnlineOnly() {
		pulled, err := r.deps.Remote.NotesChangedSince(ctx, userID, time.Time{})
		if err != nil {
			return nil, err
		}
		for i := range pulled {
			all = append(all, pulled[i].Note)
		}
	} else {
		all, err = store.Notes.FindBy(ctx, r.deps.Store, store.IdxUserID, userID)
		if err != nil {
			return nil, err
		}
	}

	active := all[:0]
	for _, n := range all {
		if !n.Deleted() {
			active = append(active, n)
		}
	}
	return active, nil
}

// ListFavorites returns active notes marked as favorite.
func (r *Repository) ListFavorites(ctx context.Context) ([]models.Note, error) {
	all, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var fav []models.Note
	for _, n := range all {
		if n.IsFavorite {
			fav = append(fav, n)
		}
	}
	return fav, nil
}
