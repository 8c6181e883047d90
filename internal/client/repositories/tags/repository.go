// Package tags is the client-side repository for user tags. Tag names are
// unique per user after trimming surrounding whitespace. Deleting a tag
// removes it and its note associations physically; the remote cascade is
// done by the sync engine.
package tags

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

const maxNameLen = 64

type Repository struct {
	deps repositories.Deps
}

func New(d repositories.Deps) *Repository {
	return &Repository{deps: d.WithDefaults()}
}

func normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: tag name is empty", common.ErrValidation)
	}
	if len(name) > maxNameLen {
		return "", fmt.Errorf("%w: tag name longer than %d bytes", common.ErrValidation, maxNameLen)
	}
	return name, nil
}

// Create adds a tag for the session user.
func (r *Repository) Create(ctx context.Context, name string) (*models.Tag, error) {
	name, err := normalize(name)
	if err != nil {
		return nil, err
	}
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.ensureUnique(ctx, userID, name, ""); err != nil {
		return nil, err
	}

	t := &models.Tag{ID: r.deps.NewID(), UserID: userID, Name: name, CreatedAt: r.deps.Now()}
	err = r.deps.Write(ctx, models.EntityTag, models.OpCreate, userID, t, func(tx *store.Store) error {
		_, err := store.Tags.Put(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return t, nil
}

// Rename changes the name of an existing tag.
func (r *Repository) Rename(ctx context.Context, id, name string) (*models.Tag, error) {
	name, err := normalize(name)
	if err != nil {
		return nil, err
	}
	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.ensureUnique(ctx, t.UserID, name, t.ID); err != nil {
		return nil, err
	}

	t.Name = name
	err = r.deps.Write(ctx, models.EntityTag, models.OpUpdate, t.UserID, t, func(tx *store.Store) error {
		_, err := store.Tags.Put(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rename tag %s: %w", id, err)
	}
	return t, nil
}

// Delete removes the tag and, locally, every association that points to it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	t, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	err = r.deps.Write(ctx, models.EntityTag, models.OpDelete, t.UserID, t, func(tx *store.Store) error {
		links, err := store.NoteTags.FindBy(ctx, tx, store.IdxTagID, t.ID)
		if err != nil {
			return err
		}
		for i := range links {
			if err := store.NoteTags.Delete(ctx, tx, links[i].Key()); err != nil {
				return err
			}
		}
		return store.Tags.Delete(ctx, tx, t.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", id, err)
	}
	return nil
}

// Get returns a tag of the session user.
func (r *Repository) Get(ctx context.Context, id string) (*models.Tag, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("tag %s: %w", id, common.ErrNotFound)
}

// GetByName finds a tag of the session user by exact (trimmed) name.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, common.ErrNotFound)
}

// List returns the session user's tags.
func (r *Repository) List(ctx context.Context) ([]models.Tag, error) {
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if r.deps.OnlineOnly() {
		return r.deps.Remote.TagsChangedSince(ctx, userID, time.Time{})
	}
	return store.Tags.FindBy(ctx, r.deps.Store, store.IdxUserID, userID)
}

func (r *Repository) ensureUnique(ctx context.Context, userID, name, selfID string) error {
	if r.deps.OnlineOnly() {
		// the remote enforces the constraint itself
		return nil
	}
	same, err := store.Tags.FindBy(ctx, r.deps.Store, store.IdxName, name)
	if err != nil {
		return err
	}
	for _, t := range same {
		if t.UserID == userID && t.ID != selfID {
			return fmt.Errorf("tag %q: %w", name, common.ErrAlreadyExists)
		}
	}
	return nil
}
