// Package notetags manages the links between notes and tags on the client.
package notetags

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/tags"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

type Repository struct {
	deps  repositories.Deps
	notes *notes.Repository
	tags  *tags.Repository
}

func New(d repositories.Deps, n *notes.Repository, t *tags.Repository) *Repository {
	return &Repository{deps: d.WithDefaults(), notes: n, tags: t}
}

// Attach links an active note to a tag, both owned by the session user.
// Attaching an existing link is a no-op.
func (r *Repository) Attach(ctx context.Context, noteID, tagID string) (*models.NoteTag, error) {
	n, err := r.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if _, err := r.tags.Get(ctx, tagID); err != nil {
		return nil, err
	}

	if !r.deps.OnlineOnly() {
		existing, err := store.NoteTags.GetByID(ctx, r.deps.Store, models.NoteTagKey(noteID, tagID))
		if err == nil {
			return existing, nil
		}
	}

	nt := &models.NoteTag{NoteID: noteID, TagID: tagID, CreatedAt: r.deps.Now()}
	err = r.deps.Write(ctx, models.EntityNoteTag, models.OpCreate, n.UserID, nt, func(tx *store.Store) error {
		_, err := store.NoteTags.Put(ctx, tx, nt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach tag %s to note %s: %w", tagID, noteID, err)
	}
	return nt, nil
}

// Detach removes the link between a note and a tag.
func (r *Repository) Detach(ctx context.Context, noteID, tagID string) error {
	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return err
	}

	nt := &models.NoteTag{NoteID: noteID, TagID: tagID}
	if !r.deps.OnlineOnly() {
		cur, err := store.NoteTags.GetByID(ctx, r.deps.Store, nt.Key())
		if err != nil {
			return fmt.Errorf("note_tag %s: %w", nt.Key(), err)
		}
		nt = cur
	}

	err = r.deps.Write(ctx, models.EntityNoteTag, models.OpDelete, userID, nt, func(tx *store.Store) error {
		return store.NoteTags.Delete(ctx, tx, nt.Key())
	})
	if err != nil {
		return fmt.Errorf("failed to detach tag %s from note %s: %w", tagID, noteID, err)
	}
	return nil
}

// TagsForNote returns the tags linked to a note. Links whose tag is gone are
// skipped.
func (r *Repository) TagsForNote(ctx context.Context, noteID string) ([]models.Tag, error) {
	if _, err := r.notes.Get(ctx, noteID); err != nil {
		return nil, err
	}
	links, err := r.links(ctx, store.IdxNoteID, noteID)
	if err != nil {
		return nil, err
	}
	all, err := r.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Tag, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}

	var out []models.Tag
	for _, l := range links {
		if t, ok := byID[l.TagID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// NotesForTag returns the active notes carrying a tag.
func (r *Repository) NotesForTag(ctx context.Context, tagID string) ([]models.Note, error) {
	if _, err := r.tags.Get(ctx, tagID); err != nil {
		return nil, err
	}
	links, err := r.links(ctx, store.IdxTagID, tagID)
	if err != nil {
		return nil, err
	}
	active, err := r.notes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]struct{}, len(links))
	for _, l := range links {
		linked[l.NoteID] = struct{}{}
	}

	var out []models.Note
	for _, n := range active {
		if _, ok := linked[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *Repository) links(ctx context.Context, index, value string) ([]models.NoteTag, error) {
	if !r.deps.OnlineOnly() {
		return store.NoteTags.FindBy(ctx, r.deps.Store, index, value)
	}

	userID, err := r.deps.UserID(ctx)
	if err != nil {
		return nil, err
	}
	pulled, err := r.deps.Remote.NotesChangedSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	var out []models.NoteTag
	for _, nw := range pulled {
		for _, nt := range nw.Tags {
			switch index {
			case store.IdxNoteID:
				if nt.NoteID == value {
					out = append(out, nt)
				}
			case store.IdxTagID:
				if nt.TagID == value {
					out = append(out, nt)
				}
			default:
				return nil, fmt.Errorf("%w: unknown index %s", common.ErrValidation, index)
			}
		}
	}
	return out, nil
}
