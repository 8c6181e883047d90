package syncer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
)

type mutationKey struct {
	entity models.EntityType
	op     models.Operation
}

// handlerEnv is what a push handler may touch: the remote, the local store
// for writing back accepted rows, and the session user every call is scoped to.
type handlerEnv struct {
	backend remote.Backend
	store   *store.Store
	userID  string
}

type pushHandler func(ctx context.Context, env handlerEnv, data json.RawMessage) error

func defaultHandlers() map[mutationKey]pushHandler {
	return map[mutationKey]pushHandler{
		{models.EntityNote, models.OpCreate}:    pushNoteUpsert,
		{models.EntityNote, models.OpUpdate}:    pushNoteUpsert,
		{models.EntityNote, models.OpDelete}:    pushNoteDelete,
		{models.EntityTag, models.OpCreate}:     pushTagUpsert,
		{models.EntityTag, models.OpUpdate}:     pushTagUpsert,
		{models.EntityTag, models.OpDelete}:     pushTagDelete,
		{models.EntityNoteTag, models.OpCreate}: pushNoteTagUpsert,
		{models.EntityNoteTag, models.OpDelete}: pushNoteTagDelete,
	}
}

func decode[T any](data json.RawMessage) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return v, nil
}

// writeBack stores an accepted remote row locally. Online-only clients have
// no store, so this is skipped.
func writeBack[T any](ctx context.Context, env handlerEnv, c *store.Collection[T], v *T) error {
	if v == nil || !env.store.IsAvailable() {
		return nil
	}
	if _, err := c.Put(ctx, env.store, v); err != nil {
		return fmt.Errorf("failed to write back %s: %w", c.Name(), err)
	}
	return nil
}

func pushNoteUpsert(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	n, err := decode[models.Note](data)
	if err != nil {
		return err
	}
	n.UserID = env.userID

	accepted, err := env.backend.UpsertNote(ctx, n)
	if err != nil {
		return fmt.Errorf("upsert note %s: %w", n.ID, err)
	}
	return writeBack(ctx, env, store.Notes, accepted)
}

func pushNoteDelete(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	n, err := decode[models.Note](data)
	if err != nil {
		return err
	}

	tomb, err := env.backend.SoftDeleteNote(ctx, env.userID, n.ID)
	if err != nil {
		return fmt.Errorf("soft delete note %s: %w", n.ID, err)
	}
	return writeBack(ctx, env, store.Notes, tomb)
}

func pushTagUpsert(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	t, err := decode[models.Tag](data)
	if err != nil {
		return err
	}
	t.UserID = env.userID

	accepted, err := env.backend.UpsertTag(ctx, t)
	if err != nil {
		return fmt.Errorf("upsert tag %s: %w", t.ID, err)
	}
	return writeBack(ctx, env, store.Tags, accepted)
}

// pushTagDelete removes the tag's associations before the tag row.
func pushTagDelete(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	t, err := decode[models.Tag](data)
	if err != nil {
		return err
	}

	if err := env.backend.DeleteNoteTagsByTag(ctx, env.userID, t.ID); err != nil {
		return fmt.Errorf("delete associations of tag %s: %w", t.ID, err)
	}
	if err := env.backend.DeleteTag(ctx, env.userID, t.ID); err != nil {
		return fmt.Errorf("delete tag %s: %w", t.ID, err)
	}
	return nil
}

func pushNoteTagUpsert(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	nt, err := decode[models.NoteTag](data)
	if err != nil {
		return err
	}
	if err := env.backend.UpsertNoteTag(ctx, env.userID, nt); err != nil {
		return fmt.Errorf("upsert note_tag %s: %w", nt.Key(), err)
	}
	return nil
}

func pushNoteTagDelete(ctx context.Context, env handlerEnv, data json.RawMessage) error {
	nt, err := decode[models.NoteTag](data)
	if err != nil {
		return err
	}
	if err := env.backend.DeleteNoteTag(ctx, env.userID, nt.NoteID, nt.TagID); err != nil {
		return fmt.Errorf("delete note_tag %s: %w", nt.Key(), err)
	}
	return nil
}
