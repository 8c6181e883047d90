package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote/remotetest"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/stretchr/testify/require"
)

func TestDeclaredOwner(t *testing.T) {
	tests := []struct {
		name string
		item models.SyncQueueItem
		want string
	}{
		{"item user wins", models.SyncQueueItem{UserID: "u1", Data: json.RawMessage(`{"user_id":"u2"}`)}, "u1"},
		{"falls back to snapshot", models.SyncQueueItem{Data: json.RawMessage(`{"user_id":"u2"}`)}, "u2"},
		{"undeclared", models.SyncQueueItem{Data: json.RawMessage(`{"id":"n1"}`)}, ""},
		{"garbage snapshot", models.SyncQueueItem{Data: json.RawMessage(`not json`)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, declaredOwner(&tt.item))
		})
	}
}

func TestDefaultHandlers_Coverage(t *testing.T) {
	h := defaultHandlers()
	require.Len(t, h, 8)
	_, ok := h[mutationKey{models.EntityNoteTag, models.OpUpdate}]
	require.False(t, ok)
}

func TestPushTagDelete_StopsWhenAssociationsCannotBeRemoved(t *testing.T) {
	m := remotetest.NewMemory()
	boom := errors.New("boom")
	m.Hook = func(method string) error {
		if method == "DeleteNoteTagsByTag" {
			return boom
		}
		return nil
	}
	env := handlerEnv{backend: m, store: store.Unavailable(nil), userID: "u1"}

	err := pushTagDelete(context.Background(), env, json.RawMessage(`{"id":"t1"}`))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"DeleteNoteTagsByTag"}, m.Calls())
}

func TestPushHandlers_BadSnapshot(t *testing.T) {
	env := handlerEnv{backend: remotetest.NewMemory(), store: store.Unavailable(nil), userID: "u1"}
	for key, h := range defaultHandlers() {
		err := h(context.Background(), env, json.RawMessage(`[`))
		require.Error(t, err, "%s %s", key.entity, key.op)
	}
}

func TestPushNoteTag_CreateAndDelete(t *testing.T) {
	m := remotetest.NewMemory()
	ctx := context.Background()
	_, err := m.UpsertNote(ctx, &models.Note{ID: "n1", UserID: "u1"})
	require.NoError(t, err)
	_, err = m.UpsertTag(ctx, &models.Tag{ID: "t1", UserID: "u1", Name: "a"})
	require.NoError(t, err)

	env := handlerEnv{backend: m, store: store.Unavailable(nil), userID: "u1"}
	data := json.RawMessage(`{"note_id":"n1","tag_id":"t1"}`)

	require.NoError(t, pushNoteTagUpsert(ctx, env, data))
	require.Len(t, m.NoteTags(), 1)

	require.NoError(t, pushNoteTagDelete(ctx, env, data))
	require.Empty(t, m.NoteTags())
}
