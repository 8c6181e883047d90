package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/queue"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake authenticator ----

type fakeAuth struct {
	RegisterRet string
	RegisterErr error
	LoginRet    models.Session
	LoginErr    error
	PingErr     error

	LastUser     string
	LastPassword string
}

func (f *fakeAuth) Register(ctx context.Context, username, password string) (string, error) {
	f.LastUser, f.LastPassword = username, password
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (models.Session, error) {
	f.LastUser, f.LastPassword = username, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeAuth) Ping(ctx context.Context) error { return f.PingErr }

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"), logging.Nop())
	require.True(t, s.IsAvailable())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sessionFor(user string) models.Session {
	return models.Session{UserID: user, AccessToken: "tok-" + user}
}

// ---- tests ----

func TestRegister_PassesCredentials(t *testing.T) {
	fa := &fakeAuth{RegisterRet: "u1"}
	svc := NewAuthService(fa, session.NewManager(setupStore(t), logging.Nop()), setupStore(t))

	id, err := svc.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	require.Equal(t, "u1", id)
	require.Equal(t, "alice", fa.LastUser)
	require.Equal(t, "secret", fa.LastPassword)
}

func TestRegister_ErrorWrapped(t *testing.T) {
	fa := &fakeAuth{RegisterErr: errors.New("taken")}
	s := setupStore(t)
	svc := NewAuthService(fa, session.NewManager(s, logging.Nop()), s)

	_, err := svc.Register(context.Background(), "alice", []byte("p"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "register error:"))
}

func TestLogin_SavesSession(t *testing.T) {
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	fa := &fakeAuth{LoginRet: sessionFor("u1")}
	svc := NewAuthService(fa, sessions, s)

	got, err := svc.Login(context.Background(), "alice", []byte("p"))
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)

	_, err = store.SyncMetadata.GetByID(context.Background(), s, "session")
	require.NoError(t, err)
}

func TestLogin_ErrorKeepsPreviousSession(t *testing.T) {
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	require.NoError(t, sessions.Save(context.Background(), sessionFor("u1")))

	svc := NewAuthService(&fakeAuth{LoginErr: errors.New("bad creds")}, sessions, s)
	_, err := svc.Login(context.Background(), "bob", []byte("p"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "login error:"))

	_, err = store.SyncMetadata.GetByID(context.Background(), s, "session")
	require.NoError(t, err)
}

func TestLogin_OtherUserWipesSyncedData(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	require.NoError(t, sessions.Save(ctx, sessionFor("u1")))
	_, err := store.Notes.Put(ctx, s, &models.Note{ID: "n1", UserID: "u1"})
	require.NoError(t, err)

	svc := NewAuthService(&fakeAuth{LoginRet: sessionFor("u2")}, sessions, s)
	_, err = svc.Login(ctx, "bob", []byte("p"))
	require.NoError(t, err)

	notes, err := store.Notes.GetAll(ctx, s)
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestLogin_OtherUserWithPendingChangesRefused(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	require.NoError(t, sessions.Save(ctx, sessionFor("u1")))
	_, err := queue.New(s).Enqueue(ctx, models.EntityNote, models.OpCreate, "u1", models.Note{ID: "n1"})
	require.NoError(t, err)

	svc := NewAuthService(&fakeAuth{LoginRet: sessionFor("u2")}, sessions, s)
	_, err = svc.Login(ctx, "bob", []byte("p"))
	require.ErrorIs(t, err, ErrPendingChanges)
}

func TestLogin_SameUserKeepsData(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	require.NoError(t, sessions.Save(ctx, sessionFor("u1")))
	_, err := queue.New(s).Enqueue(ctx, models.EntityNote, models.OpCreate, "u1", models.Note{ID: "n1"})
	require.NoError(t, err)

	svc := NewAuthService(&fakeAuth{LoginRet: sessionFor("u1")}, sessions, s)
	_, err = svc.Login(ctx, "alice", []byte("p"))
	require.NoError(t, err)

	stats, err := queue.New(s).Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pending)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	sessions := session.NewManager(s, logging.Nop())
	svc := NewAuthService(&fakeAuth{}, sessions, s)

	require.NoError(t, sessions.Save(ctx, sessionFor("u1")))
	_, err := queue.New(s).Enqueue(ctx, models.EntityNote, models.OpCreate, "u1", models.Note{ID: "n1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, false))
	_, ok := sessions.Current(ctx)
	require.False(t, ok)
	stats, err := queue.New(s).Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pending)

	require.NoError(t, svc.Logout(ctx, true))
	stats, err = queue.New(s).Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Pending)
}

func TestPing(t *testing.T) {
	s := setupStore(t)
	svc := NewAuthService(&fakeAuth{PingErr: errors.New("down")}, session.NewManager(s, logging.Nop()), s)
	require.EqualError(t, svc.Ping(context.Background()), "down")
}
