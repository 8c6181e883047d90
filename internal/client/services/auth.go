// Package services contains application services for the notekeeper client.
// This file defines the authentication service: register, login, logout,
// liveness probe, and housekeeping of the local data that belongs to the
// signed-in user.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/queue"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
)

// ErrPendingChanges is returned when switching users would discard mutations
// of the previous user that were never pushed.
var ErrPendingChanges = errors.New("local changes of another user are not synced yet")

// Authenticator is the part of the remote client used for sign-in.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (models.Session, error)
	Ping(ctx context.Context) error
}

// SessionStore keeps the active session.
type SessionStore interface {
	Current(ctx context.Context) (models.Session, bool)
	Save(ctx context.Context, sess models.Session) error
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate against the server and persist the session. When
//     another user was signed in before, their local data is wiped first.
//   - Logout: forget the session; with discard the local data is wiped too.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) (string, error)
	Login(ctx context.Context, username string, password []byte) (models.Session, error)
	Logout(ctx context.Context, discard bool) error
	Ping(ctx context.Context) error
}

type authService struct {
	remote   Authenticator
	sessions SessionStore
	store    *store.Store
}

func NewAuthService(remote Authenticator, sessions SessionStore, s *store.Store) AuthService {
	return &authService{remote: remote, sessions: sessions, store: s}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) (string, error) {
	userID, err := a.remote.Register(ctx, username, string(password))
	if err != nil {
		return "", fmt.Errorf("register error: %w", err)
	}
	return userID, nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (models.Session, error) {
	sess, err := a.remote.Login(ctx, username, string(password))
	if err != nil {
		return models.Session{}, fmt.Errorf("login error: %w", err)
	}

	if prev, _ := a.sessions.Current(ctx); prev.UserID != "" && prev.UserID != sess.UserID {
		if err := a.clearLocalData(ctx, false); err != nil {
			return models.Session{}, err
		}
	}

	if err := a.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("session saving error: %w", err)
	}
	return sess, nil
}

func (a *authService) Logout(ctx context.Context, discard bool) error {
	if discard {
		if err := a.clearLocalData(ctx, true); err != nil {
			return err
		}
	}
	return a.sessions.Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.remote.Ping(ctx)
}

// clearLocalData wipes notes, tags, links, the queue and sync metadata in one
// transaction. Unless force is set it refuses while pushes are outstanding.
func (a *authService) clearLocalData(ctx context.Context, force bool) error {
	if !a.store.IsAvailable() {
		return nil
	}
	if !force {
		stats, err := queue.New(a.store).Stats(ctx)
		if err != nil {
			return err
		}
		if stats.Pending > 0 || stats.Failed > 0 {
			return ErrPendingChanges
		}
	}

	return a.store.Tx(ctx, func(tx *store.Store) error {
		for _, clear := range []func(context.Context, *store.Store) error{
			store.NoteTags.Clear,
			store.Notes.Clear,
			store.Tags.Clear,
			store.SyncQueue.Clear,
			store.SyncMetadata.Clear,
		} {
			if err := clear(ctx, tx); err != nil {
				return fmt.Errorf("failed to clear local data: %w", err)
			}
		}
		return nil
	})
}
