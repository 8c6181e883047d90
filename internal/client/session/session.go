// Package session keeps track of the signed-in user. The session is stored in
// the sync_metadata collection so it survives restarts; when the local store
// is unavailable it lives in memory only.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Provider answers whether there is an active session and for which user.
type Provider interface {
	Current(ctx context.Context) (models.Session, bool)
}

const metadataKey = "session"

type Manager struct {
	s      *store.Store
	logger logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	cached *models.Session
}

func NewManager(s *store.Store, l logging.Logger) *Manager {
	return &Manager{s: s, logger: l.With("module", "session"), now: time.Now}
}

// Current returns the session and whether it is usable right now.
func (m *Manager) Current(ctx context.Context) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached == nil && m.s.IsAvailable() {
		meta, err := store.SyncMetadata.GetByID(ctx, m.s, metadataKey)
		switch {
		case err == nil:
			var sess models.Session
			if err := json.Unmarshal(meta.Value, &sess); err != nil {
				m.logger.Warn(ctx, "stored session is corrupt", "error", err)
				return models.Session{}, false
			}
			m.cached = &sess
		case !errors.Is(err, common.ErrNotFound):
			m.logger.Warn(ctx, "failed to load session", "error", err)
		}
	}
	if m.cached == nil {
		return models.Session{}, false
	}
	return *m.cached, m.cached.Valid(m.now())
}

// Save makes sess the active session.
func (m *Manager) Save(ctx context.Context, sess models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cached = &sess
	if !m.s.IsAvailable() {
		return nil
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if _, err := store.SyncMetadata.Put(ctx, m.s, &models.Metadata{Key: metadataKey, Value: raw}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Clear signs the user out.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cached = nil
	if !m.s.IsAvailable() {
		return nil
	}
	if err := store.SyncMetadata.Delete(ctx, m.s, metadataKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string
}

// FromToken builds a session from an access token issued by the server.
// The signature is not checked here (the client does not hold the key); the
// server verifies it on every call.
func FromToken(token string) (models.Session, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return models.Session{}, fmt.Errorf("%w: no user id", common.ErrInvalidToken)
	}

	sess := models.Session{UserID: claims.UserID, AccessToken: token}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return sess, nil
}

// Static is a Provider with a fixed answer.
type Static struct {
	Session models.Session
	Active  bool
}

func (s Static) Current(context.Context) (models.Session, bool) {
	return s.Session, s.Active
}
