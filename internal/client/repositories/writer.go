// Package repositories holds what the entity repositories share: how a
// local write and its queue entry are committed together, and how the same
// mutation is sent straight to the remote when there is no local store.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/queue"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/google/uuid"
)

// Applier applies a single mutation to the remote immediately.
// *syncer.Engine implements it.
type Applier interface {
	Apply(ctx context.Context, item *models.SyncQueueItem) error
}

// Deps are the collaborators every repository needs.
type Deps struct {
	Store    *store.Store
	Queue    *queue.Queue
	Remote   remote.Backend
	Applier  Applier
	Sessions session.Provider
	Now      func() time.Time
	NewID    func() string
}

// WithDefaults fills Now and NewID when unset.
func (d Deps) WithDefaults() Deps {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.NewID == nil {
		d.NewID = func() string { return uuid.NewString() }
	}
	return d
}

// OnlineOnly reports whether the repositories run online-only.
func (d Deps) OnlineOnly() bool {
	return !d.Store.IsAvailable()
}

// UserID returns the session user or common.ErrUnauthorized.
func (d Deps) UserID(ctx context.Context) (string, error) {
	sess, ok := d.Sessions.Current(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no active session", common.ErrUnauthorized)
	}
	return sess.UserID, nil
}

// Write commits local and the matching queue entry in one transaction. When
// the store is unavailable the mutation is applied to the remote instead and
// local is not called.
func (d Deps) Write(ctx context.Context, entity models.EntityType, op models.Operation, userID string, snapshot any, local func(tx *store.Store) error) error {
	if d.OnlineOnly() {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode %s snapshot: %w", entity, err)
		}
		item := &models.SyncQueueItem{
			EntityType: entity,
			Operation:  op,
			UserID:     userID,
			Data:       raw,
			Timestamp:  d.Now(),
			Status:     models.QueuePending,
		}
		if err := d.Applier.Apply(ctx, item); err != nil {
			return fmt.Errorf("online-only %s %s: %w", entity, op, err)
		}
		return nil
	}

	return d.Store.Tx(ctx, func(tx *store.Store) error {
		if err := local(tx); err != nil {
			return err
		}
		_, err := d.Queue.With(tx).Enqueue(ctx, entity, op, userID, snapshot)
		return err
	})
}
