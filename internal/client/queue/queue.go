// Package queue is the durable, FIFO log of local mutations that still have
// to be pushed to the remote backend.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
)

var (
	// ErrAlreadyFinalized is returned when changing the status of an item
	// that has already left the pending state.
	ErrAlreadyFinalized = errors.New("queue item already finalized")
	ErrNotFailed        = errors.New("queue item is not failed")
	ErrInvalidStatus    = errors.New("invalid target status")
)

const sequenceName = "sync_queue"

type Queue struct {
	s   *store.Store
	now func() time.Time
}

func New(s *store.Store) *Queue {
	return &Queue{s: s, now: time.Now}
}

// With returns a queue bound to tx, so an enqueue commits together with the
// entity write made in the same transaction.
func (q *Queue) With(tx *store.Store) *Queue {
	return &Queue{s: tx, now: q.now}
}

// Stats holds item counts per status.
type Stats struct {
	Pending   int
	Completed int
	Failed    int
}

// Enqueue appends a pending mutation. data is stored as a JSON snapshot.
func (q *Queue) Enqueue(ctx context.Context, entity models.EntityType, op models.Operation, userID string, data any) (*models.SyncQueueItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s snapshot: %w", entity, op, err)
	}

	var item *models.SyncQueueItem
	err = q.s.Tx(ctx, func(tx *store.Store) error {
		id, err := tx.NextSequence(ctx, sequenceName)
		if err != nil {
			return err
		}
		item = &models.SyncQueueItem{
			ID:         id,
			EntityType: entity,
			Operation:  op,
			UserID:     userID,
			Data:       raw,
			Timestamp:  q.now().UTC(),
			Status:     models.QueuePending,
		}
		_, err = store.SyncQueue.Put(ctx, tx, item)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s %s: %w", entity, op, err)
	}
	return item, nil
}

// Get returns the item with the given id.
func (q *Queue) Get(ctx context.Context, id int64) (*models.SyncQueueItem, error) {
	return store.SyncQueue.GetByID(ctx, q.s, store.QueueKey(id))
}

// PendingItems returns pending items in ascending id order.
func (q *Queue) PendingItems(ctx context.Context) ([]models.SyncQueueItem, error) {
	return q.byStatus(ctx, models.QueuePending)
}

// FailedItems returns failed items in ascending id order.
func (q *Queue) FailedItems(ctx context.Context) ([]models.SyncQueueItem, error) {
	return q.byStatus(ctx, models.QueueFailed)
}

func (q *Queue) byStatus(ctx context.Context, st models.QueueStatus) ([]models.SyncQueueItem, error) {
	items, err := store.SyncQueue.FindBy(ctx, q.s, store.IdxStatus, string(st))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s items: %w", st, err)
	}
	slices.SortFunc(items, func(a, b models.SyncQueueItem) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return items, nil
}

// MarkStatus moves a pending item to completed or failed. errText is kept
// only for failed items.
func (q *Queue) MarkStatus(ctx context.Context, id int64, status models.QueueStatus, errText string) error {
	if status != models.QueueCompleted && status != models.QueueFailed {
		return fmt.Errorf("mark item %d %q: %w", id, status, ErrInvalidStatus)
	}
	return q.s.Tx(ctx, func(tx *store.Store) error {
		item, err := store.SyncQueue.GetByID(ctx, tx, store.QueueKey(id))
		if err != nil {
			return err
		}
		if item.Status != models.QueuePending {
			return fmt.Errorf("mark item %d %s: %w", id, status, ErrAlreadyFinalized)
		}
		item.Status = status
		item.Error = ""
		if status == models.QueueFailed {
			item.Error = errText
		}
		_, err = store.SyncQueue.Put(ctx, tx, item)
		return err
	})
}

// Retry puts a failed item back into the pending state. Failed items are
// never retried automatically.
func (q *Queue) Retry(ctx context.Context, id int64) error {
	return q.s.Tx(ctx, func(tx *store.Store) error {
		item, err := store.SyncQueue.GetByID(ctx, tx, store.QueueKey(id))
		if err != nil {
			return err
		}
		if item.Status != models.QueueFailed {
			return fmt.Errorf("retry item %d (%s): %w", id, item.Status, ErrNotFailed)
		}
		item.Status = models.QueuePending
		item.Error = ""
		_, err = store.SyncQueue.Put(ctx, tx, item)
		return err
	})
}

// PurgeCompleted deletes completed items and returns how many were removed.
func (q *Queue) PurgeCompleted(ctx context.Context) (int, error) {
	var n int
	err := q.s.Tx(ctx, func(tx *store.Store) error {
		done, err := store.SyncQueue.FindBy(ctx, tx, store.IdxStatus, string(models.QueueCompleted))
		if err != nil {
			return err
		}
		for i := range done {
			if err := store.SyncQueue.Delete(ctx, tx, store.QueueKey(done[i].ID)); err != nil {
				return err
			}
		}
		n = len(done)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge completed items: %w", err)
	}
	return n, nil
}

func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, c := range []struct {
		status models.QueueStatus
		dst    *int
	}{
		{models.QueuePending, &st.Pending},
		{models.QueueCompleted, &st.Completed},
		{models.QueueFailed, &st.Failed},
	} {
		n, err := store.SyncQueue.CountBy(ctx, q.s, store.IdxStatus, string(c.status))
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count %s items: %w", c.status, err)
		}
		*c.dst = n
	}
	return st, nil
}
