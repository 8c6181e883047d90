// Package syncer reconciles the local store with the remote backend.
//
// A run pushes pending queue items in FIFO order, pulls everything that
// changed remotely since the last successful run, merges it locally
// (remote wins) and advances the checkpoint. Only one run executes at a
// time; overlapping triggers are dropped.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/queue"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/client/store"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

var (
	ErrUnknownMutation = errors.New("unknown mutation")
	ErrNoSession       = errors.New("no active session")
)

const checkpointKey = "last_sync"

// pullOverlap widens each pull window backwards. The checkpoint is read from
// the local clock while the server stamps updated_at and created_at with its
// own, so rows stamped just before a skewed checkpoint are fetched again.
// Re-merging them is idempotent.
const pullOverlap = 2 * time.Minute

// Listener receives every published status, in publication order.
type Listener func(models.SyncStatus)

type subscription struct {
	id int
	fn Listener
}

type Engine struct {
	backend  remote.Backend
	store    *store.Store
	queue    *queue.Queue
	sessions session.Provider
	logger   logging.Logger
	now      func() time.Time
	handlers map[mutationKey]pushHandler

	running atomic.Bool
	online  atomic.Bool

	mu        sync.Mutex
	status    models.SyncStatus
	listeners []subscription
	nextID    int
}

func New(backend remote.Backend, s *store.Store, q *queue.Queue, sessions session.Provider, l logging.Logger) *Engine {
	e := &Engine{
		backend:  backend,
		store:    s,
		queue:    q,
		sessions: sessions,
		logger:   l.With("module", "syncer"),
		now:      time.Now,
		handlers: defaultHandlers(),
		status:   models.StatusOffline,
	}
	e.online.Store(true)
	return e
}

// Subscribe registers fn and returns a function that removes it.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, sub := range e.listeners {
				if sub.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (e *Engine) publish(st models.SyncStatus) {
	e.mu.Lock()
	e.status = st
	subs := append([]subscription(nil), e.listeners...)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.fn(st)
	}
}

// Status returns the last published status.
func (e *Engine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// SetOnline records host connectivity. Going offline publishes StatusOffline.
func (e *Engine) SetOnline(online bool) {
	prev := e.online.Swap(online)
	if !online && prev {
		e.publish(models.StatusOffline)
	}
}

func (e *Engine) Online() bool {
	return e.online.Load()
}

// Run performs one sync run and reports whether it completed successfully.
// It returns false immediately, without side effects, if a run is already
// in progress.
func (e *Engine) Run(ctx context.Context) (ok bool) {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Debug(ctx, "sync already running, trigger dropped")
		return false
	}
	defer e.running.Store(false)

	defer func() {
		if p := recover(); p != nil {
			e.logger.Error(ctx, "sync run panicked", "panic", p)
			e.publish(models.StatusConflict)
			ok = false
		}
	}()

	sess, active := e.sessions.Current(ctx)
	if !active {
		e.logger.Info(ctx, "no active session, sync skipped")
		e.publish(models.StatusOffline)
		return false
	}
	if !e.store.IsAvailable() {
		e.logger.Debug(ctx, "local store unavailable, nothing to sync")
		return false
	}

	start := e.now().UTC()
	e.publish(models.StatusSyncing)

	if err := e.run(ctx, sess, start); err != nil {
		e.logger.Error(ctx, "sync run failed", "error", err)
		e.publish(models.StatusConflict)
		return false
	}

	e.logger.Info(ctx, "sync run finished", "checkpoint", start)
	e.publish(models.StatusSynced)
	return true
}

func (e *Engine) run(ctx context.Context, sess models.Session, start time.Time) error {
	if err := e.push(ctx, sess); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	if err := e.pull(ctx, sess); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if err := e.advanceCheckpoint(ctx, start); err != nil {
		return err
	}
	n, err := e.queue.PurgeCompleted(ctx)
	if err != nil {
		return err
	}
	e.logger.Debug(ctx, "purged completed queue items", "count", n)
	return nil
}

// push applies pending items in order. An item failure is recorded on the
// item and does not stop the run; queue errors do.
func (e *Engine) push(ctx context.Context, sess models.Session) error {
	items, err := e.queue.PendingItems(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		it := &items[i]
		if err := e.apply(ctx, sess, it); err != nil {
			e.logger.Warn(ctx, "queue item failed",
				"id", it.ID, "entity", it.EntityType, "op", it.Operation, "error", err)
			if err := e.queue.MarkStatus(ctx, it.ID, models.QueueFailed, err.Error()); err != nil {
				return err
			}
			continue
		}
		if err := e.queue.MarkStatus(ctx, it.ID, models.QueueCompleted, ""); err != nil {
			return err
		}
	}
	return nil
}

// Apply sends one mutation straight to the remote. It is used when the
// local store is unavailable and nothing can be queued.
func (e *Engine) Apply(ctx context.Context, item *models.SyncQueueItem) error {
	sess, ok := e.sessions.Current(ctx)
	if !ok {
		return ErrNoSession
	}
	return e.apply(ctx, sess, item)
}

func (e *Engine) apply(ctx context.Context, sess models.Session, it *models.SyncQueueItem) error {
	h, ok := e.handlers[mutationKey{it.EntityType, it.Operation}]
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownMutation, it.EntityType, it.Operation)
	}
	if owner := declaredOwner(it); owner != "" && owner != sess.UserID {
		return fmt.Errorf("%w: item declares user %s", common.ErrOwnerMismatch, owner)
	}
	return h(ctx, handlerEnv{backend: e.backend, store: e.store, userID: sess.UserID}, it.Data)
}

// declaredOwner is the item's user, falling back to the snapshot's user_id.
func declaredOwner(it *models.SyncQueueItem) string {
	if it.UserID != "" {
		return it.UserID
	}
	var snap struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(it.Data, &snap); err != nil {
		return ""
	}
	return snap.UserID
}

func (e *Engine) pull(ctx context.Context, sess models.Session) error {
	since, err := e.LastCheckpoint(ctx)
	if err != nil {
		return err
	}
	if !since.IsZero() {
		since = since.Add(-pullOverlap)
	}

	notes, err := e.backend.NotesChangedSince(ctx, sess.UserID, since)
	if err != nil {
		return fmt.Errorf("fetch notes: %w", err)
	}
	tags, err := e.backend.TagsChangedSince(ctx, sess.UserID, since)
	if err != nil {
		return fmt.Errorf("fetch tags: %w", err)
	}
	unpushed, err := e.unpushedLinks(ctx)
	if err != nil {
		return err
	}

	err = e.store.Tx(ctx, func(tx *store.Store) error {
		for i := range tags {
			if _, err := store.Tags.Put(ctx, tx, &tags[i]); err != nil {
				return err
			}
		}
		for i := range notes {
			if _, err := store.Notes.Put(ctx, tx, &notes[i].Note); err != nil {
				return err
			}
			if err := mergeLinks(ctx, tx, notes[i], unpushed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	e.logger.Debug(ctx, "pulled remote changes", "notes", len(notes), "tags", len(tags), "since", since)
	return nil
}

// LastCheckpoint returns the start time of the last successful run, or the
// zero time if there has been none.
func (e *Engine) LastCheckpoint(ctx context.Context) (time.Time, error) {
	meta, err := store.SyncMetadata.GetByID(ctx, e.store, checkpointKey)
	if errors.Is(err, common.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var t time.Time
	if err := json.Unmarshal(meta.Value, &t); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return t, nil
}

// mergeLinks makes the local links of a pulled note match the remote set.
// Links whose creation has not reached the server yet are kept.
func mergeLinks(ctx context.Context, tx *store.Store, nw models.NoteWithTags, unpushed map[string]bool) error {
	want := make(map[string]bool, len(nw.Tags))
	for j := range nw.Tags {
		want[nw.Tags[j].Key()] = true
		if _, err := store.NoteTags.Put(ctx, tx, &nw.Tags[j]); err != nil {
			return err
		}
	}
	local, err := store.NoteTags.FindBy(ctx, tx, store.IdxNoteID, nw.Note.ID)
	if err != nil {
		return err
	}
	for _, nt := range local {
		key := nt.Key()
		if want[key] || unpushed[key] {
			continue
		}
		if err := store.NoteTags.Delete(ctx, tx, key); err != nil {
			return err
		}
	}
	return nil
}

// unpushedLinks returns the keys of links with a pending or failed create.
func (e *Engine) unpushedLinks(ctx context.Context) (map[string]bool, error) {
	pending, err := e.queue.PendingItems(ctx)
	if err != nil {
		return nil, err
	}
	failed, err := e.queue.FailedItems(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for _, it := range append(pending, failed...) {
		if it.EntityType != models.EntityNoteTag || it.Operation != models.OpCreate {
			continue
		}
		var nt models.NoteTag
		if err := json.Unmarshal(it.Data, &nt); err != nil {
			continue
		}
		out[nt.Key()] = true
	}
	return out, nil
}

func (e *Engine) advanceCheckpoint(ctx context.Context, start time.Time) error {
	prev, err := e.LastCheckpoint(ctx)
	if err != nil {
		return err
	}
	if !start.After(prev) {
		return nil
	}
	raw, err := json.Marshal(start)
	if err != nil {
		return err
	}
	if _, err := store.SyncMetadata.Put(ctx, e.store, &models.Metadata{Key: checkpointKey, Value: raw}); err != nil {
		return fmt.Errorf("failed to store checkpoint: %w", err)
	}
	return nil
}
