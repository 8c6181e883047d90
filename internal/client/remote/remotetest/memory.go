// Package remotetest provides an in-memory remote.Backend with the same
// write semantics as the PostgreSQL server: sync_version bumps, sticky
// tombstones, server-stamped tag created_at, link changes touching the
// note's updated_at, ownership checks and a foreign key from note_tags to
// tags.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// ErrForeignKey mimics a foreign-key violation on tag delete.
var ErrForeignKey = errors.New("tag still referenced by note_tags")

type Memory struct {
	mu       sync.Mutex
	notes    map[string]models.Note
	tags     map[string]models.Tag
	noteTags map[string]models.NoteTag
	calls    []string

	// Now stamps updated_at and tag created_at; defaults to time.Now.
	Now func() time.Time
	// Hook, when set, runs before every call with the method name. A non-nil
	// result is returned as the call's error. It is called without the lock
	// held, so it may block.
	Hook func(method string) error
}

var _ remote.Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		notes:    map[string]models.Note{},
		tags:     map[string]models.Tag{},
		noteTags: map[string]models.NoteTag{},
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Calls returns the method names invoked so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Note returns a copy of the stored note.
func (m *Memory) Note(id string) (models.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	return n, ok
}

func (m *Memory) Tag(id string) (models.Tag, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	return t, ok
}

func (m *Memory) NoteTags() []models.NoteTag {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.NoteTag, 0, len(m.noteTags))
	for _, nt := range m.noteTags {
		out = append(out, nt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (m *Memory) enter(method string) error {
	if m.Hook != nil {
		if err := m.Hook(method); err != nil {
			m.mu.Lock()
			m.calls = append(m.calls, method)
			m.mu.Unlock()
			return err
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, method)
	return nil
}

func (m *Memory) UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	if err := m.enter("UpsertNote"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	now := m.Now()
	cur, ok := m.notes[n.ID]
	if ok && cur.UserID != n.UserID {
		return nil, fmt.Errorf("note %s: %w", n.ID, common.ErrOwnerMismatch)
	}

	next := *n
	next.UpdatedAt = now
	if ok {
		next.CreatedAt = cur.CreatedAt
		if cur.DeletedAt != nil {
			next.DeletedAt = cur.DeletedAt
		}
		next.SyncVersion = cur.SyncVersion + 1
	} else {
		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
		next.SyncVersion = 1
	}
	m.notes[n.ID] = next
	return &next, nil
}

func (m *Memory) SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	if err := m.enter("SoftDeleteNote"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	cur, ok := m.notes[noteID]
	if !ok || cur.UserID != userID {
		return nil, fmt.Errorf("note %s: %w", noteID, common.ErrNotFound)
	}
	now := m.Now()
	if cur.DeletedAt == nil {
		cur.DeletedAt = &now
	}
	cur.UpdatedAt = now
	cur.SyncVersion++
	m.notes[noteID] = cur
	return &cur, nil
}

func (m *Memory) UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if err := m.enter("UpsertTag"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	cur, ok := m.tags[t.ID]
	if ok && cur.UserID != t.UserID {
		return nil, fmt.Errorf("tag %s: %w", t.ID, common.ErrOwnerMismatch)
	}
	for _, other := range m.tags {
		if other.ID != t.ID && other.UserID == t.UserID && other.Name == t.Name {
			return nil, fmt.Errorf("tag %q: %w", t.Name, common.ErrAlreadyExists)
		}
	}
	next := *t
	if ok {
		next.CreatedAt = cur.CreatedAt
	} else {
		next.CreatedAt = m.Now()
	}
	m.tags[t.ID] = next
	return &next, nil
}

func (m *Memory) DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error {
	if err := m.enter("DeleteNoteTagsByTag"); err != nil {
		return err
	}
	defer m.mu.Unlock()

	if tag, ok := m.tags[tagID]; ok && tag.UserID != userID {
		return fmt.Errorf("tag %s: %w", tagID, common.ErrOwnerMismatch)
	}
	for k, nt := range m.noteTags {
		if nt.TagID == tagID {
			delete(m.noteTags, k)
			m.touch(nt.NoteID)
		}
	}
	return nil
}

// touch refreshes a note's updated_at so link changes are pulled with it.
// The caller holds the lock.
func (m *Memory) touch(noteID string) {
	if n, ok := m.notes[noteID]; ok {
		n.UpdatedAt = m.Now()
		m.notes[noteID] = n
	}
}

func (m *Memory) DeleteTag(ctx context.Context, userID, tagID string) error {
	if err := m.enter("DeleteTag"); err != nil {
		return err
	}
	defer m.mu.Unlock()

	tag, ok := m.tags[tagID]
	if !ok {
		return nil
	}
	if tag.UserID != userID {
		return fmt.Errorf("tag %s: %w", tagID, common.ErrOwnerMismatch)
	}
	for _, nt := range m.noteTags {
		if nt.TagID == tagID {
			return fmt.Errorf("delete tag %s: %w", tagID, ErrForeignKey)
		}
	}
	delete(m.tags, tagID)
	return nil
}

func (m *Memory) UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error {
	if err := m.enter("UpsertNoteTag"); err != nil {
		return err
	}
	defer m.mu.Unlock()

	note, ok := m.notes[nt.NoteID]
	if !ok {
		return fmt.Errorf("note %s: %w", nt.NoteID, common.ErrNotFound)
	}
	tag, ok := m.tags[nt.TagID]
	if !ok {
		return fmt.Errorf("tag %s: %w", nt.TagID, common.ErrNotFound)
	}
	if note.UserID != userID || tag.UserID != userID {
		return fmt.Errorf("note_tag %s: %w", nt.Key(), common.ErrOwnerMismatch)
	}
	if _, exists := m.noteTags[nt.Key()]; exists {
		return nil
	}
	next := *nt
	if next.CreatedAt.IsZero() {
		next.CreatedAt = m.Now()
	}
	m.noteTags[nt.Key()] = next
	m.touch(nt.NoteID)
	return nil
}

func (m *Memory) DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error {
	if err := m.enter("DeleteNoteTag"); err != nil {
		return err
	}
	defer m.mu.Unlock()

	if note, ok := m.notes[noteID]; ok && note.UserID != userID {
		return fmt.Errorf("note %s: %w", noteID, common.ErrOwnerMismatch)
	}
	key := models.NoteTagKey(noteID, tagID)
	if _, ok := m.noteTags[key]; ok {
		delete(m.noteTags, key)
		m.touch(noteID)
	}
	return nil
}

func (m *Memory) NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error) {
	if err := m.enter("NotesChangedSince"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	var out []models.NoteWithTags
	for _, n := range m.notes {
		if n.UserID != userID || !n.UpdatedAt.After(since) {
			continue
		}
		nw := models.NoteWithTags{Note: n}
		for _, nt := range m.noteTags {
			if nt.NoteID == n.ID {
				nw.Tags = append(nw.Tags, nt)
			}
		}
		sort.Slice(nw.Tags, func(i, j int) bool { return nw.Tags[i].TagID < nw.Tags[j].TagID })
		out = append(out, nw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Note.UpdatedAt.Before(out[j].Note.UpdatedAt) })
	return out, nil
}

func (m *Memory) TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	if err := m.enter("TagsChangedSince"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	var out []models.Tag
	for _, t := range m.tags {
		if t.UserID == userID && t.CreatedAt.After(since) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
