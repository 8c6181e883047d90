// Package models defines the entities the client stores locally and
// exchanges with the remote backend.
package models

import (
	"time"
)

// Note is a user note. A non-nil DeletedAt marks a tombstone: the note stays
// in the store but is excluded from active listings.
type Note struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title,omitempty"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	IsFavorite  bool       `json:"is_favorite"`
	IsArchived  bool       `json:"is_archived"`
	SyncVersion int64      `json:"sync_version"`
}

// Deleted reports whether n is a tombstone.
func (n *Note) Deleted() bool {
	return n.DeletedAt != nil
}

// Tag is a user-scoped label; Name is unique per user.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteTag links a note to a tag. It is identified by (NoteID, TagID) and
// never updated.
type NoteTag struct {
	NoteID    string    `json:"note_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the composite identity "note_id:tag_id".
func (nt *NoteTag) Key() string {
	return NoteTagKey(nt.NoteID, nt.TagID)
}

func NoteTagKey(noteID, tagID string) string {
	return noteID + ":" + tagID
}

// NoteWithTags is a pulled note together with its tag associations.
type NoteWithTags struct {
	Note Note
	Tags []NoteTag
}
