package models

import "time"

// Note is a stored note. DeletedAt, once set, is never cleared.
type Note struct {
	ID          string
	UserID      string
	Title       string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	IsFavorite  bool
	IsArchived  bool
	SyncVersion int64
}

type Tag struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

type NoteTag struct {
	NoteID    string
	TagID     string
	CreatedAt time.Time
}

// NoteWithTags is a changed note together with all of its tag links.
type NoteWithTags struct {
	Note Note
	Tags []NoteTag
}

// Archive describes an exported snapshot stored in object storage.
type Archive struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Notes     int
	Tags      int
}
