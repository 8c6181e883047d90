package models

import (
	"encoding/json"
	"time"
)

type EntityType string

const (
	EntityNote    EntityType = "note"
	EntityTag     EntityType = "tag"
	EntityNoteTag EntityType = "note_tag"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type QueueStatus string

const (
	QueuePending   QueueStatus = "pending"
	QueueCompleted QueueStatus = "completed"
	QueueFailed    QueueStatus = "failed"
)

// SyncQueueItem is one recorded local mutation awaiting push.
// UserID is the declared owner; it may be empty.
type SyncQueueItem struct {
	ID         int64           `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	Operation  Operation       `json:"operation"`
	UserID     string          `json:"user_id,omitempty"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
	Status     QueueStatus     `json:"status"`
	Error      string          `json:"error,omitempty"`
}

// SyncStatus is what observers of the sync engine see.
type SyncStatus string

const (
	StatusOffline  SyncStatus = "offline"
	StatusSyncing  SyncStatus = "syncing"
	StatusSynced   SyncStatus = "synced"
	StatusConflict SyncStatus = "conflict"
)

// Session identifies the signed-in user.
type Session struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether s names a user and has not expired at now.
func (s Session) Valid(now time.Time) bool {
	if s.UserID == "" || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Metadata is a key/value row of the sync_metadata collection.
type Metadata struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
