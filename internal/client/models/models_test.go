package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNote_Deleted(t *testing.T) {
	n := &Note{ID: "n1"}
	require.False(t, n.Deleted())

	now := time.Now()
	n.DeletedAt = &now
	require.True(t, n.Deleted())
}

func TestNoteTag_Key(t *testing.T) {
	nt := &NoteTag{NoteID: "n1", TagID: "t1"}
	require.Equal(t, "n1:t1", nt.Key())
	require.Equal(t, nt.Key(), NoteTagKey("n1", "t1"))
}

func TestSession_Valid(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"empty", Session{}, false},
		{"no token", Session{UserID: "u1"}, false},
		{"no expiry", Session{UserID: "u1", AccessToken: "t"}, true},
		{"not expired", Session{UserID: "u1", AccessToken: "t", ExpiresAt: now.Add(time.Minute)}, true},
		{"expired", Session{UserID: "u1", AccessToken: "t", ExpiresAt: now.Add(-time.Minute)}, false},
		{"expires exactly now", Session{UserID: "u1", AccessToken: "t", ExpiresAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.s.Valid(now))
		})
	}
}
