package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// ChangeFeed is the read side of SyncService used by exports.
type ChangeFeed interface {
	NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error)
	TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error)
}

type archiveNote struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsFavorite bool      `json:"is_favorite"`
	IsArchived bool      `json:"is_archived"`
	Tags       []string  `json:"tags"`
}

type archiveTag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type archiveDocument struct {
	UserID     string        `json:"user_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Notes      []archiveNote `json:"notes"`
	Tags       []archiveTag  `json:"tags"`
}

// ArchiveService writes a JSON snapshot of a user's active notes and tags to
// object storage and hands out a time-limited download link.
type ArchiveService struct {
	feed         ChangeFeed
	storage      ObjectStorage
	linkValidity time.Duration
	now          func() time.Time
}

func NewArchiveService(feed ChangeFeed, storage ObjectStorage, linkValidity time.Duration) *ArchiveService {
	return &ArchiveService{feed: feed, storage: storage, linkValidity: linkValidity, now: time.Now}
}

// ArchiveKey is the object key of an export taken at t.
func ArchiveKey(userID string, t time.Time) string {
	return fmt.Sprintf("archives/%s/%s.json", userID, t.UTC().Format("20060102T150405Z"))
}

func (s *ArchiveService) Export(ctx context.Context, userID string) (*models.Archive, error) {
	now := s.now()

	notes, err := s.feed.NotesChangedSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	tags, err := s.feed.TagsChangedSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	doc := buildArchive(userID, now, notes, tags)
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}

	key := ArchiveKey(userID, now)
	if err := s.storage.Put(ctx, key, body, "application/json"); err != nil {
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, key, s.linkValidity)
	if err != nil {
		return nil, err
	}

	return &models.Archive{
		Key:       key,
		URL:       url,
		ExpiresAt: now.Add(s.linkValidity),
		Notes:     len(doc.Notes),
		Tags:      len(doc.Tags),
	}, nil
}

// buildArchive keeps active notes only and resolves tag ids to names.
func buildArchive(userID string, now time.Time, notes []models.NoteWithTags, tags []models.Tag) archiveDocument {
	names := make(map[string]string, len(tags))
	doc := archiveDocument{
		UserID:     userID,
		ExportedAt: now.UTC(),
		Notes:      []archiveNote{},
		Tags:       make([]archiveTag, 0, len(tags)),
	}
	for _, t := range tags {
		names[t.ID] = t.Name
		doc.Tags = append(doc.Tags, archiveTag{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
	}

	for _, nw := range notes {
		n := nw.Note
		if n.DeletedAt != nil {
			continue
		}
		an := archiveNote{
			ID:         n.ID,
			Title:      n.Title,
			Content:    n.Content,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
			IsFavorite: n.IsFavorite,
			IsArchived: n.IsArchived,
			Tags:       []string{},
		}
		for _, l := range nw.Tags {
			if name, ok := names[l.TagID]; ok {
				an.Tags = append(an.Tags, name)
			}
		}
		sort.Strings(an.Tags)
		doc.Notes = append(doc.Notes, an)
	}
	return doc
}
