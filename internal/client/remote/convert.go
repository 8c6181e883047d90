package remote

import (
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
)

func noteToRPC(n *models.Note) *rpc.Note {
	return &rpc.Note{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title,
		Content:     n.Content,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		DeletedAt:   n.DeletedAt,
		IsFavorite:  n.IsFavorite,
		IsArchived:  n.IsArchived,
		SyncVersion: n.SyncVersion,
	}
}

func noteFromRPC(n *rpc.Note) *models.Note {
	if n == nil {
		return nil
	}
	return &models.Note{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title,
		Content:     n.Content,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		DeletedAt:   n.DeletedAt,
		IsFavorite:  n.IsFavorite,
		IsArchived:  n.IsArchived,
		SyncVersion: n.SyncVersion,
	}
}

func tagToRPC(t *models.Tag) *rpc.Tag {
	return &rpc.Tag{ID: t.ID, UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func tagFromRPC(t *rpc.Tag) *models.Tag {
	if t == nil {
		return nil
	}
	return &models.Tag{ID: t.ID, UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func noteTagFromRPC(nt rpc.NoteTag) models.NoteTag {
	return models.NoteTag{NoteID: nt.NoteID, TagID: nt.TagID, CreatedAt: nt.CreatedAt}
}
