package grpc

import (
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

func noteFromRPC(n *rpc.Note) *models.Note {
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

func tagFromRPC(t *rpc.Tag) *models.Tag {
	return &models.Tag{ID: t.ID, UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func tagToRPC(t *models.Tag) *rpc.Tag {
	return &rpc.Tag{ID: t.ID, UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func noteTagToRPC(nt models.NoteTag) rpc.NoteTag {
	return rpc.NoteTag{NoteID: nt.NoteID, TagID: nt.TagID, CreatedAt: nt.CreatedAt}
}

func noteTagFromRPC(nt *rpc.NoteTag) *models.NoteTag {
	return &models.NoteTag{NoteID: nt.NoteID, TagID: nt.TagID, CreatedAt: nt.CreatedAt}
}
