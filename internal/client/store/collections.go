package store

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// Index names.
const (
	IdxUserID  = "user_id"
	IdxDeleted = "deleted"
	IdxName    = "name"
	IdxNoteID  = "note_id"
	IdxTagID   = "tag_id"
	IdxStatus  = "status"
)

var Notes = NewCollection("notes",
	func(n *models.Note) string { return n.ID },
	Index[models.Note]{Name: IdxUserID, Value: func(n *models.Note) string { return n.UserID }},
	Index[models.Note]{Name: IdxDeleted, Value: func(n *models.Note) string { return strconv.FormatBool(n.Deleted()) }},
)

var Tags = NewCollection("tags",
	func(t *models.Tag) string { return t.ID },
	Index[models.Tag]{Name: IdxUserID, Value: func(t *models.Tag) string { return t.UserID }},
	Index[models.Tag]{Name: IdxName, Value: func(t *models.Tag) string { return t.Name }},
)

var NoteTags = NewCollection("note_tags",
	func(nt *models.NoteTag) string { return nt.Key() },
	Index[models.NoteTag]{Name: IdxNoteID, Value: func(nt *models.NoteTag) string { return nt.NoteID }},
	Index[models.NoteTag]{Name: IdxTagID, Value: func(nt *models.NoteTag) string { return nt.TagID }},
)

var SyncQueue = NewCollection("sync_queue",
	func(it *models.SyncQueueItem) string { return QueueKey(it.ID) },
	Index[models.SyncQueueItem]{Name: IdxStatus, Value: func(it *models.SyncQueueItem) string { return string(it.Status) }},
)

var SyncMetadata = NewCollection("sync_metadata",
	func(m *models.Metadata) string { return m.Key },
)

// QueueKey zero-pads id so that keys sort like the ids they encode.
func QueueKey(id int64) string {
	return fmt.Sprintf("%019d", id)
}
