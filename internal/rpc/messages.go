package rpc

import "time"

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

type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type NoteTag struct {
	NoteID    string    `json:"note_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

type NoteWithTags struct {
	Note Note      `json:"note"`
	Tags []NoteTag `json:"tags"`
}

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UpsertNoteRequest struct {
	Note *Note `json:"note"`
}

type SoftDeleteNoteRequest struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

type NoteResponse struct {
	Note *Note `json:"note"`
}

type UpsertTagRequest struct {
	Tag *Tag `json:"tag"`
}

type TagResponse struct {
	Tag *Tag `json:"tag"`
}

type DeleteNoteTagsByTagRequest struct {
	UserID string `json:"user_id"`
	TagID  string `json:"tag_id"`
}

type DeleteTagRequest struct {
	UserID string `json:"user_id"`
	TagID  string `json:"tag_id"`
}

type UpsertNoteTagRequest struct {
	UserID  string   `json:"user_id"`
	NoteTag *NoteTag `json:"note_tag"`
}

type DeleteNoteTagRequest struct {
	UserID string `json:"user_id"`
	NoteID string `json:"note_id"`
	TagID  string `json:"tag_id"`
}

type PullNotesRequest struct {
	UserID string    `json:"user_id"`
	Since  time.Time `json:"since"`
}

type PullNotesResponse struct {
	Notes []NoteWithTags `json:"notes"`
}

type PullTagsRequest struct {
	UserID string    `json:"user_id"`
	Since  time.Time `json:"since"`
}

type PullTagsResponse struct {
	Tags []Tag `json:"tags"`
}

type ExportArchiveRequest struct {
	UserID string `json:"user_id"`
}

type ExportArchiveResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Notes     int       `json:"notes"`
	Tags      int       `json:"tags"`
}

// UserScoped is implemented by requests that name the user they act for.
// The server rejects a request whose user differs from the token's user.
type UserScoped interface {
	GetUserID() string
	SetUserID(string)
}

func (r *UpsertNoteRequest) GetUserID() string {
	if r.Note == nil {
		return ""
	}
	return r.Note.UserID
}

func (r *UpsertNoteRequest) SetUserID(id string) {
	if r.Note != nil {
		r.Note.UserID = id
	}
}

func (r *UpsertTagRequest) GetUserID() string {
	if r.Tag == nil {
		return ""
	}
	return r.Tag.UserID
}

func (r *UpsertTagRequest) SetUserID(id string) {
	if r.Tag != nil {
		r.Tag.UserID = id
	}
}

func (r *SoftDeleteNoteRequest) GetUserID() string        { return r.UserID }
func (r *SoftDeleteNoteRequest) SetUserID(id string)      { r.UserID = id }
func (r *DeleteNoteTagsByTagRequest) GetUserID() string   { return r.UserID }
func (r *DeleteNoteTagsByTagRequest) SetUserID(id string) { r.UserID = id }
func (r *DeleteTagRequest) GetUserID() string             { return r.UserID }
func (r *DeleteTagRequest) SetUserID(id string)           { r.UserID = id }
func (r *UpsertNoteTagRequest) GetUserID() string         { return r.UserID }
func (r *UpsertNoteTagRequest) SetUserID(id string)       { r.UserID = id }
func (r *DeleteNoteTagRequest) GetUserID() string         { return r.UserID }
func (r *DeleteNoteTagRequest) SetUserID(id string)       { r.UserID = id }
func (r *PullNotesRequest) GetUserID() string             { return r.UserID }
func (r *PullNotesRequest) SetUserID(id string)           { r.UserID = id }
func (r *PullTagsRequest) GetUserID() string              { return r.UserID }
func (r *PullTagsRequest) SetUserID(id string)            { r.UserID = id }
func (r *ExportArchiveRequest) GetUserID() string         { return r.UserID }
func (r *ExportArchiveRequest) SetUserID(id string)       { r.UserID = id }
