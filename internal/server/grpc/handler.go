package grpc

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRegister, err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "user_id", user.ID)
	return &rpc.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	res, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodLogin, err)
	}
	return &rpc.LoginResponse{UserID: res.UserID, AccessToken: res.AccessToken, ExpiresAt: res.ExpiresAt}, nil
}

func (s *GRPCServer) UpsertNote(ctx context.Context, req *rpc.UpsertNoteRequest) (*rpc.NoteResponse, error) {
	if req.Note == nil {
		return nil, status.Error(codes.InvalidArgument, "note is required")
	}
	n, err := s.sync.UpsertNote(ctx, noteFromRPC(req.Note))
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodUpsertNote, err)
	}
	return &rpc.NoteResponse{Note: noteToRPC(n)}, nil
}

func (s *GRPCServer) SoftDeleteNote(ctx context.Context, req *rpc.SoftDeleteNoteRequest) (*rpc.NoteResponse, error) {
	n, err := s.sync.SoftDeleteNote(ctx, req.UserID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodSoftDeleteNote, err)
	}
	return &rpc.NoteResponse{Note: noteToRPC(n)}, nil
}

func (s *GRPCServer) UpsertTag(ctx context.Context, req *rpc.UpsertTagRequest) (*rpc.TagResponse, error) {
	if req.Tag == nil {
		return nil, status.Error(codes.InvalidArgument, "tag is required")
	}
	t, err := s.sync.UpsertTag(ctx, tagFromRPC(req.Tag))
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodUpsertTag, err)
	}
	return &rpc.TagResponse{Tag: tagToRPC(t)}, nil
}

func (s *GRPCServer) DeleteNoteTagsByTag(ctx context.Context, req *rpc.DeleteNoteTagsByTagRequest) (*rpc.Empty, error) {
	if err := s.sync.DeleteNoteTagsByTag(ctx, req.UserID, req.TagID); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodDeleteNoteTagsByTag, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) DeleteTag(ctx context.Context, req *rpc.DeleteTagRequest) (*rpc.Empty, error) {
	if err := s.sync.DeleteTag(ctx, req.UserID, req.TagID); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodDeleteTag, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) UpsertNoteTag(ctx context.Context, req *rpc.UpsertNoteTagRequest) (*rpc.Empty, error) {
	if req.NoteTag == nil {
		return nil, status.Error(codes.InvalidArgument, "note_tag is required")
	}
	if err := s.sync.UpsertNoteTag(ctx, req.UserID, noteTagFromRPC(req.NoteTag)); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodUpsertNoteTag, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) DeleteNoteTag(ctx context.Context, req *rpc.DeleteNoteTagRequest) (*rpc.Empty, error) {
	if err := s.sync.DeleteNoteTag(ctx, req.UserID, req.NoteID, req.TagID); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodDeleteNoteTag, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) PullNotes(ctx context.Context, req *rpc.PullNotesRequest) (*rpc.PullNotesResponse, error) {
	changed, err := s.sync.NotesChangedSince(ctx, req.UserID, req.Since)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodPullNotes, err)
	}

	resp := &rpc.PullNotesResponse{Notes: make([]rpc.NoteWithTags, 0, len(changed))}
	for i := range changed {
		item := rpc.NoteWithTags{Note: *noteToRPC(&changed[i].Note), Tags: make([]rpc.NoteTag, 0, len(changed[i].Tags))}
		for _, nt := range changed[i].Tags {
			item.Tags = append(item.Tags, noteTagToRPC(nt))
		}
		resp.Notes = append(resp.Notes, item)
	}
	return resp, nil
}

func (s *GRPCServer) PullTags(ctx context.Context, req *rpc.PullTagsRequest) (*rpc.PullTagsResponse, error) {
	changed, err := s.sync.TagsChangedSince(ctx, req.UserID, req.Since)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodPullTags, err)
	}

	resp := &rpc.PullTagsResponse{Tags: make([]rpc.Tag, 0, len(changed))}
	for i := range changed {
		resp.Tags = append(resp.Tags, *tagToRPC(&changed[i]))
	}
	return resp, nil
}

func (s *GRPCServer) ExportArchive(ctx context.Context, req *rpc.ExportArchiveRequest) (*rpc.ExportArchiveResponse, error) {
	a, err := s.archives.Export(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodExportArchive, err)
	}

	s.logger.Info(ctx, "Archive exported", "user_id", req.UserID, "key", a.Key, "notes", a.Notes)
	return &rpc.ExportArchiveResponse{Key: a.Key, URL: a.URL, ExpiresAt: a.ExpiresAt, Notes: a.Notes, Tags: a.Tags}, nil
}
