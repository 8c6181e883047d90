package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GRPCClient implements Backend over the notekeeper.v1.Backend service.
// The access token of the current session is attached to every call.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.BackendClient
	sessions    session.Provider
	timeout     time.Duration
}

var _ Backend = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.sessions != nil && !rpc.IsPublic(method) {
		if sess, ok := s.sessions.Current(ctx); ok {
			ctx = withAccessToken(ctx, sess.AccessToken)
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. timeout bounds each call
// (zero means no extra bound). Extra dial options are appended, e.g. a
// custom dialer in tests.
func NewGRPCClient(endpointURL string, sessions session.Provider, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, sessions: sessions, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewBackendClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrOwnerMismatch, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// Ping succeeds when the server answers with status OK.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) (string, error) {
	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

// Login exchanges credentials for a session. It does not store it.
func (s *GRPCClient) Login(ctx context.Context, username, password string) (models.Session, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return models.Session{}, s.mapError(err)
	}
	return models.Session{
		UserID:      resp.UserID,
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

func (s *GRPCClient) UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	resp, err := s.client.UpsertNote(ctx, &rpc.UpsertNoteRequest{Note: noteToRPC(n)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return noteFromRPC(resp.Note), nil
}

func (s *GRPCClient) SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	resp, err := s.client.SoftDeleteNote(ctx, &rpc.SoftDeleteNoteRequest{UserID: userID, ID: noteID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return noteFromRPC(resp.Note), nil
}

func (s *GRPCClient) UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	resp, err := s.client.UpsertTag(ctx, &rpc.UpsertTagRequest{Tag: tagToRPC(t)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return tagFromRPC(resp.Tag), nil
}

func (s *GRPCClient) DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error {
	_, err := s.client.DeleteNoteTagsByTag(ctx, &rpc.DeleteNoteTagsByTagRequest{UserID: userID, TagID: tagID})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteTag(ctx context.Context, userID, tagID string) error {
	_, err := s.client.DeleteTag(ctx, &rpc.DeleteTagRequest{UserID: userID, TagID: tagID})
	return s.mapError(err)
}

func (s *GRPCClient) UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error {
	_, err := s.client.UpsertNoteTag(ctx, &rpc.UpsertNoteTagRequest{
		UserID:  userID,
		NoteTag: &rpc.NoteTag{NoteID: nt.NoteID, TagID: nt.TagID, CreatedAt: nt.CreatedAt},
	})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error {
	_, err := s.client.DeleteNoteTag(ctx, &rpc.DeleteNoteTagRequest{UserID: userID, NoteID: noteID, TagID: tagID})
	return s.mapError(err)
}

func (s *GRPCClient) NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error) {
	resp, err := s.client.PullNotes(ctx, &rpc.PullNotesRequest{UserID: userID, Since: since})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.NoteWithTags, 0, len(resp.Notes))
	for i := range resp.Notes {
		nw := models.NoteWithTags{Note: *noteFromRPC(&resp.Notes[i].Note)}
		for _, nt := range resp.Notes[i].Tags {
			nw.Tags = append(nw.Tags, noteTagFromRPC(nt))
		}
		out = append(out, nw)
	}
	return out, nil
}

func (s *GRPCClient) TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error) {
	resp, err := s.client.PullTags(ctx, &rpc.PullTagsRequest{UserID: userID, Since: since})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Tag, 0, len(resp.Tags))
	for i := range resp.Tags {
		out = append(out, *tagFromRPC(&resp.Tags[i]))
	}
	return out, nil
}

// ExportArchive asks the server to snapshot the user's notes into object
// storage and returns a time-limited download link.
func (s *GRPCClient) ExportArchive(ctx context.Context, userID string) (*Archive, error) {
	resp, err := s.client.ExportArchive(ctx, &rpc.ExportArchiveRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Archive{
		Key:       resp.Key,
		URL:       resp.URL,
		ExpiresAt: resp.ExpiresAt,
		Notes:     resp.Notes,
		Tags:      resp.Tags,
	}, nil
}
