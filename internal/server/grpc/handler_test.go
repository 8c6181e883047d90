package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startBufServer(t *testing.T, s *GRPCServer) rpc.BackendClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return rpc.NewBackendClient(conn)
}

func authed(t *testing.T, userID string) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tokenFor(t, userID, time.Hour))
}

func TestBackend_PublicMethods(t *testing.T) {
	client := startBufServer(t, newTestServer())
	ctx := context.Background()

	pong, err := client.Ping(ctx, &rpc.PingRequest{})
	require.NoError(t, err)
	require.Equal(t, "OK", pong.Status)

	reg, err := client.Register(ctx, &rpc.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "id-alice", reg.UserID)

	_, err = client.Register(ctx, &rpc.RegisterRequest{Username: "taken", Password: "pw"})
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	login, err := client.Login(ctx, &rpc.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "id-alice", login.UserID)
	require.Equal(t, "tok", login.AccessToken)

	_, err = client.Login(ctx, &rpc.LoginRequest{Username: "alice", Password: "nope"})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestBackend_ProtectedMethodsNeedToken(t *testing.T) {
	client := startBufServer(t, newTestServer())

	_, err := client.PullTags(context.Background(), &rpc.PullTagsRequest{UserID: "u1"})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestBackend_PushAndPull(t *testing.T) {
	s := newTestServer()
	fs := s.sync.(*fakeSync)
	client := startBufServer(t, s)
	ctx := authed(t, "u1")

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resp, err := client.UpsertNote(ctx, &rpc.UpsertNoteRequest{Note: &rpc.Note{ID: "n1", UserID: "u1", Content: "hi", CreatedAt: created}})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Note.SyncVersion)

	_, err = client.UpsertTag(ctx, &rpc.UpsertTagRequest{Tag: &rpc.Tag{ID: "t1", Name: "work"}})
	require.NoError(t, err)

	_, err = client.UpsertNoteTag(ctx, &rpc.UpsertNoteTagRequest{NoteTag: &rpc.NoteTag{NoteID: "n1", TagID: "t1"}})
	require.NoError(t, err)

	del, err := client.SoftDeleteNote(ctx, &rpc.SoftDeleteNoteRequest{ID: "n1"})
	require.NoError(t, err)
	require.NotNil(t, del.Note.DeletedAt)
	require.Equal(t, int64(2), del.Note.SyncVersion)

	pulled, err := client.PullNotes(ctx, &rpc.PullNotesRequest{Since: time.Time{}})
	require.NoError(t, err)
	require.Len(t, pulled.Notes, 1)
	require.NotNil(t, pulled.Notes[0].Note.DeletedAt)
	require.Len(t, pulled.Notes[0].Tags, 1)
	require.Equal(t, "t1", pulled.Notes[0].Tags[0].TagID)

	tags, err := client.PullTags(ctx, &rpc.PullTagsRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, tags.Tags, 1)
	require.Equal(t, "u1", tags.Tags[0].UserID)

	_, err = client.DeleteNoteTag(ctx, &rpc.DeleteNoteTagRequest{NoteID: "n1", TagID: "t1"})
	require.NoError(t, err)
	_, err = client.DeleteNoteTagsByTag(ctx, &rpc.DeleteNoteTagsByTagRequest{TagID: "t1"})
	require.NoError(t, err)
	_, err = client.DeleteTag(ctx, &rpc.DeleteTagRequest{TagID: "t1"})
	require.NoError(t, err)

	for _, u := range fs.users {
		require.Equal(t, "u1", u)
	}
}

func TestBackend_ForeignUserRejected(t *testing.T) {
	client := startBufServer(t, newTestServer())

	_, err := client.SoftDeleteNote(authed(t, "u1"), &rpc.SoftDeleteNoteRequest{UserID: "u2", ID: "n1"})
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestBackend_ErrorMapping(t *testing.T) {
	s := newTestServer()
	fs := s.sync.(*fakeSync)
	client := startBufServer(t, s)
	ctx := authed(t, "u1")

	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrValidation, codes.InvalidArgument},
		{common.ErrNotFound, codes.NotFound},
		{common.ErrOwnerMismatch, codes.PermissionDenied},
		{common.ErrReferenced, codes.FailedPrecondition},
		{errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		fs.err = tt.err
		_, err := client.DeleteTag(ctx, &rpc.DeleteTagRequest{TagID: "t1"})
		require.Equal(t, tt.code, status.Code(err), tt.err.Error())
	}

	_, err := client.UpsertNote(ctx, &rpc.UpsertNoteRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBackend_ExportArchive(t *testing.T) {
	client := startBufServer(t, newTestServer())

	resp, err := client.ExportArchive(authed(t, "u1"), &rpc.ExportArchiveRequest{})
	require.NoError(t, err)
	require.Equal(t, "archives/u1/x.json", resp.Key)
	require.Equal(t, 1, resp.Notes)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", logging.Nop(), fakeUsers{}, newFakeSync(), fakeArchives{}, secret)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewGRPCServer("bad-address", logging.Nop(), fakeUsers{}, newFakeSync(), fakeArchives{}, secret)
	require.Error(t, s.Run(context.Background()))
}
