package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeBackend struct {
	UnimplementedBackendServer
	gotNote  *Note
	gotToken string
}

func (f *fakeBackend) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (f *fakeBackend) UpsertNote(ctx context.Context, req *UpsertNoteRequest) (*NoteResponse, error) {
	f.gotNote = req.Note
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("access_token"); len(v) > 0 {
			f.gotToken = v[0]
		}
	}
	out := *req.Note
	out.SyncVersion++
	return &NoteResponse{Note: &out}, nil
}

func (f *fakeBackend) PullNotes(ctx context.Context, req *PullNotesRequest) (*PullNotesResponse, error) {
	return nil, status.Error(codes.PermissionDenied, "nope")
}

func startBufServer(t *testing.T, srv BackendServer, opts ...grpc.ServerOption) BackendClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterBackendServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewBackendClient(conn)
}

func TestBackend_RoundTripOverJSONCodec(t *testing.T) {
	fake := &fakeBackend{}
	client := startBufServer(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx, &PingRequest{})
	require.NoError(t, err)
	require.Equal(t, "OK", pong.Status)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx = metadata.AppendToOutgoingContext(ctx, "access_token", "tok")
	resp, err := client.UpsertNote(ctx, &UpsertNoteRequest{Note: &Note{
		ID: "n1", UserID: "u1", Content: "hello", CreatedAt: created, UpdatedAt: created, SyncVersion: 1,
	}})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Note.SyncVersion)
	require.Nil(t, resp.Note.DeletedAt)
	require.True(t, created.Equal(resp.Note.CreatedAt))

	require.Equal(t, "hello", fake.gotNote.Content)
	require.Equal(t, "tok", fake.gotToken)
}

func TestBackend_ErrorsKeepStatusCode(t *testing.T) {
	client := startBufServer(t, &fakeBackend{})
	ctx := context.Background()

	_, err := client.PullNotes(ctx, &PullNotesRequest{UserID: "u1"})
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.DeleteTag(ctx, &DeleteTagRequest{UserID: "u1", TagID: "t1"})
	require.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestBackend_InterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	icpt := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	client := startBufServer(t, &fakeBackend{}, grpc.ChainUnaryInterceptor(icpt))

	_, err := client.Ping(context.Background(), &PingRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"/notekeeper.v1.Backend/Ping"}, seen)
}

func TestIsPublic(t *testing.T) {
	require.True(t, IsPublic(FullMethod(MethodLogin)))
	require.True(t, IsPublic(FullMethod(MethodRegister)))
	require.True(t, IsPublic(FullMethod(MethodPing)))
	require.False(t, IsPublic(FullMethod(MethodUpsertNote)))
	require.False(t, IsPublic("/other.Service/Ping"))
}

func TestUserScoped(t *testing.T) {
	var r UserScoped = &UpsertNoteRequest{}
	require.Equal(t, "", r.GetUserID())
	r.SetUserID("u1")

	n := &UpsertNoteRequest{Note: &Note{}}
	n.SetUserID("u2")
	require.Equal(t, "u2", n.GetUserID())

	var p UserScoped = &PullTagsRequest{}
	p.SetUserID("u3")
	require.Equal(t, "u3", p.GetUserID())
}
