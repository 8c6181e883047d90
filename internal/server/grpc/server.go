// Package grpc exposes the notekeeper.v1.Backend service: token
// authentication, user scoping and translation between wire messages and
// the server services.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
}

type SyncService interface {
	UpsertNote(ctx context.Context, n *models.Note) (*models.Note, error)
	SoftDeleteNote(ctx context.Context, userID, noteID string) (*models.Note, error)
	UpsertTag(ctx context.Context, t *models.Tag) (*models.Tag, error)
	DeleteNoteTagsByTag(ctx context.Context, userID, tagID string) error
	DeleteTag(ctx context.Context, userID, tagID string) error
	UpsertNoteTag(ctx context.Context, userID string, nt *models.NoteTag) error
	DeleteNoteTag(ctx context.Context, userID, noteID, tagID string) error
	NotesChangedSince(ctx context.Context, userID string, since time.Time) ([]models.NoteWithTags, error)
	TagsChangedSince(ctx context.Context, userID string, since time.Time) ([]models.Tag, error)
}

type ArchiveService interface {
	Export(ctx context.Context, userID string) (*models.Archive, error)
}

type GRPCServer struct {
	rpc.UnimplementedBackendServer
	address   string
	users     UserService
	sync      SyncService
	archives  ArchiveService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.BackendServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us UserService, ss SyncService, as ArchiveService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		sync:      ss,
		archives:  as,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer returns a grpc.Server with the Backend service and the access
// token interceptor registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.accessTokenInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)
	rpc.RegisterBackendServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
