// Package rpc describes the notekeeper.v1.Backend gRPC service: message
// types, a JSON codec and the client/server bindings normally produced by
// protoc-gen-go-grpc.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "notekeeper.v1.Backend"

const (
	MethodPing                = "Ping"
	MethodRegister            = "Register"
	MethodLogin               = "Login"
	MethodUpsertNote          = "UpsertNote"
	MethodSoftDeleteNote      = "SoftDeleteNote"
	MethodUpsertTag           = "UpsertTag"
	MethodDeleteNoteTagsByTag = "DeleteNoteTagsByTag"
	MethodDeleteTag           = "DeleteTag"
	MethodUpsertNoteTag       = "UpsertNoteTag"
	MethodDeleteNoteTag       = "DeleteNoteTag"
	MethodPullNotes           = "PullNotes"
	MethodPullTags            = "PullTags"
	MethodExportArchive       = "ExportArchive"
)

// FullMethod returns "/notekeeper.v1.Backend/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IsPublic reports whether fullMethod may be called without an access token.
func IsPublic(fullMethod string) bool {
	switch fullMethod {
	case FullMethod(MethodPing), FullMethod(MethodRegister), FullMethod(MethodLogin):
		return true
	}
	return false
}

type BackendClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	UpsertNote(ctx context.Context, in *UpsertNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error)
	SoftDeleteNote(ctx context.Context, in *SoftDeleteNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error)
	UpsertTag(ctx context.Context, in *UpsertTagRequest, opts ...grpc.CallOption) (*TagResponse, error)
	DeleteNoteTagsByTag(ctx context.Context, in *DeleteNoteTagsByTagRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteTag(ctx context.Context, in *DeleteTagRequest, opts ...grpc.CallOption) (*Empty, error)
	UpsertNoteTag(ctx context.Context, in *UpsertNoteTagRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteNoteTag(ctx context.Context, in *DeleteNoteTagRequest, opts ...grpc.CallOption) (*Empty, error)
	PullNotes(ctx context.Context, in *PullNotesRequest, opts ...grpc.CallOption) (*PullNotesResponse, error)
	PullTags(ctx context.Context, in *PullTagsRequest, opts ...grpc.CallOption) (*PullTagsResponse, error)
	ExportArchive(ctx context.Context, in *ExportArchiveRequest, opts ...grpc.CallOption) (*ExportArchiveResponse, error)
}

type backendClient struct {
	cc grpc.ClientConnInterface
}

func NewBackendClient(cc grpc.ClientConnInterface) BackendClient {
	return &backendClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backendClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *backendClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *backendClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *backendClient) UpsertNote(ctx context.Context, in *UpsertNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c.cc, MethodUpsertNote, in, opts)
}

func (c *backendClient) SoftDeleteNote(ctx context.Context, in *SoftDeleteNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c.cc, MethodSoftDeleteNote, in, opts)
}

func (c *backendClient) UpsertTag(ctx context.Context, in *UpsertTagRequest, opts ...grpc.CallOption) (*TagResponse, error) {
	return invoke[TagResponse](ctx, c.cc, MethodUpsertTag, in, opts)
}

func (c *backendClient) DeleteNoteTagsByTag(ctx context.Context, in *DeleteNoteTagsByTagRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteNoteTagsByTag, in, opts)
}

func (c *backendClient) DeleteTag(ctx context.Context, in *DeleteTagRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteTag, in, opts)
}

func (c *backendClient) UpsertNoteTag(ctx context.Context, in *UpsertNoteTagRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpsertNoteTag, in, opts)
}

func (c *backendClient) DeleteNoteTag(ctx context.Context, in *DeleteNoteTagRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteNoteTag, in, opts)
}

func (c *backendClient) PullNotes(ctx context.Context, in *PullNotesRequest, opts ...grpc.CallOption) (*PullNotesResponse, error) {
	return invoke[PullNotesResponse](ctx, c.cc, MethodPullNotes, in, opts)
}

func (c *backendClient) PullTags(ctx context.Context, in *PullTagsRequest, opts ...grpc.CallOption) (*PullTagsResponse, error) {
	return invoke[PullTagsResponse](ctx, c.cc, MethodPullTags, in, opts)
}

func (c *backendClient) ExportArchive(ctx context.Context, in *ExportArchiveRequest, opts ...grpc.CallOption) (*ExportArchiveResponse, error) {
	return invoke[ExportArchiveResponse](ctx, c.cc, MethodExportArchive, in, opts)
}

type BackendServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	UpsertNote(context.Context, *UpsertNoteRequest) (*NoteResponse, error)
	SoftDeleteNote(context.Context, *SoftDeleteNoteRequest) (*NoteResponse, error)
	UpsertTag(context.Context, *UpsertTagRequest) (*TagResponse, error)
	DeleteNoteTagsByTag(context.Context, *DeleteNoteTagsByTagRequest) (*Empty, error)
	DeleteTag(context.Context, *DeleteTagRequest) (*Empty, error)
	UpsertNoteTag(context.Context, *UpsertNoteTagRequest) (*Empty, error)
	DeleteNoteTag(context.Context, *DeleteNoteTagRequest) (*Empty, error)
	PullNotes(context.Context, *PullNotesRequest) (*PullNotesResponse, error)
	PullTags(context.Context, *PullTagsRequest) (*PullTagsResponse, error)
	ExportArchive(context.Context, *ExportArchiveRequest) (*ExportArchiveResponse, error)
}

// UnimplementedBackendServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedBackendServer struct{}

func (UnimplementedBackendServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedBackendServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedBackendServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedBackendServer) UpsertNote(context.Context, *UpsertNoteRequest) (*NoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertNote not implemented")
}
func (UnimplementedBackendServer) SoftDeleteNote(context.Context, *SoftDeleteNoteRequest) (*NoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SoftDeleteNote not implemented")
}
func (UnimplementedBackendServer) UpsertTag(context.Context, *UpsertTagRequest) (*TagResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertTag not implemented")
}
func (UnimplementedBackendServer) DeleteNoteTagsByTag(context.Context, *DeleteNoteTagsByTagRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteNoteTagsByTag not implemented")
}
func (UnimplementedBackendServer) DeleteTag(context.Context, *DeleteTagRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteTag not implemented")
}
func (UnimplementedBackendServer) UpsertNoteTag(context.Context, *UpsertNoteTagRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertNoteTag not implemented")
}
func (UnimplementedBackendServer) DeleteNoteTag(context.Context, *DeleteNoteTagRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteNoteTag not implemented")
}
func (UnimplementedBackendServer) PullNotes(context.Context, *PullNotesRequest) (*PullNotesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PullNotes not implemented")
}
func (UnimplementedBackendServer) PullTags(context.Context, *PullTagsRequest) (*PullTagsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PullTags not implemented")
}
func (UnimplementedBackendServer) ExportArchive(context.Context, *ExportArchiveRequest) (*ExportArchiveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportArchive not implemented")
}

func unary[Req any, Resp any](method string, call func(BackendServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BackendServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BackendServer), ctx, req.(*Req))
			})
		},
	}
}

var Backend_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, BackendServer.Ping),
		unary(MethodRegister, BackendServer.Register),
		unary(MethodLogin, BackendServer.Login),
		unary(MethodUpsertNote, BackendServer.UpsertNote),
		unary(MethodSoftDeleteNote, BackendServer.SoftDeleteNote),
		unary(MethodUpsertTag, BackendServer.UpsertTag),
		unary(MethodDeleteNoteTagsByTag, BackendServer.DeleteNoteTagsByTag),
		unary(MethodDeleteTag, BackendServer.DeleteTag),
		unary(MethodUpsertNoteTag, BackendServer.UpsertNoteTag),
		unary(MethodDeleteNoteTag, BackendServer.DeleteNoteTag),
		unary(MethodPullNotes, BackendServer.PullNotes),
		unary(MethodPullTags, BackendServer.PullTags),
		unary(MethodExportArchive, BackendServer.ExportArchive),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "notekeeper/v1/backend",
}

func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&Backend_ServiceDesc, srv)
}
