package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "kitchensync.Sync"

	SnapshotMethod = "/kitchensync.Sync/Snapshot"
	PushMethod     = "/kitchensync.Sync/Push"

	// AuthorizationKey is the metadata key carrying "Bearer <token>".
	AuthorizationKey = "authorization"

	// TraceIDKey is the metadata key carrying the caller's sync cycle trace ID.
	TraceIDKey = "x-trace-id"
)

// SnapshotRequest asks for the remote snapshot of one collection.
type SnapshotRequest struct {
	Collection models.Collection `json:"collection"`
}

// SyncServer is the server API of kitchensync.Sync.
type SyncServer interface {
	Snapshot(ctx context.Context, req *SnapshotRequest) (*models.SnapshotResponse, error)
	Push(ctx context.Context, req *models.PushRequest) (*models.PushResponse, error)
}

// RegisterSyncServer registers srv on s.
func RegisterSyncServer(s grpc.ServiceRegistrar, srv SyncServer) {
	s.RegisterService(&SyncServiceDesc, srv)
}

func snapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServer).Snapshot(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServer).Snapshot(ctx, req.(*SnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pushHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(models.PushRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncServer).Push(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PushMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SyncServer).Push(ctx, req.(*models.PushRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// SyncServiceDesc describes kitchensync.Sync for grpc.Server.RegisterService.
var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Snapshot", Handler: snapshotHandler},
		{MethodName: "Push", Handler: pushHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kitchensync",
}

// SyncClient is the client API of kitchensync.Sync.
type SyncClient interface {
	Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*models.SnapshotResponse, error)
	Push(ctx context.Context, in *models.PushRequest, opts ...grpc.CallOption) (*models.PushResponse, error)
}

type syncClient struct {
	cc grpc.ClientConnInterface
}

// NewSyncClient returns a SyncClient using the JSON codec on cc.
func NewSyncClient(cc grpc.ClientConnInterface) SyncClient {
	return &syncClient{cc: cc}
}

func (c *syncClient) Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*models.SnapshotResponse, error) {
	out := new(models.SnapshotResponse)
	if err := c.cc.Invoke(ctx, SnapshotMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncClient) Push(ctx context.Context, in *models.PushRequest, opts ...grpc.CallOption) (*models.PushResponse, error) {
	out := new(models.PushResponse)
	if err := c.cc.Invoke(ctx, PushMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
}
