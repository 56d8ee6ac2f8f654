package adapter

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/rpc"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

type fakeSyncServer struct {
	auth    string
	traceID string
	err     error
}

func (f *fakeSyncServer) Snapshot(ctx context.Context, req *rpc.SnapshotRequest) (*models.SnapshotResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(rpc.AuthorizationKey); len(v) > 0 {
		f.auth = v[0]
	}
	if v := md.Get(rpc.TraceIDKey); len(v) > 0 {
		f.traceID = v[0]
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.SnapshotResponse{
		Collection: req.Collection,
		Entities:   []models.Entity{{Key: "a", Collection: req.Collection, Payload: []byte(`{}`)}},
		Length:     1,
	}, nil
}

func (f *fakeSyncServer) Push(_ context.Context, req *models.PushRequest) (*models.PushResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PushResponse{Accepted: req.Deleted, Length: req.Length}, nil
}

func newTestGRPCSource(t *testing.T, srv rpc.SyncServer) RemoteSource {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.ForceServerCodec(rpc.Codec()))
	rpc.RegisterSyncServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	src, err := NewGRPCRemoteSource(
		config.Adapter{GRPCAddress: "passthrough:///bufnet", Token: "t0k"},
		logger.Nop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

func TestGRPCRemoteSource_FetchSnapshot(t *testing.T) {
	fake := &fakeSyncServer{}
	src := newTestGRPCSource(t, fake)

	got, err := src.FetchSnapshot(context.Background(), models.ShoppingItems)
	require.NoError(t, err)
	assert.Equal(t, models.ShoppingItems, got.Collection)
	assert.Len(t, got.Entities, 1)
	assert.Equal(t, "Bearer t0k", fake.auth)
}

func TestGRPCRemoteSource_ForwardsTraceID(t *testing.T) {
	fake := &fakeSyncServer{}
	src := newTestGRPCSource(t, fake)

	traceID := utils.NewTraceID()
	_, err := src.FetchSnapshot(utils.WithTraceID(context.Background(), traceID), models.Recipes)
	require.NoError(t, err)
	assert.Equal(t, traceID, fake.traceID)
}

func TestGRPCRemoteSource_Push(t *testing.T) {
	src := newTestGRPCSource(t, &fakeSyncServer{})

	got, err := src.Push(context.Background(), models.PushRequest{Collection: models.ShoppingItems, Deleted: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Accepted)
	assert.Equal(t, 1, got.Length)
}

func TestGRPCRemoteSource_ErrorMapping(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.InvalidArgument, ErrBadRequest},
		{codes.Unavailable, ErrNetwork},
		{codes.Internal, ErrNetwork},
		{codes.NotFound, ErrNotFound},
		{codes.PermissionDenied, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			src := newTestGRPCSource(t, &fakeSyncServer{err: status.Error(tt.code, "nope")})

			_, err := src.FetchSnapshot(context.Background(), models.Recipes)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGRPCRemoteSource_Cancelled(t *testing.T) {
	src := newTestGRPCSource(t, &fakeSyncServer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchSnapshot(ctx, models.Recipes)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestMapGRPCError_PlainError(t *testing.T) {
	err := mapGRPCError("op", assert.AnError)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Nil(t, mapGRPCError("op", nil))
}
