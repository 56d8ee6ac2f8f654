package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/rpc"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

type grpcRemoteSource struct {
	conn    *grpc.ClientConn
	client  rpc.SyncClient
	token   string
	timeout time.Duration

	logger *logger.Logger
}

// NewGRPCRemoteSource dials the kitchensync.Sync service at
// adapterCfg.GRPCAddress. The connection is lazy: nothing is sent until the
// first call.
func NewGRPCRemoteSource(adapterCfg config.Adapter, logger *logger.Logger, opts ...grpc.DialOption) (RemoteSource, error) {
	address := strings.TrimSpace(adapterCfg.GRPCAddress)
	if address == "" {
		return nil, fmt.Errorf("%w: empty grpc address", ErrInvalidAddress)
	}

	g := &grpcRemoteSource{
		token:   strings.TrimSpace(adapterCfg.Token),
		timeout: adapterCfg.RequestTimeout,
		logger:  logger,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(g.authInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	g.conn = conn
	g.client = rpc.NewSyncClient(conn)
	return g, nil
}

// authInterceptor attaches the bearer token, the sync cycle trace ID and the
// request timeout to every call.
func (g *grpcRemoteSource) authInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if g.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, rpc.AuthorizationKey, "Bearer "+g.token)
	}
	if traceID := utils.GetTraceIDFromContext(ctx); traceID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, rpc.TraceIDKey, traceID)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// FetchSnapshot implements [RemoteSource] with kitchensync.Sync/Snapshot.
func (g *grpcRemoteSource) FetchSnapshot(ctx context.Context, collection models.Collection) (models.SnapshotResponse, error) {
	resp, err := g.client.Snapshot(ctx, &rpc.SnapshotRequest{Collection: collection})
	if err != nil {
		return models.SnapshotResponse{}, mapGRPCError("fetch snapshot", err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "grpcRemoteSource.FetchSnapshot").
		Str("collection", collection.String()).
		Int("count", len(resp.Entities)).
		Msg("snapshot fetched")

	return *resp, nil
}

// Push implements [RemoteSource] with kitchensync.Sync/Push.
func (g *grpcRemoteSource) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	req.Length = req.Size()

	resp, err := g.client.Push(ctx, &req)
	if err != nil {
		return models.PushResponse{}, mapGRPCError("push", err)
	}
	return *resp, nil
}

func (g *grpcRemoteSource) Close() error {
	return g.conn.Close()
}

// NewRemoteSource builds the [RemoteSource] selected by adapterCfg.Transport.
func NewRemoteSource(adapterCfg config.Adapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteSource, error) {
	switch adapterCfg.Transport {
	case "", config.TransportHTTP:
		return NewHTTPRemoteSource(adapterCfg, appCfg, logger)
	case config.TransportGRPC:
		return NewGRPCRemoteSource(adapterCfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, adapterCfg.Transport)
	}
}
