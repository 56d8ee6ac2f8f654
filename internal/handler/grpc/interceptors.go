package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/rpc"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryInterceptors returns the interceptor chain for grpc.ChainUnaryInterceptor:
// trace ID, access log and metrics, panic recovery, authentication, then
// the per-user rate limit.
func (h *Handler) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		h.traceIDInterceptor,
		h.loggingInterceptor,
		h.recoveryInterceptor,
		h.authInterceptor,
		h.rateLimitInterceptor,
	}
}

func (h *Handler) traceIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	traceID := firstMetadata(ctx, rpc.TraceIDKey)
	if _, err := uuid.Parse(traceID); err != nil {
		traceID = utils.NewTraceID()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})
	ctx = utils.WithTraceID(l.WithContext(ctx), traceID)

	_ = grpc.SetHeader(ctx, metadata.Pairs(rpc.TraceIDKey, traceID))
	return handler(ctx, req)
}

func (h *Handler) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	code := status.Code(err)
	h.metrics.ObserveGRPCRequest(info.FullMethod, code.String(), duration)

	event := logger.FromContext(ctx).Info()
	if err != nil {
		event = logger.FromContext(ctx).Warn().Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", duration).
		Send()

	return resp, err
}

func (h *Handler) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("method", info.FullMethod).
				Msg("recovered from panic")
			err = status.Error(codes.Internal, app.MsgInternalServerError)
		}
	}()

	return handler(ctx, req)
}

// authInterceptor checks the bearer token in the "authorization" metadata
// and stores the user ID from its "sub" claim in the context.
func (h *Handler) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	log := logger.FromContext(ctx)

	tokenString, err := utils.ParseBearerToken(firstMetadata(ctx, rpc.AuthorizationKey))
	if err != nil {
		log.Err(err).Str("method", info.FullMethod).Msg("missing bearer token")
		return nil, status.Error(codes.Unauthenticated, app.MsgTokenIsExpiredOrInvalid)
	}

	token, err := utils.ValidateAndParseJWTToken(tokenString, h.tokenSignKey, h.tokenIssuer)
	if err != nil {
		log.Err(err).Str("method", info.FullMethod).Msg("error occurred during parsing token")
		return nil, status.Error(codes.Unauthenticated, app.MsgTokenIsExpiredOrInvalid)
	}

	l := log.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int64("user_id", token.UserID)
	})

	return handler(utils.WithUserID(l.WithContext(ctx), token.UserID), req)
}

// rateLimitInterceptor rejects calls of a user whose token bucket is empty
// with ResourceExhausted. It must run after authInterceptor.
func (h *Handler) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return handler(ctx, req)
	}

	if allowed, wait := h.limiter.Allow(userID); !allowed {
		logger.FromContext(ctx).Warn().Str("method", info.FullMethod).Dur("retry_after", wait).Msg("rate limit exceeded")
		h.metrics.ObserveRateLimited("grpc")
		return nil, status.Error(codes.ResourceExhausted, app.MsgTooManyRequests)
	}

	return handler(ctx, req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
