package flight

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql/auth"
)

// HeaderAuthorization is the gRPC metadata header for the bearer token.
const HeaderAuthorization = "authorization"

// UnaryServerInterceptor creates a gRPC unary interceptor that assigns a
// request ID, validates bearer tokens and logs each call.
// If no authenticator is provided, requests pass through without auth.
func UnaryServerInterceptor(logger *slog.Logger, authenticator auth.Authenticator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, err := authenticate(EnrichContext(ctx), authenticator)
		if err != nil {
			logCall(logger, ctx, info.FullMethod, time.Now(), err)
			return nil, err
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, ctx, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamServerInterceptor creates a gRPC stream interceptor that assigns a
// request ID, validates bearer tokens and logs each call.
// If no authenticator is provided, requests pass through without auth.
func StreamServerInterceptor(logger *slog.Logger, authenticator auth.Authenticator) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := authenticate(EnrichContext(ss.Context()), authenticator)
		if err != nil {
			logCall(logger, ctx, info.FullMethod, time.Now(), err)
			return err
		}
		start := time.Now()
		err = handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
		logCall(logger, ctx, info.FullMethod, start, err)
		return err
	}
}

func authenticate(ctx context.Context, authenticator auth.Authenticator) (context.Context, error) {
	if authenticator == nil {
		return ctx, nil
	}
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(HeaderAuthorization); len(values) > 0 {
			header = values[0]
		}
	}
	ctx, err := auth.Authorize(ctx, header, authenticator)
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, err.Error())
	}
	return ctx, nil
}

func logCall(logger *slog.Logger, ctx context.Context, method string, start time.Time, err error) {
	attrs := []any{
		"method", method,
		"request_id", RequestIDFromContext(ctx),
		"identity", auth.IdentityFromContext(ctx),
		"duration", time.Since(start),
	}
	if err != nil {
		logger.Info("Flight call failed", append(attrs, "code", status.Code(err), "error", err)...)
		return
	}
	logger.Debug("Flight call completed", attrs...)
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapper's custom context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
