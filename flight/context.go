package flight

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

type contextKey int

const requestIDKey contextKey = iota

// HeaderRequestID is the gRPC metadata header carrying a client request ID.
const HeaderRequestID = "aggql-request-id"

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// EnrichContext stores the request ID from the incoming metadata, or a new
// random one when the client did not send any.
// If the context already has a request ID, it is returned unchanged.
func EnrichContext(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(HeaderRequestID); len(values) > 0 && values[0] != "" {
			return WithRequestID(ctx, values[0])
		}
	}
	return WithRequestID(ctx, uuid.NewString())
}
