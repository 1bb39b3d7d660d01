// Package auth provides bearer token authentication for the Flight and HTTP transports.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is malformed.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned when the bearer token is missing.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when authentication fails.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates bearer tokens and returns user identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate validates a bearer token and returns the caller identity.
	// The identity is attached to request logs.
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

type contextKey int

const identityKey contextKey = iota

// IdentityFromContext retrieves the authenticated user identity from context.
// Returns empty string if no identity is set (unauthenticated request).
func IdentityFromContext(ctx context.Context) string {
	val, ok := ctx.Value(identityKey).(string)
	if !ok {
		return ""
	}
	return val
}

// WithIdentity adds the authenticated user identity to the context.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

const bearerPrefix = "Bearer "

// TokenFromAuthorizationHeader extracts the token of a "Bearer <token>" header value.
func TokenFromAuthorizationHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrTokenIsEmpty
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// Authorize parses the authorization header and validates its token.
// Returns context with identity set or an error wrapping ErrUnauthenticated.
func Authorize(ctx context.Context, authHeader string, authenticator Authenticator) (context.Context, error) {
	token, err := TokenFromAuthorizationHeader(authHeader)
	if err != nil {
		return ctx, errors.Join(ErrUnauthenticated, err)
	}

	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, errors.Join(ErrUnauthenticated, err)
	}
	return WithIdentity(ctx, identity), nil
}
