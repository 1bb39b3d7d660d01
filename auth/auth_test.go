package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer secret", "secret", nil},
		{"empty header", "", "", ErrTokenIsEmpty},
		{"basic scheme", "Basic dXNlcg==", "", ErrInvalidAuthHeader},
		{"empty token", "Bearer  ", "", ErrTokenIsEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromAuthorizationHeader(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticTokens(t *testing.T) {
	assert.Nil(t, StaticTokens())
	assert.Nil(t, StaticTokens("", ""))

	a := StaticTokens("alpha", "", "beta")
	require.NotNil(t, a)

	id, err := a.Authenticate(context.Background(), "beta")
	require.NoError(t, err)
	assert.Equal(t, "token-1", id)

	_, err = a.Authenticate(context.Background(), "gamma")
	require.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	a := BearerAuth(func(token string) (string, error) {
		if token == "ok" {
			return "alice", nil
		}
		return "", errors.New("rejected")
	})

	ctx, err := Authorize(context.Background(), "Bearer ok", a)
	require.NoError(t, err)
	assert.Equal(t, "alice", IdentityFromContext(ctx))

	ctx, err = Authorize(context.Background(), "Bearer no", a)
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, IdentityFromContext(ctx))

	_, err = Authorize(context.Background(), "", a)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.ErrorIs(t, err, ErrTokenIsEmpty)
}
