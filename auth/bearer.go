package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
)

var errUnknownToken = errors.New("unknown token")

// bearerAuthenticator wraps a user-provided validation function.
type bearerAuthenticator struct {
	validateFunc func(token string) (identity string, err error)
}

// BearerAuth creates an Authenticator from a validation function.
//
// Example:
//
//	authenticator := auth.BearerAuth(func(token string) (string, error) {
//	    user, err := validateWithMyBackend(token)
//	    if err != nil {
//	        return "", err
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return &bearerAuthenticator{
		validateFunc: validateFunc,
	}
}

// Authenticate implements Authenticator for bearerAuthenticator.
func (b *bearerAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	return b.validateFunc(token)
}

// StaticTokens creates an Authenticator accepting a fixed token list.
// The identity of the i-th token is "token-<i>". Returns nil when tokens is
// empty, which the transports treat as authentication disabled.
func StaticTokens(tokens ...string) Authenticator {
	var keep [][]byte
	for _, t := range tokens {
		if t != "" {
			keep = append(keep, []byte(t))
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return BearerAuth(func(token string) (string, error) {
		found := -1
		for i, t := range keep {
			if subtle.ConstantTimeCompare([]byte(token), t) == 1 && found < 0 {
				found = i
			}
		}
		if found < 0 {
			return "", errUnknownToken
		}
		return "token-" + strconv.Itoa(found), nil
	})
}
