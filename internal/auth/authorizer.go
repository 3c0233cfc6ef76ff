// Package auth verifies bearer tokens and resolves the username that scopes
// a caller's private namespace.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned for missing, unknown, or expired tokens.
var ErrUnauthorized = errors.New("unauthorized")

// Claims are the verified identity attached to a request. Username keys the
// caller's private namespace; an empty username grants access to the shared
// corpus only.
type Claims struct {
	Username string
}

// Authorizer validates a bearer token and returns its claims.
type Authorizer interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
