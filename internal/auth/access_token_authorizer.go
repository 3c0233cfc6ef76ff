package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traingrc/textweaver/internal/db"
)

// AccessTokenAuthorizer validates bearer tokens against the access_tokens
// table carried by the vector index backend.
type AccessTokenAuthorizer struct {
	Store db.TokenStore
}

// NewAccessTokenAuthorizer wires the authorizer to a token store.
func NewAccessTokenAuthorizer(store db.TokenStore) *AccessTokenAuthorizer {
	return &AccessTokenAuthorizer{Store: store}
}

func (a *AccessTokenAuthorizer) Verify(ctx context.Context, token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrUnauthorized
	}

	stored, err := a.Store.GetAccessToken(ctx, token)
	if errors.Is(err, db.ErrTokenNotFound) {
		return Claims{}, ErrUnauthorized
	}
	if err != nil {
		return Claims{}, fmt.Errorf("could not fetch access token: %w", err)
	}

	if stored.Expiration.Before(time.Now()) {
		return Claims{}, ErrUnauthorized
	}

	return Claims{Username: stored.Username}, nil
}
