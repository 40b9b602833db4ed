package storage

import (
	"context"
)

// TokenStorage defines the interface for persisting the bearer token pair on
// the client. It is the only durable client-side state; everything else is
// fetched from the server on demand.
type TokenStorage interface {
	// SaveAuth stores the token pair, replacing any previous pair.
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves the stored token pair.
	// Returns ErrAuthNotFound if no pair exists.
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored token pair (logout). Both tokens are
	// always removed together; a partial pair is never left behind.
	DeleteAuth(ctx context.Context) error
}

// AuthData is the persisted token pair. Tokens are opaque to the client: no
// expiry or claims are parsed locally, validity is discovered reactively by
// the first rejected request.
type AuthData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
