package repository

import (
	"context"

	"helfy-server/internal/auth/domain/model"
)

// TokenService defines the contract for opaque bearer token operations.
// Validation always re-reads the credential store; no token is ever cached
// between requests.
type TokenService interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, value string) (*model.User, error)
	Revoke(ctx context.Context, value string) error
}
