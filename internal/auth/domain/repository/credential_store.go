package repository

import (
	"context"

	"helfy-server/internal/auth/domain/model"
)

// CredentialStore defines the persistence contract for users and tokens.
// All operations are single-row atomic; uniqueness of email, username and
// token value is enforced by store constraints.
type CredentialStore interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByIdentifier(ctx context.Context, emailOrUsername string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// Token operations
	CreateToken(ctx context.Context, token *model.Token) error
	// GetValidToken returns the token row and its owning user, but only
	// while the token is unexpired at query time.
	GetValidToken(ctx context.Context, value string) (*model.User, *model.Token, error)
	// DeleteToken is idempotent: deleting an absent token is not an error.
	DeleteToken(ctx context.Context, value string) error
}
