package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"helfy-server/internal/auth/domain/model"
	"helfy-server/internal/auth/domain/repository"
	apperrors "helfy-server/internal/shared/errors"
)

// tokenBytes gives 128 bits of entropy; the hex encoding yields a 32
// character opaque value with no embedded structure.
const tokenBytes = 16

// OpaqueTokenService issues and validates random bearer tokens backed by
// the credential store. Every validation re-reads the store, so revocation
// and expiry take effect immediately.
type OpaqueTokenService struct {
	store repository.CredentialStore
	ttl   time.Duration
	now   func() time.Time
}

// NewOpaqueTokenService creates a token service with the given lifetime.
func NewOpaqueTokenService(store repository.CredentialStore, ttl time.Duration) *OpaqueTokenService {
	return &OpaqueTokenService{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func generateValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Issue generates a fresh token for the user and persists it. A collision
// on the token value is vanishingly unlikely; the insert is retried once
// with a new value before the error is surfaced.
func (s *OpaqueTokenService) Issue(ctx context.Context, userID int64) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		value, err := generateValue()
		if err != nil {
			return "", err
		}

		token := &model.Token{
			Value:     value,
			UserID:    userID,
			ExpiresAt: s.now().Add(s.ttl),
		}

		err = s.store.CreateToken(ctx, token)
		if err == nil {
			return value, nil
		}
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return "", fmt.Errorf("failed to persist token: %w", err)
		}
	}

	return "", apperrors.NewInternalError("token collision persisted across retry")
}

// Validate resolves a token value to its owning user. Missing and expired
// tokens are indistinguishable to the caller.
func (s *OpaqueTokenService) Validate(ctx context.Context, value string) (*model.User, error) {
	if value == "" {
		return nil, apperrors.ErrInvalidToken
	}

	user, token, err := s.store.GetValidToken(ctx, value)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	// The store already filters on expiry; re-check against our own clock
	// so a skewed database clock cannot resurrect an expired token.
	if token.Expired(s.now()) {
		return nil, apperrors.ErrInvalidToken
	}

	return user, nil
}

// Revoke deletes the token. Revoking an absent token succeeds.
func (s *OpaqueTokenService) Revoke(ctx context.Context, value string) error {
	return s.store.DeleteToken(ctx, value)
}

var _ repository.TokenService = (*OpaqueTokenService)(nil)
