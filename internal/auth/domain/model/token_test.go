package model_test

import (
	"testing"
	"time"

	"helfy-server/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestTokenExpiry(t *testing.T) {
	expiry := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	token := &model.Token{ExpiresAt: expiry}

	// Valid strictly before expiry, unusable from the expiry instant on.
	assert.False(t, token.Expired(expiry.Add(-time.Nanosecond)))
	assert.True(t, token.Expired(expiry))
	assert.True(t, token.Expired(expiry.Add(time.Second)))
}

func TestUserPublicOmitsHash(t *testing.T) {
	user := &model.User{
		ID:           1,
		Email:        "a@x.com",
		Username:     "a",
		PasswordHash: "$2a$10$hash",
	}

	public := user.Public()

	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, user.Email, public.Email)
	assert.Empty(t, public.PasswordHash)
	// The original keeps its hash for credential checks.
	assert.NotEmpty(t, user.PasswordHash)
}
