package model

import "time"

// Token is an opaque bearer token row. The value carries no embedded
// structure; validity is decided solely by store lookup against ExpiresAt.
type Token struct {
	Value     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is unusable at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
