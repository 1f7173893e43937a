package domain

import "time"

// ConfirmationToken tracks one registration's dual confirmation. The token
// string is an opaque bearer capability; presenting it is the only
// authentication for the confirmation endpoints.
type ConfirmationToken struct {
	ID               string
	Token            string
	UserID           string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	UserConfirmed    bool
	AdminConfirmed   bool
	AdminConfirmedAt *time.Time
}

// Expired reports whether the token is past its expiry. An expired token is
// terminal regardless of flag state.
func (t *ConfirmationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// FullyConfirmed reports whether both sides have confirmed.
func (t *ConfirmationToken) FullyConfirmed() bool {
	return t.UserConfirmed && t.AdminConfirmed
}
