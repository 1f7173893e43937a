package domain

import "time"

// PasswordResetToken authorizes exactly one password change while unconsumed
// and unexpired. Later reset requests for the same user supersede earlier
// tokens without deleting them.
type PasswordResetToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	Confirmed bool
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
