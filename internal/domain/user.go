package domain

import "time"

// User is the identity record owned by the account lifecycle service.
// Enabled stays false until both the user and an office reviewer confirm
// the registration.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Enabled      bool
	Roles        []Role
	FederalState *string
	Ressort      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports direct membership, without consulting the role hierarchy.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
