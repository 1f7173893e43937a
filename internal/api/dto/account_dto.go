package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role,omitempty"`
	FederalState string `json:"federal_state,omitempty"`
	Ressort      string `json:"ressort,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangeCredentialsRequest carries self-service credential changes. Omitted
// old values skip the corresponding branch.
type ChangeCredentialsRequest struct {
	OldPassword        string `json:"old_password,omitempty"`
	NewPassword        string `json:"new_password,omitempty"`
	ConfirmNewPassword string `json:"confirm_new_password,omitempty"`
	OldEmail           string `json:"old_email,omitempty"`
	NewEmail           string `json:"new_email,omitempty"`
}

// ResetRequest payload for requesting a password reset.
type ResetRequest struct {
	Username string `json:"username"`
}

// ResetCompleteRequest payload for completing a password reset.
type ResetCompleteRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// EnabledUpdateRequest is the office bulk enable/disable form.
type EnabledUpdateRequest struct {
	Users []EnabledUpdateEntry `json:"users"`
}

// EnabledUpdateEntry is one row of the bulk form.
type EnabledUpdateEntry struct {
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
}
