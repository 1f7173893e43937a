package service

import (
	"context"
	"errors"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

// ErrAccountDisabled is returned when credentials verify but the account has
// not completed dual confirmation.
var ErrAccountDisabled = errors.New("account not enabled")

// Authenticate verifies a username/password pair for the session surface.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrPasswordMismatch
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}
	return user, nil
}
