package handlers

import (
	"errors"

	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// mapServiceError translates lifecycle outcomes into boundary errors.
func mapServiceError(err error) error {
	var denied *service.AccessDeniedError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrUserAlreadyExists):
		return apperrors.NewConflict("identity already exists", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewNotFound("user", nil)
	case errors.Is(err, service.ErrTokenNotFound):
		return apperrors.NewNotFound("token", nil)
	case errors.Is(err, service.ErrTokenExpired):
		return apperrors.NewGone("token expired")
	case errors.Is(err, service.ErrTokenConsumed):
		return apperrors.NewConflict("token already consumed", nil)
	case errors.Is(err, service.ErrPasswordMismatch):
		return apperrors.NewValidationError("password not matching", nil)
	case errors.Is(err, service.ErrEmailMismatch):
		return apperrors.NewValidationError("email not matching", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		return apperrors.NewForbidden("account not enabled")
	case errors.As(err, &denied):
		return apperrors.NewForbidden(denied.Error())
	default:
		return apperrors.MapError(err)
	}
}
