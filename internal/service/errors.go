package service

import (
	"errors"
	"fmt"
)

// Expected, caller-surfaced outcomes. None are fatal; no mutation occurs on
// any of these paths.
var (
	ErrUserAlreadyExists = errors.New("identity already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenConsumed     = errors.New("token already consumed")
	ErrPasswordMismatch  = errors.New("password not matching")
	ErrEmailMismatch     = errors.New("email not matching")
)

// AccessDeniedError reports a failed scoped-authorization check together
// with which scope was denied.
type AccessDeniedError struct {
	Scope string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("no permission to access the %s", e.Scope)
}
