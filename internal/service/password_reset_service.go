package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/notify"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
)

// PasswordResetService owns the issued -> consumed reset token state
// machine.
type PasswordResetService struct {
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	sink    notify.Sink
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     config.LifecycleConfig
	now     func() time.Time
}

// ResetDependencies bundles collaborator requirements.
type ResetDependencies struct {
	UserRepo  repository.UserRepository
	ResetRepo repository.PasswordResetRepository
	Sink      notify.Sink
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewPasswordResetService builds the service.
func NewPasswordResetService(cfg config.LifecycleConfig, deps ResetDependencies) *PasswordResetService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &PasswordResetService{
		users:   deps.UserRepo,
		resets:  deps.ResetRepo,
		sink:    deps.Sink,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		cfg:     cfg,
		now:     now,
	}
}

// RequestReset mints a reset token for the named user and mails the reset
// link. An unknown identity produces no token and no mail. A later request
// supersedes earlier tokens without deleting them; only the token string
// presented at completion is checked.
func (s *PasswordResetService) RequestReset(ctx context.Context, username string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token := &domain.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.cfg.ResetTTL()),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}

	s.sink.Enqueue(notify.Notification{
		Recipient:  user.Email,
		TemplateID: notify.TemplatePasswordReset,
		Variables: map[string]any{
			"username": user.Username,
			"link":     s.cfg.BaseURL + "/reset-password?token=" + token.Token,
		},
	})
	s.metrics.RecordLifecycleEvent("reset_requested")
	s.logger.Info("password reset requested", zap.String("username", user.Username))

	return token, nil
}

// CompleteReset consumes the token and stores the new password hash. The
// check order is part of the contract: missing token, then password
// mismatch, then consumed, then expired. Nothing is mutated on a failure
// path; the guarded flip makes a racing duplicate surface as consumed.
func (s *PasswordResetService) CompleteReset(ctx context.Context, tokenStr, newPassword, confirmPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if token.Confirmed {
		return ErrTokenConsumed
	}
	if token.Expired(s.now()) {
		return ErrTokenExpired
	}

	flipped, err := s.resets.MarkConfirmed(ctx, token.Token)
	if err != nil {
		return err
	}
	if !flipped {
		return ErrTokenConsumed
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.metrics.RecordLifecycleEvent("reset_completed")
	s.logger.Info("password reset completed", zap.String("username", user.Username))
	return nil
}

// SweepExpired deletes reset tokens past their expiry. Housekeeping only;
// expired tokens are already rejected on use.
func (s *PasswordResetService) SweepExpired(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpiredBefore(ctx, s.now())
}
