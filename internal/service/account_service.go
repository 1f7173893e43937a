package service

import (
	"context"
	"errors"
	"fmt"
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

// RegisterForm carries validated registration input from the controller
// layer.
type RegisterForm struct {
	Username     string
	Email        string
	Password     string
	Role         domain.Role
	FederalState string
	Ressort      string
}

// ChangeCredentialsForm carries self-service credential changes. Empty old
// values mean the corresponding branch is skipped.
type ChangeCredentialsForm struct {
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
	OldEmail           string
	NewEmail           string
}

// EnabledUpdate is one row of the office bulk enable/disable form.
type EnabledUpdate struct {
	Username string
	Enabled  bool
}

// AccountService orchestrates registration, dual confirmation, credential
// change, and scoped authorization. It is the sole writer of user and
// confirmation-token records.
type AccountService struct {
	users   repository.UserRepository
	tokens  repository.ConfirmationTokenRepository
	sink    notify.Sink
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     config.LifecycleConfig
	now     func() time.Time
}

// AccountDependencies bundles collaborator requirements.
type AccountDependencies struct {
	UserRepo  repository.UserRepository
	TokenRepo repository.ConfirmationTokenRepository
	Sink      notify.Sink
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	// Now overrides the clock; defaults to time.Now. All expiry comparisons
	// go through it.
	Now func() time.Time
}

// NewAccountService builds the service.
func NewAccountService(cfg config.LifecycleConfig, deps AccountDependencies) *AccountService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		users:   deps.UserRepo,
		tokens:  deps.TokenRepo,
		sink:    deps.Sink,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		cfg:     cfg,
		now:     now,
	}
}

// Register creates a disabled user and its confirmation token, then mails
// the confirmation link. The username is the canonical identity key; the
// insert is serialized through the unique constraint, so a collision leaves
// the store unchanged.
func (s *AccountService) Register(ctx context.Context, form RegisterForm) (*domain.User, *domain.ConfirmationToken, error) {
	hash, err := auth.HashPassword(form.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	role := form.Role
	if role == "" {
		role = domain.RoleOperator
	}

	user := &domain.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		Enabled:      false,
		Roles:        []domain.Role{role},
	}
	switch role {
	case domain.RoleFederalState:
		fs := form.FederalState
		user.FederalState = &fs
	case domain.RoleRessort:
		rs := form.Ressort
		user.Ressort = &rs
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, err
	}

	now := s.now()
	token := &domain.ConfirmationToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ConfirmationTTL()),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, nil, err
	}

	s.sink.Enqueue(notify.Notification{
		Recipient:  user.Email,
		TemplateID: notify.TemplateUserRegistration,
		Variables: map[string]any{
			"username": user.Username,
			"link":     s.confirmationLink("user", token.Token),
		},
	})
	s.metrics.RecordLifecycleEvent("registration")
	s.logger.Info("user registered", zap.String("username", user.Username))

	return user, token, nil
}

// ConfirmByUser records the user-side confirmation. Repeat calls are no-ops
// and send nothing. The first flip notifies every enabled office user; if
// the office already confirmed, the account is activated.
func (s *AccountService) ConfirmByUser(ctx context.Context, tokenStr string) error {
	token, err := s.getUsableToken(ctx, tokenStr)
	if err != nil {
		return err
	}

	token, flipped, err := s.tokens.MarkUserConfirmed(ctx, token.Token)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	newUser, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}

	officeUsers, err := s.users.FindByRole(ctx, domain.RoleOffice)
	if err != nil {
		return err
	}
	adminLink := s.confirmationLink("office", token.Token)
	for _, officeUser := range officeUsers {
		if !officeUser.Enabled {
			continue
		}
		s.sink.Enqueue(notify.Notification{
			Recipient:  officeUser.Email,
			TemplateID: notify.TemplateOfficeConfirm,
			Variables: map[string]any{
				"username":    officeUser.Username,
				"newUsername": newUser.Username,
				"newEmail":    newUser.Email,
				"link":        adminLink,
			},
		})
	}

	if token.AdminConfirmed {
		return s.activate(ctx, token.UserID)
	}
	return nil
}

// ConfirmByAdmin records the office-side confirmation. When the user side is
// already confirmed the account is enabled and the activation mail goes out;
// a partial confirmation is recorded silently.
func (s *AccountService) ConfirmByAdmin(ctx context.Context, tokenStr string) error {
	token, err := s.getUsableToken(ctx, tokenStr)
	if err != nil {
		return err
	}

	token, _, err = s.tokens.MarkAdminConfirmed(ctx, token.Token, s.now())
	if err != nil {
		return err
	}

	if token.UserConfirmed {
		return s.activate(ctx, token.UserID)
	}
	return nil
}

// activate enables the user. The guarded flip makes the activation mail
// fire exactly once per account across confirmation orderings and
// concurrent confirmations.
func (s *AccountService) activate(ctx context.Context, userID string) error {
	flipped, err := s.users.Enable(ctx, userID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	s.sink.Enqueue(notify.Notification{
		Recipient:  user.Email,
		TemplateID: notify.TemplateUserEnabled,
		Variables: map[string]any{
			"username": user.Username,
			"link":     s.cfg.BaseURL + "/login",
		},
	})
	s.metrics.RecordLifecycleEvent("account_activated")
	s.logger.Info("account activated", zap.String("username", user.Username))
	return nil
}

// ChangeCredentials applies the password and email branches independently
// and persists once after both are evaluated.
func (s *AccountService) ChangeCredentials(ctx context.Context, form ChangeCredentialsForm, user *domain.User) error {
	if form.OldPassword != "" {
		if auth.ComparePassword(user.PasswordHash, form.OldPassword) != nil || form.NewPassword != form.ConfirmNewPassword {
			return ErrPasswordMismatch
		}
		// Re-submitting the current password is a no-op, not an error.
		if form.OldPassword != form.NewPassword {
			hash, err := auth.HashPassword(form.NewPassword, s.cfg.BcryptCost)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
	}

	if form.OldEmail != "" {
		if form.OldEmail != user.Email {
			return ErrEmailMismatch
		}
		if form.OldEmail != form.NewEmail {
			user.Email = form.NewEmail
		}
	}

	return s.users.Update(ctx, user)
}

// ChangeEnabledStatus lets the office bulk-toggle accounts. Every account
// whose flag actually changed gets a notification.
func (s *AccountService) ChangeEnabledStatus(ctx context.Context, updates []EnabledUpdate) error {
	var changed []*domain.User
	for _, update := range updates {
		user, err := s.users.GetByUsername(ctx, update.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Enabled == update.Enabled {
			continue
		}
		user.Enabled = update.Enabled
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		changed = append(changed, user)
	}

	for _, user := range changed {
		s.sink.Enqueue(notify.Notification{
			Recipient:  user.Email,
			TemplateID: notify.TemplateChangedEnabled,
			Variables: map[string]any{
				"username": user.Username,
				"enabled":  user.Enabled,
			},
		})
	}
	return nil
}

// AuthorizeForScope checks whether the user may touch data of the target
// federal state or ressort. First match wins; this is a flat membership
// check, deliberately independent from the coarse role hierarchy.
func (s *AccountService) AuthorizeForScope(user *domain.User, federalState, ressort *string) error {
	if user.HasRole(domain.RoleSuperadmin) {
		return nil
	}
	if user.HasRole(domain.RoleFederalState) && user.FederalState != nil && federalState != nil && *user.FederalState == *federalState {
		return nil
	}
	if user.HasRole(domain.RoleRessort) && user.Ressort != nil && ressort != nil && *user.Ressort == *ressort {
		return nil
	}

	if federalState != nil {
		return &AccessDeniedError{Scope: "federal state"}
	}
	return &AccessDeniedError{Scope: "ressort"}
}

// AffiliationName resolves the user's federal-state or ressort name, falling
// back to the configured default federal state.
func (s *AccountService) AffiliationName(user *domain.User) string {
	if user.HasRole(domain.RoleFederalState) && user.FederalState != nil {
		return *user.FederalState
	}
	if user.HasRole(domain.RoleRessort) && user.Ressort != nil {
		return *user.Ressort
	}
	return s.cfg.DefaultFederalState
}

func (s *AccountService) getUsableToken(ctx context.Context, tokenStr string) (*domain.ConfirmationToken, error) {
	token, err := s.tokens.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if token.Expired(s.now()) {
		return nil, ErrTokenExpired
	}
	return token, nil
}

func (s *AccountService) confirmationLink(side, token string) string {
	return fmt.Sprintf("%s/confirmation/%s?token=%s", s.cfg.BaseURL, side, token)
}
