package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// AccountsHandler exposes registration, confirmation, and credential
// endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
	tokens   *auth.TokenManager
}

// NewAccountsHandler constructs the handler.
func NewAccountsHandler(accounts *service.AccountService, tokens *auth.TokenManager) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, tokens: tokens}
}

// Register handles POST /accounts/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username, email, password required")
	}

	user, _, err := h.accounts.Register(c.Context(), service.RegisterForm{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Role:         domain.Role(req.Role),
		FederalState: req.FederalState,
		Ressort:      req.Ressort,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"enabled":  user.Enabled,
			},
		},
	})
}

// ConfirmByUser handles GET /confirmation/user?token=...
func (h *AccountsHandler) ConfirmByUser(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}
	if err := h.accounts.ConfirmByUser(c.Context(), token); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"confirmed": true}})
}

// ConfirmByAdmin handles GET /confirmation/office?token=...
func (h *AccountsHandler) ConfirmByAdmin(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}
	if err := h.accounts.ConfirmByAdmin(c.Context(), token); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"confirmed": true}})
}

// Login handles POST /auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	user, err := h.accounts.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return mapServiceError(err)
	}

	token, exp, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ChangeCredentials handles POST /accounts/credentials (authenticated).
func (h *AccountsHandler) ChangeCredentials(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangeCredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	err := h.accounts.ChangeCredentials(c.Context(), service.ChangeCredentialsForm{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
		OldEmail:           req.OldEmail,
		NewEmail:           req.NewEmail,
	}, principal.User)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// ChangeEnabledStatus handles POST /accounts/enabled (office only).
func (h *AccountsHandler) ChangeEnabledStatus(c *fiber.Ctx) error {
	var req dto.EnabledUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	updates := make([]service.EnabledUpdate, len(req.Users))
	for i, entry := range req.Users {
		updates[i] = service.EnabledUpdate{Username: entry.Username, Enabled: entry.Enabled}
	}
	if err := h.accounts.ChangeEnabledStatus(c.Context(), updates); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": len(updates)}})
}

// CheckScope handles GET /accounts/scope?federal_state=...&ressort=...
// (authenticated). It answers whether the caller may touch the target scope.
func (h *AccountsHandler) CheckScope(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var federalState, ressort *string
	if v := c.Query("federal_state"); v != "" {
		federalState = &v
	}
	if v := c.Query("ressort"); v != "" {
		ressort = &v
	}

	if err := h.accounts.AuthorizeForScope(principal.User, federalState, ressort); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"allowed": true}})
}
