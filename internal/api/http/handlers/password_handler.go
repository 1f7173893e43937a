package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/service"
)

// PasswordHandler exposes the password reset endpoints.
type PasswordHandler struct {
	resets *service.PasswordResetService
}

// NewPasswordHandler constructs the handler.
func NewPasswordHandler(resets *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// RequestReset handles POST /password/reset/request.
func (h *PasswordHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		return fiber.NewError(http.StatusBadRequest, "username required")
	}

	if _, err := h.resets.RequestReset(c.Context(), req.Username); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// CompleteReset handles POST /password/reset/complete.
func (h *PasswordHandler) CompleteReset(c *fiber.Ctx) error {
	var req dto.ResetCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new password required")
	}

	if err := h.resets.CompleteReset(c.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}
