package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bookticket/user-service/internal/api/dto"
	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/domain"
	"github.com/bookticket/user-service/internal/service"
	apperrors "github.com/bookticket/user-service/pkg/util"
)

// AccountsHandler exposes registration, login and profile endpoints.
type AccountsHandler struct {
	auth     *service.AuthService
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService, accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{auth: authService, accounts: accountService}
}

// Register handles POST /api/v1/auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Handle == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("handle, email, password required", nil)
	}

	account, issued, err := h.auth.Register(c.UserContext(), req.Handle, req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.FromAccount(account),
			"auth":    dto.FromIssuedToken(issued),
		},
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	issued, err := h.auth.Login(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"auth": dto.FromIssuedToken(issued)},
	})
}

// Me handles GET /api/v1/users/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	account, err := h.accounts.GetByID(c.UserContext(), principal.AccountID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"account": dto.FromAccount(account)}})
}

// Update handles PUT /api/v1/users/me. Identity claims may change, so a
// fresh token is returned alongside the account.
func (h *AccountsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	current, err := h.accounts.GetByID(c.UserContext(), principal.AccountID)
	if err != nil {
		return err
	}
	if !auth.CanModify(principal, current.ID) {
		return apperrors.NewForbidden("cannot modify this account")
	}

	account, issued, err := h.auth.UpdateProfile(c.UserContext(), current.Email, domain.IdentityPatch{
		Handle: req.Handle,
		Email:  req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.FromAccount(account),
			"auth":    dto.FromIssuedToken(issued),
		},
	})
}

// Delete handles DELETE /api/v1/users/me.
func (h *AccountsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	account, err := h.accounts.GetByID(c.UserContext(), principal.AccountID)
	if err != nil {
		return err
	}
	if !auth.CanModify(principal, account.ID) {
		return apperrors.NewForbidden("cannot delete this account")
	}

	if err := h.accounts.DeleteByEmail(c.UserContext(), account.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
