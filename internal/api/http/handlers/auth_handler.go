package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/service"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// AuthAPI is the subset of the auth service used over HTTP.
type AuthAPI interface {
	LoginEmployee(ctx context.Context, account, password, code string) (*service.LoginResult, error)
	LoginAdmin(ctx context.Context, username, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, token string)
	ChangeEmployeePassword(ctx context.Context, employeeID int64, oldPassword, newPassword string) error
	ChangeAdminPassword(ctx context.Context, adminID int64, oldPassword, newPassword string) error
}

// AuthHandler exposes login, logout and self-service password changes.
type AuthHandler struct {
	auth AuthAPI
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthAPI) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// WeChatLogin handles POST /api/v1/auth/wechat_login.
func (h *AuthHandler) WeChatLogin(c *fiber.Ctx) error {
	var req dto.WeChatLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.LoginEmployee(c.UserContext(), req.Account, req.Password, req.Code)
	if err != nil {
		return err
	}

	resp := dto.NewLoginResponse(res.Token)
	resp.Employee = dto.NewEmployeeResponse(res.Employee)
	return respond(c, http.StatusOK, resp)
}

// AdminLogin handles POST /api/v1/auth/admin_login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.LoginAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	resp := dto.NewLoginResponse(res.Token)
	resp.Admin = dto.NewAdminResponse(res.Admin)
	return respond(c, http.StatusOK, resp)
}

// Logout drops the presented session. Serves both roles.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	h.auth.Logout(c.UserContext(), principal.Token)
	return c.SendStatus(http.StatusNoContent)
}

// ChangeEmployeePassword handles POST /api/v1/me/password.
func (h *AuthHandler) ChangeEmployeePassword(c *fiber.Ctx) error {
	_, employee, err := auth.CurrentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangeEmployeePassword(c.UserContext(), employee.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeAdminPassword handles POST /api/v1/admin/manage/password_myself.
func (h *AuthHandler) ChangeAdminPassword(c *fiber.Ctx) error {
	_, admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangeAdminPassword(c.UserContext(), admin.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
