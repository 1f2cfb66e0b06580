package dto

import (
	"time"

	"github.com/fieldops/attendance-service/internal/domain"
)

// WeChatLoginRequest payload for employee login from the mini program.
type WeChatLoginRequest struct {
	Account  string `json:"account" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

// AdminLoginRequest payload for administrator login.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for self-service password changes.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72,nefield=OldPassword"`
}

// LoginResponse standard response for both login endpoints.
type LoginResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresAt time.Time         `json:"expires_at"`
	Employee  *EmployeeResponse `json:"employee_info,omitempty"`
	Admin     *AdminResponse    `json:"admin_info,omitempty"`
}

// NewLoginResponse renders an issued token.
func NewLoginResponse(token domain.Token) LoginResponse {
	return LoginResponse{Token: token.Value, TokenType: "bearer", ExpiresAt: token.ExpiresAt}
}
