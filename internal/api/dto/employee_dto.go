package dto

import (
	"time"

	"github.com/fieldops/attendance-service/internal/domain"
)

// EmployeeCreateRequest payload for issuing a new employee account.
type EmployeeCreateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Account  string `json:"account" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// EmployeeUpdateRequest holds optional changes.
type EmployeeUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
}

// PasswordSetRequest payload for admin-forced password changes.
type PasswordSetRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// EmployeeResponse is the public view of an employee.
type EmployeeResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Account      string    `json:"account"`
	IsActive     bool      `json:"is_active"`
	WeChatBound  bool      `json:"wechat_bound"`
	WeChatOpenID *string   `json:"wechat_openid,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEmployeeResponse converts the domain model.
func NewEmployeeResponse(e *domain.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:           e.ID,
		Name:         e.Name,
		Account:      e.Account,
		IsActive:     e.IsActive,
		WeChatBound:  e.WeChatOpenID != nil && *e.WeChatOpenID != "",
		WeChatOpenID: e.WeChatOpenID,
		CreatedAt:    e.CreatedAt,
	}
}

// NewEmployeeList converts a slice, never returning nil.
func NewEmployeeList(employees []domain.Employee) []*EmployeeResponse {
	out := make([]*EmployeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, NewEmployeeResponse(&employees[i]))
	}
	return out
}
