package dto

import (
	"time"

	"github.com/fieldops/attendance-service/internal/domain"
)

// AdminCreateRequest payload for a new administrator.
type AdminCreateRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AdminUpdateRequest renames an administrator.
type AdminUpdateRequest struct {
	Username string `json:"username" validate:"required,max=50"`
}

// AdminResponse is the public view of an administrator.
type AdminResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAdminResponse converts the domain model.
func NewAdminResponse(a *domain.Admin) *AdminResponse {
	return &AdminResponse{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt}
}

// NewAdminList converts a slice, never returning nil.
func NewAdminList(admins []domain.Admin) []*AdminResponse {
	out := make([]*AdminResponse, 0, len(admins))
	for i := range admins {
		out = append(out, NewAdminResponse(&admins[i]))
	}
	return out
}
