package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
)

// AdminDirectory is the subset of the admin service used over HTTP.
type AdminDirectory interface {
	Create(ctx context.Context, username, password string) (*domain.Admin, error)
	List(ctx context.Context, filter repository.AdminFilter) ([]domain.Admin, error)
	Rename(ctx context.Context, id int64, username string) (*domain.Admin, error)
	SetPassword(ctx context.Context, actorID, id int64, newPassword string) error
	Delete(ctx context.Context, actorID, id int64) error
}

// AdminsHandler exposes administrator account management.
type AdminsHandler struct {
	admins AdminDirectory
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(admins AdminDirectory) *AdminsHandler {
	return &AdminsHandler{admins: admins}
}

// Create handles POST /api/v1/admin/manage.
func (h *AdminsHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	admin, err := h.admins.Create(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewAdminResponse(admin))
}

// List handles GET /api/v1/admin/manage?username=&skip=&limit=.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	admins, err := h.admins.List(c.UserContext(), repository.AdminFilter{
		Username: c.Query("username"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminList(admins))
}

// Rename handles PUT /api/v1/admin/manage/:id.
func (h *AdminsHandler) Rename(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	admin, err := h.admins.Rename(c.UserContext(), id, req.Username)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminResponse(admin))
}

// SetPassword handles POST /api/v1/admin/manage/:id/password.
func (h *AdminsHandler) SetPassword(c *fiber.Ctx) error {
	_, actor, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.PasswordSetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.admins.SetPassword(c.UserContext(), actor.ID, id, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/admin/manage/:id.
func (h *AdminsHandler) Delete(c *fiber.Ctx) error {
	_, actor, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.admins.Delete(c.UserContext(), actor.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
