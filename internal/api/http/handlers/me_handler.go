package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
)

// AssignedPoints lists the points an employee may check in at.
type AssignedPoints interface {
	ListForEmployee(ctx context.Context, employeeID int64) ([]domain.CheckInPoint, error)
}

// MeHandler serves the calling employee's own profile.
type MeHandler struct {
	points AssignedPoints
}

// NewMeHandler constructs handler.
func NewMeHandler(points AssignedPoints) *MeHandler {
	return &MeHandler{points: points}
}

// Profile handles GET /api/v1/me.
func (h *MeHandler) Profile(c *fiber.Ctx) error {
	_, employee, err := auth.CurrentEmployee(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEmployeeResponse(employee))
}

// Points handles GET /api/v1/me/points.
func (h *MeHandler) Points(c *fiber.Ctx) error {
	_, employee, err := auth.CurrentEmployee(c)
	if err != nil {
		return err
	}
	points, err := h.points.ListForEmployee(c.UserContext(), employee.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewPointList(points))
}
