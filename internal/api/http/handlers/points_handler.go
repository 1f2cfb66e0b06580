package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	"github.com/fieldops/attendance-service/internal/service"
)

// PointCatalog is the subset of the point service used by administrators.
type PointCatalog interface {
	Create(ctx context.Context, input service.PointInput) (*domain.CheckInPoint, error)
	Update(ctx context.Context, id int64, input service.PointInput) (*domain.CheckInPoint, error)
	List(ctx context.Context, filter repository.PointFilter) ([]domain.CheckInPoint, error)
	Delete(ctx context.Context, id int64) error
}

// PointsHandler exposes check-in point administration.
type PointsHandler struct {
	points PointCatalog
}

// NewPointsHandler constructs handler.
func NewPointsHandler(points PointCatalog) *PointsHandler {
	return &PointsHandler{points: points}
}

// Create handles POST /api/v1/admin/points.
func (h *PointsHandler) Create(c *fiber.Ctx) error {
	var req dto.PointRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	point, err := h.points.Create(c.UserContext(), pointInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewPointResponse(point))
}

// List handles GET /api/v1/admin/points?keyword=&skip=&limit=.
func (h *PointsHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	points, err := h.points.List(c.UserContext(), repository.PointFilter{
		Keyword: c.Query("keyword"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewPointList(points))
}

// Update handles PUT /api/v1/admin/points/:id.
func (h *PointsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.PointRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	point, err := h.points.Update(c.UserContext(), id, pointInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewPointResponse(point))
}

// Delete handles DELETE /api/v1/admin/points/:id.
func (h *PointsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.points.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// pointInput expects a validated request; coordinates are non-nil.
func pointInput(req dto.PointRequest) service.PointInput {
	return service.PointInput{
		Title:        req.Title,
		Address:      req.Address,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.Radius,
		EmployeeIDs:  req.EmployeeIDs,
	}
}
