package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	"github.com/fieldops/attendance-service/internal/service"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// CheckInAPI is the subset of the check-in service used over HTTP.
type CheckInAPI interface {
	Submit(ctx context.Context, input service.CheckInInput) (*service.CheckInResult, error)
	History(ctx context.Context, employeeID int64, limit, offset int) ([]domain.CheckInRecord, error)
	List(ctx context.Context, filter repository.CheckInFilter) ([]domain.CheckInRecord, error)
}

// CheckInHandler accepts photo check-ins and serves record history.
type CheckInHandler struct {
	checkins CheckInAPI
}

// NewCheckInHandler constructs handler.
func NewCheckInHandler(checkins CheckInAPI) *CheckInHandler {
	return &CheckInHandler{checkins: checkins}
}

// Upload handles POST /api/v1/checkin/upload (multipart: point_id, lat, lon, file).
func (h *CheckInHandler) Upload(c *fiber.Ctx) error {
	_, employee, err := auth.CurrentEmployee(c)
	if err != nil {
		return err
	}

	pointID, err := requiredID("point_id", c.FormValue("point_id"))
	if err != nil {
		return err
	}
	lat, err := requiredFloat("lat", c.FormValue("lat"))
	if err != nil {
		return err
	}
	lon, err := requiredFloat("lon", c.FormValue("lon"))
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("invalid request", map[string]any{"file": "is required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	res, err := h.checkins.Submit(c.UserContext(), service.CheckInInput{
		EmployeeID:  employee.ID,
		PointID:     pointID,
		Latitude:    lat,
		Longitude:   lon,
		Photo:       file,
		PhotoSize:   header.Size,
		ContentType: header.Header.Get(fiber.HeaderContentType),
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, dto.CheckInResponse{
		Record:         dto.NewRecordResponse(res.Record),
		DistanceMeters: res.Verdict.DistanceMeters,
		AllowedMeters:  res.Verdict.AllowedMeters,
	})
}

// MyRecords handles GET /api/v1/checkin/records.
func (h *CheckInHandler) MyRecords(c *fiber.Ctx) error {
	_, employee, err := auth.CurrentEmployee(c)
	if err != nil {
		return err
	}
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	records, err := h.checkins.History(c.UserContext(), employee.ID, limit, offset)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewRecordList(records))
}

// AdminRecords handles GET /api/v1/admin/records.
func (h *CheckInHandler) AdminRecords(c *fiber.Ctx) error {
	filter, err := recordFilter(c)
	if err != nil {
		return err
	}
	records, err := h.checkins.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewRecordList(records))
}

func recordFilter(c *fiber.Ctx) (repository.CheckInFilter, error) {
	var (
		filter repository.CheckInFilter
		err    error
	)
	if filter.EmployeeID, err = optionalID("employee_id", c.Query("employee_id")); err != nil {
		return filter, err
	}
	if filter.PointID, err = optionalID("point_id", c.Query("point_id")); err != nil {
		return filter, err
	}
	if filter.From, err = optionalTime("from", c.Query("from")); err != nil {
		return filter, err
	}
	if filter.To, err = optionalTime("to", c.Query("to")); err != nil {
		return filter, err
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.To.After(filter.From) {
		return filter, apperrors.NewValidationError("invalid request", map[string]any{"to": "must be after from"})
	}
	filter.Limit, filter.Offset, err = page(c)
	return filter, err
}
