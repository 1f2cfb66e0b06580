package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func paramID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

// page reads skip/limit query params.
func page(c *fiber.Ctx) (limit, offset int, err error) {
	offset = c.QueryInt("skip", 0)
	limit = c.QueryInt("limit", defaultPageSize)
	if offset < 0 || limit <= 0 || limit > maxPageSize {
		return 0, 0, apperrors.NewValidationError("invalid pagination", map[string]any{
			"skip":  c.Query("skip"),
			"limit": c.Query("limit"),
		})
	}
	return limit, offset, nil
}

func requiredFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid request", map[string]any{name: "must be a number"})
	}
	return v, nil
}

func requiredID(name, raw string) (int64, error) {
	v, err := optionalID(name, raw)
	if err == nil && v == 0 {
		err = apperrors.NewValidationError("invalid request", map[string]any{name: "is required"})
	}
	return v, err
}

// optionalID returns 0 for an empty value.
func optionalID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperrors.NewValidationError("invalid request", map[string]any{name: "must be a positive integer"})
	}
	return v, nil
}

func optionalBool(name, raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid request", map[string]any{name: "must be a boolean"})
	}
	return &v, nil
}

// optionalTime accepts RFC 3339 timestamps or bare dates in server local time.
func optionalTime(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.NewValidationError("invalid request", map[string]any{name: "must be RFC 3339 or YYYY-MM-DD"})
}
