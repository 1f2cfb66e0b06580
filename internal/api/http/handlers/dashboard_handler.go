package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/service"
)

// StatsSource computes the dashboard summary.
type StatsSource interface {
	Stats(ctx context.Context) (*service.DashboardStats, error)
}

// DashboardHandler serves the admin landing page numbers.
type DashboardHandler struct {
	stats StatsSource
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats StatsSource) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Stats handles GET /api/v1/admin/dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DashboardStatsResponse{
		TodayCheckInCount:   stats.TodayCheckInCount,
		OnlineEmployeeCount: stats.OnlineEmployeeCount,
	})
}
