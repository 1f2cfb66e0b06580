package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
)

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// GeoHandler exposes reverse geocoding to the mini program.
type GeoHandler struct {
	geo Geocoder
}

// NewGeoHandler constructs handler.
func NewGeoHandler(geo Geocoder) *GeoHandler {
	return &GeoHandler{geo: geo}
}

// Regeo handles GET /api/v1/geo/regeo?lat=&lon=.
func (h *GeoHandler) Regeo(c *fiber.Ctx) error {
	lat, err := requiredFloat("lat", c.Query("lat"))
	if err != nil {
		return err
	}
	lon, err := requiredFloat("lon", c.Query("lon"))
	if err != nil {
		return err
	}

	address, err := h.geo.ReverseGeocode(c.UserContext(), lat, lon)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.GeoResponse{Address: address})
}
