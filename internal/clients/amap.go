package clients

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fieldops/attendance-service/internal/config"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

const regeoPath = "/v3/geocode/regeo"

// AmapClient resolves coordinates to a human-readable address.
type AmapClient struct {
	baseURL string
	key     string
	timeout time.Duration
}

// NewAmapClient creates the client from configuration.
func NewAmapClient(cfg config.AmapConfig) *AmapClient {
	return &AmapClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.Key,
		timeout: cfg.Timeout(),
	}
}

type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	InfoCode  string `json:"infocode"`
	Regeocode struct {
		// AMap returns [] instead of "" when no address is known.
		FormattedAddress any `json:"formatted_address"`
	} `json:"regeocode"`
}

// ReverseGeocode returns the formatted address for (lat, lon).
func (c *AmapClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("key", c.key)
	// AMap expects "lon,lat".
	params.Set("location", formatCoord(lon)+","+formatCoord(lat))
	params.Set("extensions", "base")
	params.Set("output", "JSON")

	var resp regeoResponse
	if _, err := getJSON(ctx, c.baseURL+regeoPath, params, c.timeout, &resp); err != nil {
		return "", apperrors.NewUpstreamUnavailable("amap", err)
	}
	if resp.Status != "1" {
		return "", apperrors.NewUpstreamUnavailable("amap", errors.New("regeo failed: "+resp.Info))
	}

	address, _ := resp.Regeocode.FormattedAddress.(string)
	return address, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
