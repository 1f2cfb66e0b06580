package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fieldops/attendance-service/internal/observability"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path string) (int, errorBody, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body, resp.Header.Get(observability.RequestIDHeader)
}

func newMiddlewareApp(logger *zap.Logger) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, logger, time.Second)
	app.Get("/domain", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("outside check-in range", map[string]any{"allowed_meters": 550})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("nil map write")
	})
	app.Get("/opaque", func(c *fiber.Ctx) error {
		return errors.New("connection reset")
	})
	app.Get("/deadline", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})
	return app
}

func TestErrorMiddleware_RendersEnvelope(t *testing.T) {
	app := newMiddlewareApp(zap.NewNop())

	status, body, requestID := call(t, app, fiber.MethodGet, "/domain")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidation, body.Error.Code)
	assert.Equal(t, "outside check-in range", body.Error.Message)
	assert.Equal(t, float64(550), body.Error.Details["allowed_meters"])
	assert.NotEmpty(t, requestID)
}

func TestErrorMiddleware_HidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := newMiddlewareApp(zap.New(core))

	status, body, _ := call(t, app, fiber.MethodGet, "/opaque")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	app := newMiddlewareApp(zap.New(core))

	status, body, _ := call(t, app, fiber.MethodGet, "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body.Error.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestErrorMiddleware_MapsFiberErrors(t *testing.T) {
	app := newMiddlewareApp(zap.NewNop())

	status, body, _ := call(t, app, fiber.MethodGet, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
	assert.Equal(t, "route not found", body.Error.Message)
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	app := newMiddlewareApp(zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/deadline", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"deadline":true}`, string(raw))
}
