package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// newTestApp renders errors the same way the production middleware does.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    de.Code,
				"message": de.Message,
				"details": de.Details,
			}})
		},
	})
}

func asEmployee(e *domain.Employee) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.SetPrincipal(c, &auth.Principal{Role: domain.RoleEmployee, Token: "employee-token", Employee: e})
		return c.Next()
	}
}

func asAdmin(a *domain.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.SetPrincipal(c, &auth.Principal{Role: domain.RoleAdmin, Token: "admin-token", Admin: a})
		return c.Next()
	}
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}
