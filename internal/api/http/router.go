package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldops/attendance-service/internal/api/http/handlers"
	"github.com/fieldops/attendance-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Me        *handlers.MeHandler
	Geo       *handlers.GeoHandler
	CheckIn   *handlers.CheckInHandler
	Employees *handlers.EmployeesHandler
	Points    *handlers.PointsHandler
	Admins    *handlers.AdminsHandler
	Dashboard *handlers.DashboardHandler
	Guard     *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/wechat_login", cfg.Auth.WeChatLogin)
	authGroup.Post("/admin_login", cfg.Auth.AdminLogin)

	requireEmployee := cfg.Guard.RequireEmployee()
	authGroup.Post("/logout", requireEmployee, cfg.Auth.Logout)

	me := api.Group("/me", requireEmployee)
	me.Get("", cfg.Me.Profile)
	me.Post("/password", cfg.Auth.ChangeEmployeePassword)
	me.Get("/points", cfg.Me.Points)

	api.Get("/geo/regeo", requireEmployee, cfg.Geo.Regeo)

	checkin := api.Group("/checkin", requireEmployee)
	checkin.Post("/upload", cfg.CheckIn.Upload)
	checkin.Get("/records", cfg.CheckIn.MyRecords)

	admin := api.Group("/admin", cfg.Guard.RequireAdmin())
	admin.Post("/logout", cfg.Auth.Logout)
	admin.Get("/dashboard/stats", cfg.Dashboard.Stats)
	admin.Get("/records", cfg.CheckIn.AdminRecords)

	employees := admin.Group("/employees")
	employees.Post("", cfg.Employees.Create)
	employees.Get("", cfg.Employees.List)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", cfg.Employees.Delete)
	employees.Post("/:id/password", cfg.Employees.ResetPassword)
	employees.Post("/:id/unbind_wechat", cfg.Employees.UnbindWeChat)

	points := admin.Group("/points")
	points.Post("", cfg.Points.Create)
	points.Get("", cfg.Points.List)
	points.Put("/:id", cfg.Points.Update)
	points.Delete("/:id", cfg.Points.Delete)

	manage := admin.Group("/manage")
	manage.Post("", cfg.Admins.Create)
	manage.Get("", cfg.Admins.List)
	manage.Post("/password_myself", cfg.Auth.ChangeAdminPassword)
	manage.Put("/:id", cfg.Admins.Rename)
	manage.Delete("/:id", cfg.Admins.Delete)
	manage.Post("/:id/password", cfg.Admins.SetPassword)
}
