package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/fieldops/attendance-service/internal/api/http"
	"github.com/fieldops/attendance-service/internal/api/http/handlers"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/cache"
	"github.com/fieldops/attendance-service/internal/clients"
	"github.com/fieldops/attendance-service/internal/config"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/events"
	"github.com/fieldops/attendance-service/internal/geo"
	"github.com/fieldops/attendance-service/internal/observability"
	"github.com/fieldops/attendance-service/internal/persistence"
	"github.com/fieldops/attendance-service/internal/repository"
	"github.com/fieldops/attendance-service/internal/service"
	"github.com/fieldops/attendance-service/internal/storage"
	"github.com/fieldops/attendance-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	photos, err := storage.NewPhotoStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init photo storage", zap.Error(err))
	}

	employeeRepo := repository.NewEmployeeRepository(pg.Pool)
	adminRepo := repository.NewAdminRepository(pg.Pool)
	pointRepo := repository.NewPointRepository(pg.Pool)
	checkInRepo := repository.NewCheckInRepository(pg.Pool)

	registry := auth.NewSessionRegistry()
	go registry.RunJanitor(ctx, cfg.Session.SweepInterval(), logger)
	observability.RegisterOnlineGauge(prometheus.DefaultRegisterer,
		[]string{domain.RoleEmployee.String(), domain.RoleAdmin.String()},
		func(role string) int {
			r, ok := domain.ParseRole(role)
			if !ok {
				return 0
			}
			return registry.CountActive(r)
		})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	guard := auth.NewGuard(registry, tokens, employeeRepo, adminRepo, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	directoryDeps := service.DirectoryDependencies{
		EmployeeRepo: employeeRepo,
		AdminRepo:    adminRepo,
		Registry:     registry,
		Dispatcher:   dispatcher,
		Logger:       logger,
	}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		EmployeeRepo: employeeRepo,
		AdminRepo:    adminRepo,
		Registry:     registry,
		Tokens:       tokens,
		WeChat:       clients.NewWeChatClient(cfg.WeChat),
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	employeeService := service.NewEmployeeService(*cfg, directoryDeps)
	adminService := service.NewAdminService(*cfg, directoryDeps)
	pointService := service.NewPointService(pointRepo)
	geoService := service.NewGeoService(
		clients.NewAmapClient(cfg.Amap),
		cache.NewGeocodeCache(redis.Client, cfg.Geo.GeocodeCacheTTL()),
		logger,
	)
	checkInService := service.NewCheckInService(service.CheckInDependencies{
		PointRepo:   pointRepo,
		CheckInRepo: checkInRepo,
		Photos:      photos,
		Geo:         geoService,
		Evaluator:   geo.NewEvaluator(cfg.Geo.ToleranceMeters),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	dashboardService := service.NewDashboardService(checkInRepo, registry)

	if err := adminService.EnsureDefaultAdmin(ctx, cfg.Auth.BootstrapAdminUsername, cfg.Auth.BootstrapAdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             cfg.App.BodyLimitBytes,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:      handlers.NewAuthHandler(authService),
		Me:        handlers.NewMeHandler(pointService),
		Geo:       handlers.NewGeoHandler(geoService),
		CheckIn:   handlers.NewCheckInHandler(checkInService),
		Employees: handlers.NewEmployeesHandler(employeeService),
		Points:    handlers.NewPointsHandler(pointService),
		Admins:    handlers.NewAdminsHandler(adminService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Guard:     guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
