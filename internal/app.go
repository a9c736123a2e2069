// Package internal wires configuration, storage and the HTTP surface
// into a runnable application.
package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"reftrack/internal/config"
	"reftrack/internal/database"
	"reftrack/internal/http"
	"reftrack/internal/logging"
	"reftrack/internal/pkg/geoip"
)

// Application owns the long-lived pieces of the service.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Geo       *geoip.Resolver
	Server    *fiber.App
}

// NewApp builds the application from the ambient configuration: logger,
// database handle, optional GeoLite2 resolver, and the fiber server with
// all routes mounted. It does not run migrations or start listening.
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	geo := geoip.NewResolver(cfg.GeoDBPath, logger)

	server := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	server.Use(recover.New())

	api := http.NewAPI(dbManager.GetConnection(), logger, cfg, geo)
	MountRoutes(server, api, cfg)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Geo:       geo,
		Server:    server,
	}, nil
}

// Migrate applies the schema.
func (a *Application) Migrate() error {
	return a.DBManager.Migrate()
}

// Start blocks serving HTTP until Shutdown is called or the listener
// fails.
func (a *Application) Start() error {
	addr := ":" + a.Config.AppPort
	a.Logger.Info("Starting server",
		slog.String("addr", addr),
		slog.String("environment", a.Config.Environment))
	return a.Server.Listen(addr)
}

// Shutdown drains in-flight requests and releases the database and
// GeoIP handles.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down")

	if err := a.Server.ShutdownWithContext(ctx); err != nil {
		a.Logger.Error("Server shutdown failed", slog.Any("error", err))
	}
	if a.Geo != nil {
		a.Geo.Close()
	}
	return a.DBManager.Close()
}
