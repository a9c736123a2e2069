package internal

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"reftrack/internal/config"
	"reftrack/internal/http"
	"reftrack/internal/http/middleware"
)

// publicCORSConfig is the permissive CORS setup shared by the public
// tracking endpoints, which are hit cross-origin from referral pages.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Referer, User-Agent",
}

// MountRoutes wires every endpoint onto the fiber app. The admin API
// sits behind bearer-token auth; tracking and health stay public.
func MountRoutes(app *fiber.App, api *http.API, cfg *config.Config) {
	app.Get("/health", api.Health)

	// Public tracking endpoints.
	track := app.Group("/t", cors.New(publicCORSConfig))
	track.Post("/:code", api.Track)
	track.Get("/:code/pixel", api.TrackPixel)

	app.Post("/api/auth/login", api.Login)

	// Admin API.
	admin := app.Group("/api", middleware.RequireAuth(cfg.JWTSecret, api.Logger))
	admin.Get("/analytics", api.Dashboard)
	admin.Get("/analytics/clicks", api.Clicks)
	admin.Get("/analytics/filters", api.Filters)
	admin.Get("/stats", api.Stats)
	admin.Get("/leads", api.ListLeads)
	admin.Post("/leads", api.CreateLead)
	admin.Patch("/leads/:id/stage", api.UpdateLeadStage)
}
