// Package http holds the fiber handlers of the JSON API. Handlers parse
// and sanitize transport input, delegate to the domain packages, and map
// domain errors to status codes; no aggregation logic lives here.
package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"reftrack/internal/config"
	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/pkg/geoip"
	"reftrack/internal/timeframe"
)

// API bundles the dependencies every handler needs. Constructed once at
// startup; handlers never reach into ambient globals.
type API struct {
	DB     *gorm.DB
	Logger *slog.Logger
	Config *config.Config
	Geo    *geoip.Resolver
	Clock  timeframe.Clock
}

// NewAPI wires the handler set.
func NewAPI(db *gorm.DB, logger *slog.Logger, cfg *config.Config, geo *geoip.Resolver) *API {
	return &API{
		DB:     db,
		Logger: logger,
		Config: cfg,
		Geo:    geo,
		Clock:  timeframe.SystemClock{},
	}
}

// window resolves the period query parameters of a request.
func (a *API) window(c *fiber.Ctx) timeframe.Window {
	return timeframe.Resolve(
		c.Query("period", timeframe.Period30Days),
		c.Query("startDate"),
		c.Query("endDate"),
		a.Clock,
	)
}

// hitFilters builds the hit predicate from a request's query parameters.
// Absent parameters add no constraint. Free-text search is a listing
// concern only; the dashboard aggregates must not shrink on it, so the
// clicks handler adds it separately.
func (a *API) hitFilters(c *fiber.Ctx) hits.Filters {
	return hits.Filters{
		Window:       a.window(c),
		ReferralCode: c.Query("referralCode"),
		Country:      c.Query("country"),
		DeviceType:   c.Query("deviceType"),
		Browser:      c.Query("browser"),
		OS:           c.Query("os"),
	}
}

// fail logs a store failure and returns the generic 500 body. Partial
// results are never returned: callers bail out on the first error.
func (a *API) fail(c *fiber.Ctx, msg string, err error) error {
	a.Logger.Error(msg, slog.Any("error", err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Erro interno. Verifique os logs.",
	})
}

// leadError maps lead domain errors to client responses.
func (a *API) leadError(c *fiber.Ctx, err error) error {
	var verr *leads.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Dados inválidos.",
			"fields": verr.Fields,
		})
	}
	if errors.Is(err, leads.ErrLeadNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead não encontrado.",
		})
	}
	return a.fail(c, "Lead operation failed", err)
}
