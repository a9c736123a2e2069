package http

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"reftrack/internal/analytics"
	"reftrack/internal/hits"
	"reftrack/internal/leads"
	"reftrack/internal/pkg/async"
	"reftrack/internal/referrers"
	"reftrack/internal/timeframe"
)

// dashboardResponse flattens the computed dashboard into the response
// body, with the resolved window and generation time alongside the
// aggregation fields rather than nested under an envelope.
type dashboardResponse struct {
	analytics.Dashboard
	Period      timeframe.Window `json:"period"`
	GeneratedAt string           `json:"generatedAt"`
}

// Dashboard serves the aggregated analytics snapshot for the requested
// window and filters. The four store reads are independent, so they run
// concurrently; any failure fails the whole request.
func (a *API) Dashboard(c *fiber.Ctx) error {
	filters := a.hitFilters(c)

	pool := async.NewPool(4)
	results := pool.Execute(c.Context(), []async.Task{
		{
			Name: "hits",
			Execute: func() (interface{}, error) {
				return hits.InWindow(a.DB, filters)
			},
		},
		{
			Name: "leads",
			Execute: func() (interface{}, error) {
				return leads.InWindow(a.DB, filters.Window, filters.ReferralCode)
			},
		},
		{
			Name: "referrers",
			Execute: func() (interface{}, error) {
				return referrers.All(a.DB)
			},
		},
		{
			Name: "previousClicks",
			Execute: func() (interface{}, error) {
				return hits.CountPrevious(a.DB, filters.Window, filters.ReferralCode)
			},
		},
	})

	if failed := async.FirstError(results); failed != nil {
		a.Logger.Error("Dashboard read failed",
			slog.String("task", failed.Name),
			slog.Any("error", failed.Err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro interno. Verifique os logs.",
		})
	}

	snapshot := analytics.Snapshot{
		Window:         filters.Window,
		Hits:           results["hits"].Data.([]hits.Hit),
		Leads:          results["leads"].Data.([]leads.Lead),
		Referrers:      results["referrers"].Data.([]referrers.Referrer),
		PreviousClicks: results["previousClicks"].Data.(int64),
	}

	return c.JSON(dashboardResponse{
		Dashboard:   analytics.Compute(snapshot),
		Period:      filters.Window,
		GeneratedAt: a.Clock.Now().Format(time.RFC3339),
	})
}

// Clicks serves the paginated, filtered click listing.
func (a *API) Clicks(c *fiber.Ctx) error {
	filters := a.hitFilters(c)
	filters.Search = c.Query("search")

	params := hits.ListParams{
		Filters:   filters,
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 50),
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	}

	page, err := analytics.ListClicks(a.DB, params)
	if err != nil {
		return a.fail(c, "Failed to list clicks", err)
	}
	return c.JSON(page)
}

// Filters serves the filter catalog: every distinct value the stored
// hits carry for the filterable dimensions, plus the referrer roster.
func (a *API) Filters(c *fiber.Ctx) error {
	catalog, err := analytics.BuildCatalog(a.DB)
	if err != nil {
		return a.fail(c, "Failed to build filter catalog", err)
	}
	return c.JSON(catalog)
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
