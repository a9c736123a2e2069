package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"reftrack/internal/analytics"
	"reftrack/internal/leads"
	"reftrack/internal/pkg/async"
	"reftrack/internal/referrers"
)

// statsResponse flattens the rollup into the response body next to the
// generation time.
type statsResponse struct {
	analytics.Stats
	GeneratedAt string `json:"generatedAt"`
}

// Stats serves the lead-centric rollup. Unlike the dashboard it ignores
// period parameters: the recent and timeline cutoffs are fixed relative
// to now.
func (a *API) Stats(c *fiber.Ctx) error {
	pool := async.NewPool(2)
	results := pool.Execute(c.Context(), []async.Task{
		{
			Name: "leads",
			Execute: func() (interface{}, error) {
				return leads.ListAll(a.DB)
			},
		},
		{
			Name: "referrers",
			Execute: func() (interface{}, error) {
				return referrers.All(a.DB)
			},
		},
	})

	if failed := async.FirstError(results); failed != nil {
		a.Logger.Error("Stats read failed",
			slog.String("task", failed.Name),
			slog.Any("error", failed.Err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro interno. Verifique os logs.",
		})
	}

	allLeads := results["leads"].Data.([]leads.Lead)
	allReferrers := results["referrers"].Data.([]referrers.Referrer)

	return c.JSON(statsResponse{
		Stats:       analytics.ComputeStats(allLeads, allReferrers, a.Clock.Now()),
		GeneratedAt: a.Clock.Now().Format(time.RFC3339),
	})
}
