package http

import (
	"github.com/gofiber/fiber/v2"

	"reftrack/internal/leads"
	"reftrack/internal/referrers"
)

// ListLeads returns every lead, newest first, enriched with the stage
// label and the joined referrer record.
func (a *API) ListLeads(c *fiber.Ctx) error {
	all, err := leads.ListAll(a.DB)
	if err != nil {
		return a.fail(c, "Failed to list leads", err)
	}

	refs, err := referrers.All(a.DB)
	if err != nil {
		return a.fail(c, "Failed to load referrers", err)
	}
	refMap := referrers.BuildMap(refs)

	enriched := make([]leads.Enriched, 0, len(all))
	for _, lead := range all {
		enriched = append(enriched, leads.Enrich(lead, refMap))
	}

	return c.JSON(fiber.Map{"data": enriched})
}

// CreateLead registers a sales lead. Validation failures come back as a
// 400 with one message per offending field.
func (a *API) CreateLead(c *fiber.Ctx) error {
	var in leads.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Requisição inválida.",
		})
	}

	lead, err := leads.Create(a.DB, in, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return a.leadError(c, err)
	}

	refs, err := referrers.All(a.DB)
	if err != nil {
		return a.fail(c, "Failed to load referrers", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": leads.Enrich(*lead, referrers.BuildMap(refs)),
	})
}

type stageRequest struct {
	Stage leads.Stage `json:"stage"`
}

// UpdateLeadStage moves a lead to another pipeline stage. Any stage can
// follow any other; the pipeline enforces no ordering.
func (a *API) UpdateLeadStage(c *fiber.Ctx) error {
	var req stageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Requisição inválida.",
		})
	}

	lead, err := leads.UpdateStage(a.DB, c.Params("id"), req.Stage)
	if err != nil {
		return a.leadError(c, err)
	}

	refs, err := referrers.All(a.DB)
	if err != nil {
		return a.fail(c, "Failed to load referrers", err)
	}

	return c.JSON(fiber.Map{
		"data": leads.Enrich(*lead, referrers.BuildMap(refs)),
	})
}
