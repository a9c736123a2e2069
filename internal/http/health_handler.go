package http

import (
	"github.com/gofiber/fiber/v2"
)

// Health reports liveness plus a database ping so load balancers catch a
// wedged sqlite handle, not just a running process.
func (a *API) Health(c *fiber.Ctx) error {
	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"app":     a.Config.AppName,
		"version": "1.0.0",
	})
}
