package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relieflink/disaster-response-api/internal/database"
)

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// LivenessCheck reports the process is up.
func LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessCheck reports whether the database is reachable.
func ReadinessCheck(db *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return respondError(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
		if err := sqlDB.PingContext(c.UserContext()); err != nil {
			return respondError(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}
