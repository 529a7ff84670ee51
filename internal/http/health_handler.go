package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"pagepulse/internal/metrics"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping() error
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
}

// HealthIndexAction handles the health check endpoint. A failing database
// degrades the status; the response is still 200.
func HealthIndexAction(db Pinger, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if err := db.Ping(); err != nil {
			dbStatus = "error"
			logger.Error("Database ping failed", slog.Any("error", err))
		}

		health := HealthStatus{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			DBStatus:  dbStatus,
		}
		if dbStatus != "ok" {
			health.Status = "degraded"
		}

		return c.JSON(health)
	}
}

// MetricsAction exposes m in the Prometheus text format.
func MetricsAction(m *metrics.Metrics) fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}
