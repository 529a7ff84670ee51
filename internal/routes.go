package internal

import (
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	v1 "pagepulse/api/v1"
	"pagepulse/internal/http"
	"pagepulse/internal/http/middleware"
)

// dashboardCORSConfig lets the dashboard frontend read reports from another origin.
var dashboardCORSConfig = cors.Config{
	AllowOrigins:  "*",
	AllowMethods:  "GET,HEAD,OPTIONS",
	AllowHeaders:  "Origin, Content-Type, Accept, If-None-Match",
	ExposeHeaders: "Content-Disposition, ETag",
}

// MountAppRoutes mounts all application routes
func MountAppRoutes(app *Application) {
	srv := app.fiber
	db := app.DBManager.GetConnection()
	logger := app.Logger

	srv.Use(recover.New())
	srv.Use(requestid.New())

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction(app.DBManager, logger))
	srv.Get("/metrics", http.MetricsAction(app.Metrics))

	// === PAGE ANALYTICS API ===
	deps := v1.Dependencies{
		Reports:       app.Reports,
		Metrics:       app.Metrics,
		Logger:        logger,
		PublicBaseURL: app.Config.PublicBaseURL,
	}

	api := srv.Group("/api/v1", cors.New(dashboardCORSConfig))
	pageLoader := middleware.PageLoader(db, logger)

	api.Get("/pages/:slug/analytics", pageLoader, v1.GetPageAnalyticsHandler(deps))
	api.Get("/pages/:slug/analytics/export", pageLoader, v1.ExportPageAnalyticsHandler(deps))
	api.Get("/pages/:slug/utm-link", pageLoader, v1.GetUTMLinkHandler(deps))
}
