package v1

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pagepulse/internal/analytics"
	"pagepulse/internal/http/middleware"
	"pagepulse/internal/metrics"
	"pagepulse/internal/timeframe"
)

const (
	errPageNotLoaded  = "Page not loaded"
	errInvalidSpan    = "Invalid span: days must be 7, 30 or 90"
	errReportFailed   = "Failed to build analytics report"
	errExportFailed   = "Failed to export analytics"
	errInvalidUTMLink = "Invalid UTM parameters"
)

// Dependencies are shared by the page analytics handlers.
type Dependencies struct {
	Reports       *analytics.ReportService
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	PublicBaseURL string
}

// GetPageAnalyticsHandler serves the dashboard report of the page loaded by
// middleware.PageLoader for the span in the "days" query parameter.
func GetPageAnalyticsHandler(deps Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := middleware.CurrentPage(c)
		if !ok {
			return respondError(c, fiber.StatusInternalServerError, errPageNotLoaded)
		}

		periods, err := deps.Reports.Resolve(c.Query("days"))
		if err != nil {
			deps.Metrics.Reports.WithLabelValues("invalid", "rejected").Inc()
			return handleError(c, deps.Logger, err, errReportFailed)
		}
		span := strconv.Itoa(periods.Span)

		report, err := deps.Reports.GetReportForPeriods(c.UserContext(), page.Slug, periods)
		if err != nil {
			deps.Metrics.Reports.WithLabelValues(span, "error").Inc()
			return handleError(c, deps.Logger, err, errReportFailed)
		}

		deps.Metrics.Reports.WithLabelValues(span, "ok").Inc()
		deps.Logger.Debug("Served analytics report",
			slog.String("slug", page.Slug),
			slog.Int("span", periods.Span),
			slog.Bool("hasData", report.HasData))

		return c.JSON(fiber.Map{
			"success": true,
			"page": fiber.Map{
				"slug":  page.Slug,
				"title": page.DisplayTitle(),
			},
			"report": report,
		})
	}
}

// ExportPageAnalyticsHandler sends the current period's daily rows as a CSV download.
func ExportPageAnalyticsHandler(deps Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := middleware.CurrentPage(c)
		if !ok {
			return respondError(c, fiber.StatusInternalServerError, errPageNotLoaded)
		}

		periods, err := deps.Reports.Resolve(c.Query("days"))
		if err != nil {
			deps.Metrics.Exports.WithLabelValues("invalid", "rejected").Inc()
			return handleError(c, deps.Logger, err, errExportFailed)
		}
		span := strconv.Itoa(periods.Span)

		content, err := deps.Reports.ExportCSVForPeriods(c.UserContext(), page.Slug, periods)
		if err != nil {
			deps.Metrics.Exports.WithLabelValues(span, "error").Inc()
			return handleError(c, deps.Logger, err, errExportFailed)
		}
		deps.Metrics.Exports.WithLabelValues(span, "ok").Inc()

		etag := generateETag(content)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.Status(fiber.StatusNotModified).Send(nil)
		}

		filename := analytics.ExportFilename(page.Slug, periods.Current.End)
		c.Attachment(filename)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderETag, etag)
		c.Set(fiber.HeaderCacheControl, "private, no-cache")

		deps.Logger.Info("Exported analytics",
			slog.String("slug", page.Slug),
			slog.Int("span", periods.Span),
			slog.Int("bytes", len(content)))

		return c.Send(content)
	}
}

// GetUTMLinkHandler builds a UTM-tagged public URL for the page.
func GetUTMLinkHandler(deps Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := middleware.CurrentPage(c)
		if !ok {
			return respondError(c, fiber.StatusInternalServerError, errPageNotLoaded)
		}

		var params analytics.UTMParams
		if err := c.QueryParser(&params); err != nil {
			deps.Logger.Debug("Failed to parse UTM parameters", slog.Any("error", err))
			return respondError(c, fiber.StatusBadRequest, errInvalidUTMLink)
		}

		link, err := analytics.BuildUTMURL(deps.PublicBaseURL, page.Slug, params)
		if err != nil {
			if errors.Is(err, analytics.ErrMissingUTMSource) {
				return respondError(c, fiber.StatusBadRequest, err.Error())
			}
			deps.Logger.Error("Failed to build UTM link",
				slog.String("slug", page.Slug),
				slog.Any("error", err))
			return respondError(c, fiber.StatusInternalServerError, errInvalidUTMLink)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"url":     link,
		})
	}
}

func handleError(c *fiber.Ctx, logger *slog.Logger, err error, fallback string) error {
	if errors.Is(err, timeframe.ErrInvalidSpan) {
		return respondError(c, fiber.StatusBadRequest, errInvalidSpan)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respondError(c, fiberErr.Code, fiberErr.Message)
	}

	logger.Error(fallback, slog.String("path", c.Path()), slog.Any("error", err))
	return respondError(c, fiber.StatusInternalServerError, fallback)
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
