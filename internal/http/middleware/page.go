package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pagepulse/internal/pages"
)

// PageLocalsKey is where PageLoader stores the *pages.PublishedPage.
const PageLocalsKey = "page"

// PageLoader resolves the :slug route parameter to a published page.
// Unknown slugs end the request with 404.
func PageLoader(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")

		page, err := pages.GetPageBySlug(db, slug)
		if err != nil {
			var notFound *pages.PageNotFoundError
			if errors.As(err, &notFound) {
				logger.Debug("Page not found", slog.String("slug", slug))
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"error":   "Page not found",
				})
			}
			logger.Error("Failed to load page", slog.String("slug", slug), slog.Any("error", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to load page",
			})
		}

		c.Locals(PageLocalsKey, page)
		return c.Next()
	}
}

// CurrentPage returns the page stored by PageLoader.
func CurrentPage(c *fiber.Ctx) (*pages.PublishedPage, bool) {
	page, ok := c.Locals(PageLocalsKey).(*pages.PublishedPage)
	return page, ok && page != nil
}
