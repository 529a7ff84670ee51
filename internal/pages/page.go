package pages

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PageNotFoundError represents an error when a published page is not found
type PageNotFoundError struct {
	Slug string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("published page not found for slug: %s", e.Slug)
}

// NewPageNotFoundError creates a new PageNotFoundError
func NewPageNotFoundError(slug string) *PageNotFoundError {
	return &PageNotFoundError{Slug: slug}
}

// ErrInvalidSlug is returned for slugs that cannot appear in a page URL.
var ErrInvalidSlug = errors.New("invalid slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PublishedPage is a landing page whose traffic is tracked by slug.
type PublishedPage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"unique;not null" json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeSlug lowercases and trims a slug and checks it is URL-safe.
func NormalizeSlug(slug string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return s, nil
}

// GetPageBySlug retrieves a published page by exact slug match
func GetPageBySlug(db *gorm.DB, slug string) (*PublishedPage, error) {
	var page PublishedPage
	if err := db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPageNotFoundError(slug)
		}
		return nil, fmt.Errorf("unexpected error querying page: %w", err)
	}
	return &page, nil
}

// FindOrCreatePage returns the page with slug, creating it with title if missing.
func FindOrCreatePage(db *gorm.DB, slug, title string) (*PublishedPage, error) {
	slug, err := NormalizeSlug(slug)
	if err != nil {
		return nil, err
	}

	page := PublishedPage{Slug: slug, Title: title, CreatedAt: time.Now().UTC()}
	if err := db.Where(PublishedPage{Slug: slug}).FirstOrCreate(&page).Error; err != nil {
		return nil, fmt.Errorf("error creating page %s: %w", slug, err)
	}
	return &page, nil
}

// ListPages returns all pages ordered by slug
func ListPages(db *gorm.DB) ([]PublishedPage, error) {
	var list []PublishedPage
	if err := db.Order("slug ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("error listing pages: %w", err)
	}
	return list, nil
}

// DisplayTitle falls back to a placeholder for untitled pages.
func (p PublishedPage) DisplayTitle() string {
	if strings.TrimSpace(p.Title) == "" {
		return "Untitled Page"
	}
	return p.Title
}
