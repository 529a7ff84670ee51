package analytics

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingUTMSource is returned when a tagged link is requested without a source.
var ErrMissingUTMSource = errors.New("utm_source is required")

// UTMParams are the campaign tags appended to a published page URL.
type UTMParams struct {
	Source   string `json:"source" query:"source"`
	Medium   string `json:"medium" query:"medium"`
	Campaign string `json:"campaign" query:"campaign"`
	Term     string `json:"term" query:"term"`
	Content  string `json:"content" query:"content"`
}

// BuildUTMURL returns the public URL of a page tagged with params, so the visits it
// brings show up under the page's UTM sources. Empty tags are left out.
func BuildUTMURL(baseURL, slug string, params UTMParams) (string, error) {
	if strings.TrimSpace(params.Source) == "" {
		return "", ErrMissingUTMSource
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	u = u.JoinPath("p", slug)

	q := url.Values{}
	for _, tag := range []struct{ key, value string }{
		{"utm_source", params.Source},
		{"utm_medium", params.Medium},
		{"utm_campaign", params.Campaign},
		{"utm_term", params.Term},
		{"utm_content", params.Content},
	} {
		if v := strings.TrimSpace(tag.value); v != "" {
			q.Set(tag.key, v)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
