package referrers

import (
	"net/url"
	"strings"
)

// Direct is the source key for visits that arrived without a referrer.
const Direct = "direct"

var labels = map[string]string{
	Direct: "Direct / Unknown",

	"google.com":     "Google",
	"bing.com":       "Bing",
	"duckduckgo.com": "DuckDuckGo",
	"yahoo.com":      "Yahoo",
	"ecosia.org":     "Ecosia",

	"x.com":         "X/Twitter",
	"twitter.com":   "X/Twitter",
	"t.co":          "X/Twitter",
	"facebook.com":  "Facebook",
	"instagram.com": "Instagram",
	"linkedin.com":  "LinkedIn",
	"lnkd.in":       "LinkedIn",
	"tiktok.com":    "TikTok",
	"reddit.com":    "Reddit",
	"youtube.com":   "YouTube",
	"youtu.be":      "YouTube",
	"threads.net":   "Threads",
	"bsky.app":      "Bluesky",

	"news.ycombinator.com": "Hacker News",
	"producthunt.com":      "Product Hunt",
	"indiehackers.com":     "Indie Hackers",
	"medium.com":           "Medium",
	"substack.com":         "Substack",
	"github.com":           "GitHub",

	"mail.google.com":  "Gmail",
	"outlook.live.com": "Outlook",
}

// NormalizeHost reduces a referrer URL or hostname to the bare host used as a
// source key: lowercase, no scheme, port, path or leading "www.". An empty
// referrer is Direct.
func NormalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Direct
	}

	host := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			host = u.Hostname()
		}
	} else if i := strings.IndexAny(raw, "/:?"); i >= 0 {
		host = raw[:i]
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if host == "" {
		return Direct
	}
	return host
}

// Label returns a display name for a normalized host. Subdomains of a known
// host share its label; unknown hosts are shown as they are.
func Label(host string) string {
	host = strings.ToLower(host)
	for h := host; h != ""; {
		if name, ok := labels[h]; ok {
			return name
		}
		dot := strings.IndexByte(h, '.')
		if dot < 0 {
			break
		}
		h = h[dot+1:]
	}
	return host
}
