package shared

import (
	"net/http"
	"strings"
)

// BaseURL is the configured public URL, or scheme://host of the request when
// none is configured.
func BaseURL(r *http.Request, configured string) string {
	if configured = strings.TrimRight(strings.TrimSpace(configured), "/"); configured != "" {
		return configured
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Proto"), ",")[0]); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
