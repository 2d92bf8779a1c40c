package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/featprune/pkg/httputil"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a crate or version doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the registry timeout and a
// transport that reports to the observability hooks.
func NewHTTPClient() *http.Client {
	return httputil.NewClient(httpTimeout)
}

// NewCache creates a file cache with the given TTL in the default directory.
func NewCache(ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache("", ttl)
}

// PathEscape percent-encodes one URL path segment.
func PathEscape(s string) string { return url.PathEscape(s) }

// UserAgent builds the User-Agent value registries ask clients to send.
func UserAgent(version string) string {
	if version == "" || strings.ContainsAny(version, " \t") {
		version = "dev"
	}
	return "cargo-featprune/" + version + " (https://github.com/matzehuels/featprune)"
}
