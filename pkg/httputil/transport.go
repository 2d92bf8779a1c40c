package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/featprune/pkg/observability"
)

// hookedTransport reports every round trip to the registered HTTP hooks.
type hookedTransport struct {
	base http.RoundTripper
}

// NewTransport wraps base (nil means http.DefaultTransport) so that requests
// are reported to [observability.HTTP].
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &hookedTransport{base: base}
}

func (t *hookedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := observability.HTTP()
	ctx, host, path := req.Context(), req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// NewClient returns an http.Client with the given timeout and a hooked
// transport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout, Transport: NewTransport(nil)}
}
