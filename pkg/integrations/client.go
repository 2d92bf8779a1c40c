package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/matzehuels/featprune/pkg/httputil"
	"github.com/matzehuels/featprune/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients: response
// caching, retries and default headers.
type Client struct {
	http    *http.Client
	cache   *httputil.Cache
	headers map[string]string
	backoff httputil.Backoff
}

// NewClient creates a Client. A nil cache disables caching; headers may be
// nil.
func NewClient(cache *httputil.Cache, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache,
		headers: headers,
		backoff: httputil.DefaultBackoff,
	}
}

// SetBackoff replaces the retry schedule used by [Client.Cached].
func (c *Client) SetBackoff(b httputil.Backoff) { c.backoff = b }

// Cached loads key from the cache into v, or calls fetch (with retries) and
// stores the result. With refresh set the cache is only written.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(key, v); ok {
			hooks.OnCacheHit(ctx, "http")
			return nil
		}
		hooks.OnCacheMiss(ctx, "http")
	}
	if err := httputil.Retry(ctx, c.backoff, fetch); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(key, v); err == nil {
			hooks.OnCacheSet(ctx, "http")
		}
	}
	return nil
}

// Get performs a GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders is [Client.Get] with extra headers that override the
// defaults.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
