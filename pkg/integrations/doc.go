// Package integrations provides the HTTP client shared by registry API
// clients.
//
// [Client] adds response caching ([httputil.Cache]), retries with backoff
// for network failures, 429 and 5xx responses, and default headers. Registry
// specific clients embed it:
//
//	c := crates.NewClient(cache, buildinfo.Version)
//	v, err := c.FetchVersion(ctx, "serde", "1.0.210", false)
//
// Only crates.io is implemented; see [crates].
//
// [crates]: github.com/matzehuels/featprune/pkg/integrations/crates
// [httputil.Cache]: github.com/matzehuels/featprune/pkg/httputil.Cache
package integrations
