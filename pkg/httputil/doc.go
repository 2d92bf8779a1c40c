// Package httputil provides the HTTP plumbing shared by registry clients.
//
//   - [Cache]: file-backed JSON response cache with TTL and namespaces
//   - [Retry]: retry with exponential backoff for [RetryableError] failures
//   - [NewClient]: an http.Client whose transport reports to the
//     observability HTTP hooks
//
// The default cache directory is ~/.cache/featprune. It is only used by the
// crates.io metadata source; `cargo featprune cache clear` empties it.
package httputil
