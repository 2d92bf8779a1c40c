// Package crates provides an HTTP client for the crates.io API.
//
// [Client.FetchVersion] returns the feature table of a published version,
// which is what featprune needs when `cargo metadata` is not used:
//
//	c := crates.NewClient(cache, buildinfo.Version)
//	v, err := c.FetchVersion(ctx, "tokio", "1.40.0", false)
//	fmt.Println(v.Features["default"])
//
// Responses go through the shared [integrations.Client], so they are cached
// on disk and retried on transient failures. crates.io asks every client to
// send a descriptive User-Agent; one is always set.
package crates
