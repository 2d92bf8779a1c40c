// Package pkg holds the libraries behind cargo-featprune.
//
// # Overview
//
// cargo-featprune finds the optional features of a Cargo package's
// dependencies that the package does not need. It rebuilds the package once
// per enabled feature, each time without that feature, and records which
// removals still compile. A later prune pass rewrites Cargo.toml to match.
//
// The data flow of an analysis:
//
//	Cargo.toml ──► [manifest] ──► [features] (effective feature sets)
//	                  ▲                ▲
//	                  │          [metadata] (cargo metadata or crates.io)
//	                  │
//	[manifest/edit] ◄─┴── [minimize] ──► [build] (cargo build per trial)
//	                          │
//	                          ▼
//	                      [report] ──► [prune]
//
// # Packages
//
//   - [manifest]: read-only Cargo.toml and Cargo.lock model
//   - [manifest/edit]: format-preserving editor with on-disk restore
//   - [features]: feature graphs, sets and the effective-set resolver
//   - [metadata]: feature graph providers
//   - [build]: the build verifier and its cargo implementation
//   - [minimize]: per-dependency backward elimination and the project driver
//   - [report]: the versioned report file
//   - [prune]: applies a report to manifests
//   - [project]: workspace member discovery
//   - [integrations], [integrations/crates], [httputil]: registry access with
//     caching and retries
//   - [observability]: hooks for trial statistics and HTTP tracing
//   - [errors]: coded errors shared by all packages
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/manifest
// [manifest/edit]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/manifest/edit
// [features]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/features
// [metadata]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/metadata
// [build]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/build
// [minimize]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/minimize
// [report]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/report
// [prune]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/prune
// [project]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/project
// [integrations]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/integrations
// [integrations/crates]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/integrations/crates
// [httputil]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/featprune/pkg/errors
package pkg
