// Package metadata supplies the feature tables of a package's dependencies.
//
// Two [Provider] implementations exist. [Cargo] runs `cargo metadata` and
// reads the resolve graph, so every dependency is the exact version cargo
// would build. [Crates] asks the crates.io API instead, pinning versions from
// Cargo.lock; it needs no Rust toolchain for the metadata step.
package metadata
