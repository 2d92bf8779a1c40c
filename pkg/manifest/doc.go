// Package manifest reads Cargo.toml and Cargo.lock files into a canonical,
// read-only model.
//
// # Overview
//
// The model is decoded with BurntSushi/toml and keeps only what feature
// analysis needs: the package name, workspace members, and one [Dependency]
// per entry in [dependencies]. Formatting is discarded; use the edit
// subpackage to change a manifest on disk.
//
// Both dependency shapes decode to the same declaration:
//
//	serde = "1.0"                                  # FormShort
//	serde = { version = "1.0", features = ["rc"] } # FormDetailed
//	serde = { workspace = true }                   # FormInherited
//
// # Lock files
//
// [FindLock] locates the Cargo.lock that applies to a package directory so
// registry-backed metadata can be pinned to the resolved versions.
package manifest
