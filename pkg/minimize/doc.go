// Package minimize finds the features of each dependency that a package can
// build without.
//
// For every dependency with a non-empty effective feature set, the [Engine]
// pops the enabled features one at a time in lexical order and rebuilds the
// package with the remaining queue plus the features already found
// required. A passing build marks the popped feature removable; a failing
// build, or any error while writing the manifest, marks it required. Each
// feature is tried exactly once.
//
// The manifest is edited through an [edit.Session] opened once per package
// and closed on every exit path, which puts the original bytes back.
//
// [Analyzer] drives the engine across a project's packages and saves the
// report after each one.
//
// [edit.Session]: github.com/matzehuels/featprune/pkg/manifest/edit.Session
package minimize
