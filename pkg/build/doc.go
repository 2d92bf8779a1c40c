// Package build decides whether a package still compiles.
//
// [Verifier] is the only thing the minimizer knows about compilation: given a
// manifest path and [Options] it answers success or failure. [Cargo] is the
// production implementation and shells out to `cargo build`; tests use
// [VerifierFunc].
package build
