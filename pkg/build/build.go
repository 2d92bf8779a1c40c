package build

import (
	"context"
	"runtime"
	"slices"
)

// Result is the outcome of one build. A failed build is a normal outcome,
// not an error: Detail carries the compiler output for logging.
type Result struct {
	Success bool
	Detail  string
}

// Verifier builds a package and reports whether it compiled.
//
// Implementations hold no per-build state. A build that has started runs to
// completion; ctx is only checked before starting.
type Verifier interface {
	Build(ctx context.Context, manifestPath string, opts Options) Result
}

// VerifierFunc adapts a function to [Verifier].
type VerifierFunc func(ctx context.Context, manifestPath string, opts Options) Result

// Build calls f.
func (f VerifierFunc) Build(ctx context.Context, manifestPath string, opts Options) Result {
	return f(ctx, manifestPath, opts)
}

// Options selects what a build compiles. It is a plain value; copy it freely.
type Options struct {
	Lib      bool
	Bins     bool
	Tests    bool
	Benches  bool
	Examples bool

	// Jobs is the number of parallel compiler jobs. Zero lets cargo decide.
	Jobs int

	// Targets lists target triples. Empty builds for the host.
	Targets []string
}

// DefaultOptions builds the library and binaries for the host with one job
// per CPU.
func DefaultOptions() Options {
	return Options{Lib: true, Bins: true, Jobs: runtime.NumCPU()}
}

// AllKinds returns opts with every target kind enabled.
func (o Options) AllKinds() Options {
	o.Lib, o.Bins, o.Tests, o.Benches, o.Examples = true, true, true, true, true
	o.Targets = slices.Clone(o.Targets)
	return o
}

// Kinds lists the enabled target kinds in a fixed order.
func (o Options) Kinds() []string {
	var kinds []string
	for _, k := range []struct {
		on   bool
		name string
	}{
		{o.Lib, "lib"}, {o.Bins, "bins"}, {o.Tests, "tests"}, {o.Benches, "benches"}, {o.Examples, "examples"},
	} {
		if k.on {
			kinds = append(kinds, k.name)
		}
	}
	return kinds
}
