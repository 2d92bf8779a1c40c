package features

import (
	"github.com/matzehuels/featprune/pkg/manifest"
)

// DefaultFeature is the feature cargo enables unless default-features = false.
const DefaultFeature = "default"

// Graph maps each public feature of a package to the features it enables.
//
// Entries in an implication list may name optional dependencies ("dep:x"),
// features of other crates ("x/std") or plain features. Only names that are
// also keys of the graph are public and take part in resolution.
type Graph map[string][]string

// IsPublic reports whether name is a key of the graph.
func (g Graph) IsPublic(name string) bool {
	_, ok := g[name]
	return ok
}

// implied collects the public features directly implied by name into out.
func (g Graph) implied(name string, out Set) {
	for _, f := range g[name] {
		if g.IsPublic(f) {
			out.Add(f)
		}
	}
}

// Effective computes the enabled public features of a dependency:
//
//	default-features  explicit   result
//	false             none       {}
//	false             some       explicit ∪ implied(explicit)
//	true              none       implied(default)
//	true              some       explicit ∪ implied(explicit) ∪ implied(default)
//
// Explicit names missing from the graph are dropped. Implications are
// expanded one level, matching how cargo metadata lists them.
func Effective(defaultFeatures bool, explicit []string, g Graph) Set {
	out := make(Set)
	for _, f := range explicit {
		if !g.IsPublic(f) {
			continue
		}
		out.Add(f)
		g.implied(f, out)
	}
	if defaultFeatures {
		g.implied(DefaultFeature, out)
	}
	return out
}

// Resolver computes effective feature sets for declared dependencies.
//
// It holds no mutable state after construction and is safe for concurrent
// use by multiple goroutines.
type Resolver struct {
	graphs  map[string]Graph
	exclude Set
}

// NewResolver creates a resolver over the feature graphs of a package's
// dependencies, keyed by registry package name. Dependencies named in
// exclude are never resolved.
func NewResolver(graphs map[string]Graph, exclude []string) *Resolver {
	return &Resolver{graphs: graphs, exclude: NewSet(exclude...)}
}

// Resolve returns the effective feature set of dep. The second result is
// false when the dependency is excluded (by key or by package name) or has no
// feature graph in the metadata.
func (r *Resolver) Resolve(dep manifest.Dependency) (Set, bool) {
	if r.exclude.Has(dep.Name) || r.exclude.Has(dep.Package) {
		return nil, false
	}
	g, ok := r.graphs[dep.Package]
	if !ok {
		return nil, false
	}
	return Effective(dep.DefaultFeatures, dep.Features, g), true
}
