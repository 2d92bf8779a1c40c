// Package features computes which optional features of a dependency are
// enabled for a build.
//
// A [Graph] is the feature table a package publishes (cargo metadata's
// "features" object). [Effective] combines it with a declaration's
// default-features switch and explicit feature list; [Resolver] applies that
// to every declared dependency of a package, honoring a skip list.
//
//	r := features.NewResolver(graphs, []string{"tokio"})
//	for _, dep := range m.Dependencies {
//	    if set, ok := r.Resolve(dep); ok && set.Len() > 0 {
//	        // candidate for minimization
//	    }
//	}
package features
