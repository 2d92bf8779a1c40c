package metadata

import (
	"context"

	"github.com/matzehuels/featprune/pkg/features"
)

// PackageInfo describes one package as seen by the resolver.
type PackageInfo struct {
	Name         string
	Version      string
	Features     features.Graph
	Dependencies []string // declared dependency package names
}

// Packages maps package name to its info. For a name that occurs in several
// versions it holds the version the analyzed package actually uses.
type Packages map[string]PackageInfo

// Graphs returns the feature graph of every package, as [features.NewResolver]
// expects.
func (p Packages) Graphs() map[string]features.Graph {
	out := make(map[string]features.Graph, len(p))
	for name, info := range p {
		out[name] = info.Features
	}
	return out
}

// Provider fetches the feature metadata of the dependencies of the package
// whose manifest is at manifestPath. A failure is fatal for that package.
type Provider interface {
	FetchPackageGraph(ctx context.Context, manifestPath string) (Packages, error)
}
