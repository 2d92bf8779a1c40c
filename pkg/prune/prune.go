package prune

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/matzehuels/featprune/pkg/manifest/edit"
	"github.com/matzehuels/featprune/pkg/report"
)

// Options configures [Apply].
type Options struct {
	// DryRun computes the edits and their diff without writing.
	DryRun bool
	Logger *log.Logger
}

// Result describes the edits made to one manifest.
type Result struct {
	Package      string
	ManifestPath string
	Updated      []string         // dependencies rewritten
	Failed       map[string]error // dependencies that could not be rewritten
	Diff         string           // unified diff of the manifest
}

// Apply rewrites every dependency in rep to its kept features (original
// minus removable) with default features off. Builds are not rerun.
//
// A dependency that cannot be edited is logged and left as it was; the
// other dependencies of the package are still written. An error is returned
// only when a manifest cannot be opened or written.
func Apply(ctx context.Context, rep *report.Report, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var results []Result
	for _, name := range rep.PackageNames() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		pkg := rep.Packages[name]
		res, err := applyPackage(name, pkg, opts.DryRun, logger)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func applyPackage(name string, pkg *report.Package, dryRun bool, logger *log.Logger) (Result, error) {
	res := Result{Package: name, ManifestPath: pkg.ManifestPath, Failed: make(map[string]error)}

	session, err := edit.Open(pkg.ManifestPath)
	if err != nil {
		return res, err
	}
	defer session.Close()

	before := session.Document().String()
	for _, dep := range pkg.DependencyNames() {
		kept := pkg.Dependencies[dep].Kept().Sorted()
		if err := session.SetFeatures(dep, kept); err != nil {
			logger.Warn("could not prune dependency", "package", name, "dependency", dep, "err", err)
			res.Failed[dep] = err
			continue
		}
		logger.Debug("pruned dependency", "package", name, "dependency", dep, "features", kept)
		res.Updated = append(res.Updated, dep)
	}

	after := session.Document().String()
	res.Diff = diff(pkg.ManifestPath, before, after)
	if dryRun || before == after {
		return res, nil
	}
	if err := session.Commit(); err != nil {
		return res, err
	}
	logger.Info("pruned manifest", "package", name, "dependencies", len(res.Updated))
	return res, nil
}

func diff(path, before, after string) string {
	if before == after {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (pruned)",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return out
}

// Exists reports whether a report file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
