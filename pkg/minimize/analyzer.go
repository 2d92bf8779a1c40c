package minimize

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/featprune/pkg/manifest"
	"github.com/matzehuels/featprune/pkg/metadata"
	"github.com/matzehuels/featprune/pkg/report"
)

// Analyzer runs an [Engine] over every package of a project and keeps the
// report file current.
type Analyzer struct {
	Engine   *Engine
	Metadata metadata.Provider
	Logger   *log.Logger
}

// NewAnalyzer creates an analyzer. A nil logger uses log.Default().
func NewAnalyzer(engine *Engine, provider metadata.Provider, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{Engine: engine, Metadata: provider, Logger: logger}
}

// Summary describes an analyzer run.
type Summary struct {
	Analyzed []string
	Skipped  []string
	Failed   map[string]error
}

// Analyze processes the packages at manifestPaths in order and records
// their results in rep, saving it to reportPath after each package so that
// an interrupted run keeps completed work. Packages already present in rep
// are skipped.
//
// A package that cannot be loaded, has no metadata or cannot be minimized
// is recorded in Summary.Failed and the remaining packages still run; the
// returned error then joins every package failure. Cancellation of ctx stops
// the run after the current trial.
func (a *Analyzer) Analyze(ctx context.Context, manifestPaths []string, rep *report.Report, reportPath string) (*Summary, error) {
	sum := &Summary{Failed: make(map[string]error)}
	var errs []error
	fail := func(name string, err error) {
		a.Logger.Error("package failed", "package", name, "err", err)
		sum.Failed[name] = err
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	for _, path := range manifestPaths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		m, err := manifest.Load(path)
		if err != nil {
			fail(path, err)
			continue
		}
		name := m.Name()
		if rep.Has(name) {
			a.Logger.Info("already in report, skipping", "package", name)
			sum.Skipped = append(sum.Skipped, name)
			continue
		}

		pkg, err := a.analyze(ctx, m)
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if err != nil {
			fail(name, err)
			continue
		}

		rep.AddPackage(name, pkg)
		if err := rep.Save(reportPath); err != nil {
			fail(name, err)
			continue
		}
		sum.Analyzed = append(sum.Analyzed, name)
	}
	return sum, goerrors.Join(errs...)
}

func (a *Analyzer) analyze(ctx context.Context, m *manifest.Manifest) (*report.Package, error) {
	pkgs, err := a.Metadata.FetchPackageGraph(ctx, m.Path)
	if err != nil {
		return nil, err
	}
	return a.Engine.Run(ctx, m, pkgs)
}
