package minimize

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/featprune/pkg/build"
	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/features"
	"github.com/matzehuels/featprune/pkg/manifest"
	"github.com/matzehuels/featprune/pkg/manifest/edit"
	"github.com/matzehuels/featprune/pkg/metadata"
	"github.com/matzehuels/featprune/pkg/observability"
	"github.com/matzehuels/featprune/pkg/report"
)

// Options configures an [Engine].
type Options struct {
	// Build is passed unchanged to every verifier call.
	Build build.Options

	// Exclude lists dependencies (by key or package name) that are never
	// minimized.
	Exclude []string
}

// Engine runs the backward elimination for the dependencies of one package.
type Engine struct {
	Verifier build.Verifier
	Logger   *log.Logger
	Options  Options
}

// NewEngine creates an engine. A nil logger uses log.Default().
func NewEngine(v build.Verifier, logger *log.Logger, opts Options) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Verifier: v, Logger: logger, Options: opts}
}

// candidate is a dependency selected for minimization.
type candidate struct {
	dep     manifest.Dependency
	enabled features.Set
}

// Candidates lists the dependencies of m that have a non-empty effective
// feature set, in manifest key order.
func (e *Engine) Candidates(m *manifest.Manifest, pkgs metadata.Packages) []manifest.Dependency {
	var out []manifest.Dependency
	for _, c := range e.candidates(m, pkgs) {
		out = append(out, c.dep)
	}
	return out
}

func (e *Engine) candidates(m *manifest.Manifest, pkgs metadata.Packages) []candidate {
	resolver := features.NewResolver(pkgs.Graphs(), e.Options.Exclude)
	var out []candidate
	for _, dep := range m.Dependencies {
		if dep.Form == manifest.FormInherited || dep.Form == manifest.FormUnknown {
			e.Logger.Debug("skipping dependency", "package", m.Name(), "dependency", dep.Name, "form", dep.Form)
			continue
		}
		enabled, ok := resolver.Resolve(dep)
		if !ok {
			e.Logger.Debug("no feature metadata", "package", m.Name(), "dependency", dep.Name)
			continue
		}
		if enabled.Len() == 0 {
			continue
		}
		out = append(out, candidate{dep: dep, enabled: enabled})
	}
	return out
}

// Run minimizes every candidate dependency of m. The manifest is restored
// to its original bytes before Run returns, whatever the outcome.
//
// Build failures and edit failures mark the tested feature required. Run
// returns an error only when the manifest cannot be opened or restored, or
// when ctx is done between trials.
func (e *Engine) Run(ctx context.Context, m *manifest.Manifest, pkgs metadata.Packages) (pkg *report.Package, err error) {
	start := time.Now()
	name := m.Name()
	hooks := observability.Minimize()
	defer func() { hooks.OnPackageComplete(ctx, name, time.Since(start), err) }()

	session, err := edit.Open(m.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeManifestWrite, cerr, "restore %s", m.Path)
		}
	}()

	cands := e.candidates(m, pkgs)
	hooks.OnPackageStart(ctx, name, len(cands))
	e.Logger.Info("minimizing package", "package", name, "dependencies", len(cands))

	pkg = report.NewPackage(m.Path)
	for _, c := range cands {
		rec, err := e.minimize(ctx, session, name, c)
		if err != nil {
			return nil, err
		}
		e.Logger.Info("dependency done", "package", name, "dependency", c.dep.Name,
			"removable", rec.Removable().Sorted(), "required", rec.Required().Sorted())
		pkg.Add(c.dep.Name, rec.Entry())
	}
	return pkg, nil
}

func (e *Engine) minimize(ctx context.Context, session *edit.Session, pkg string, c candidate) (*Record, error) {
	hooks := observability.Minimize()
	rec := NewRecord(c.dep.Name, c.enabled)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feature, trial, ok := rec.Next()
		if !ok {
			return rec, nil
		}

		hooks.OnTrialStart(ctx, pkg, c.dep.Name, feature)
		start := time.Now()
		removable := e.trial(ctx, session, c.dep.Name, feature, trial)
		if removable {
			rec.Pass()
		} else {
			rec.Fail()
		}
		session.Restore()
		hooks.OnTrialComplete(ctx, pkg, c.dep.Name, feature, removable, time.Since(start))
	}
}

// trial writes trial as the feature list of dep and builds. Any failure to
// write counts as a failed build.
func (e *Engine) trial(ctx context.Context, session *edit.Session, dep, feature string, trial []string) bool {
	if err := session.SetFeatures(dep, trial); err != nil {
		e.Logger.Warn("edit failed, keeping feature", "dependency", dep, "feature", feature, "err", err)
		return false
	}
	if err := session.Flush(); err != nil {
		e.Logger.Warn("write failed, keeping feature", "dependency", dep, "feature", feature, "err", err)
		return false
	}

	res := e.Verifier.Build(ctx, session.Path(), e.Options.Build)
	if !res.Success {
		e.Logger.Debug("build failed", "dependency", dep, "feature", feature, "detail", res.Detail)
		return false
	}
	e.Logger.Debug("build passed", "dependency", dep, "feature", feature)
	return true
}
