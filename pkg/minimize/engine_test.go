package minimize

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/featprune/pkg/build"
	"github.com/matzehuels/featprune/pkg/features"
	"github.com/matzehuels/featprune/pkg/manifest"
	"github.com/matzehuels/featprune/pkg/metadata"
	"github.com/matzehuels/featprune/pkg/observability"
)

const scenarioManifest = `[package]
name = "app"
version = "0.1.0"

[dependencies]
# x keeps its defaults
x = "1.0"
y = { version = "2", default-features = false, features = ["c"] }
z = { version = "3", default-features = false }
`

var scenarioPackages = metadata.Packages{
	"x": {Name: "x", Version: "1.0.0", Features: features.Graph{"default": {"a", "b"}, "a": nil, "b": nil}},
	"y": {Name: "y", Version: "2.0.0", Features: features.Graph{"c": {"d"}, "d": nil}},
	"z": {Name: "z", Version: "3.0.0", Features: features.Graph{"e": nil}},
}

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// featureVerifier reads the manifest on disk and passes the build when
// requires reports true for every declared dependency.
type featureVerifier struct {
	requires func(dep manifest.Dependency) bool
	calls    int
}

func (v *featureVerifier) Build(_ context.Context, path string, _ build.Options) build.Result {
	v.calls++
	m, err := manifest.Load(path)
	if err != nil {
		return build.Result{Detail: err.Error()}
	}
	for _, dep := range m.Dependencies {
		if !v.requires(dep) {
			return build.Result{Detail: "missing feature for " + dep.Name}
		}
	}
	return build.Result{Success: true}
}

func TestEngineScenarios(t *testing.T) {
	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// x needs b, which its defaults provide; y builds with anything.
	v := &featureVerifier{requires: func(dep manifest.Dependency) bool {
		return dep.Name != "x" || dep.DefaultFeatures || slices.Contains(dep.Features, "b")
	}}
	e := NewEngine(v, nil, Options{Build: build.DefaultOptions()})

	pkg, err := e.Run(context.Background(), m, scenarioPackages)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	x := pkg.Dependencies["x"]
	if x == nil || !x.Removable.Equal(features.NewSet("a")) || !x.Required.Equal(features.NewSet("b")) {
		t.Errorf("scenario A: got %+v", x)
	}
	y := pkg.Dependencies["y"]
	if y == nil || !y.Removable.Equal(features.NewSet("c", "d")) || y.Required.Len() != 0 {
		t.Errorf("scenario B: got %+v", y)
	}
	if _, ok := pkg.Dependencies["z"]; ok {
		t.Error("scenario C: z has no enabled features and must not be reported")
	}
	if v.calls != 4 {
		t.Errorf("expected exactly 4 builds (2 for x, 2 for y), got %d", v.calls)
	}

	data, _ := os.ReadFile(path)
	if string(data) != scenarioManifest {
		t.Errorf("manifest not restored:\n%s", data)
	}
}

func TestEngineAllRequiredOmitted(t *testing.T) {
	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, _ := manifest.Load(path)
	v := &featureVerifier{requires: func(manifest.Dependency) bool { return false }}

	pkg, err := NewEngine(v, nil, Options{}).Run(context.Background(), m, scenarioPackages)
	if err != nil {
		t.Fatal(err)
	}
	if !pkg.Empty() {
		t.Errorf("dependencies without removable features must be omitted, got %v", pkg.DependencyNames())
	}
}

func TestEngineExclude(t *testing.T) {
	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, _ := manifest.Load(path)
	v := &featureVerifier{requires: func(manifest.Dependency) bool { return true }}

	e := NewEngine(v, nil, Options{Exclude: []string{"x"}})
	if got := e.Candidates(m, scenarioPackages); len(got) != 1 || got[0].Name != "y" {
		t.Fatalf("Candidates() = %v", got)
	}
	pkg, err := e.Run(context.Background(), m, scenarioPackages)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := pkg.Dependencies["x"]; ok {
		t.Error("excluded dependency was minimized")
	}
	if v.calls != 2 {
		t.Errorf("expected 2 builds, got %d", v.calls)
	}
}

func TestEngineEditFailureFailsClosed(t *testing.T) {
	src := "[package]\nname = \"app\"\n\n[dependencies]\nx.version = \"1.0\"\n"
	path := writeManifest(t, t.TempDir(), src)
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	v := &featureVerifier{requires: func(manifest.Dependency) bool { return true }}

	pkg, err := NewEngine(v, nil, Options{}).Run(context.Background(), m, scenarioPackages)
	if err != nil {
		t.Fatal(err)
	}
	if v.calls != 0 {
		t.Errorf("no build may run when the edit fails, got %d", v.calls)
	}
	if !pkg.Empty() {
		t.Error("features that could not be written must stay required")
	}
	data, _ := os.ReadFile(path)
	if string(data) != src {
		t.Errorf("manifest changed:\n%s", data)
	}
}

func TestEngineCanceled(t *testing.T) {
	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, _ := manifest.Load(path)

	ctx, cancel := context.WithCancel(context.Background())
	v := build.VerifierFunc(func(context.Context, string, build.Options) build.Result {
		cancel()
		return build.Result{Success: true}
	})

	_, err := NewEngine(v, nil, Options{}).Run(ctx, m, scenarioPackages)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != scenarioManifest {
		t.Errorf("manifest not restored after cancel:\n%s", data)
	}
}

func TestEngineTrialSeesRestoredSiblings(t *testing.T) {
	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, _ := manifest.Load(path)

	v := build.VerifierFunc(func(_ context.Context, p string, _ build.Options) build.Result {
		data, _ := os.ReadFile(p)
		// While y is tested, x must be back to its short form.
		if strings.Contains(string(data), "features = [\"d\"]") && !strings.Contains(string(data), "x = \"1.0\"") {
			return build.Result{Detail: "x not restored"}
		}
		return build.Result{Success: true}
	})
	pkg, err := NewEngine(v, nil, Options{}).Run(context.Background(), m, scenarioPackages)
	if err != nil {
		t.Fatal(err)
	}
	if y := pkg.Dependencies["y"]; y == nil || !y.Removable.Has("c") {
		t.Errorf("y should be minimized against a restored x: %+v", y)
	}
}

func TestEngineHooks(t *testing.T) {
	stats := observability.NewTrialStats()
	observability.SetMinimizeHooks(stats)
	defer observability.Reset()

	path := writeManifest(t, t.TempDir(), scenarioManifest)
	m, _ := manifest.Load(path)
	v := build.VerifierFunc(func(context.Context, string, build.Options) build.Result {
		time.Sleep(time.Millisecond)
		return build.Result{Success: true}
	})
	if _, err := NewEngine(v, nil, Options{}).Run(context.Background(), m, scenarioPackages); err != nil {
		t.Fatal(err)
	}

	s := stats.Snapshot()
	if s.Packages != 1 || s.Trials != 4 || s.Removable != 4 || s.Required != 0 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.BuildTime <= 0 {
		t.Error("expected build time to be recorded")
	}
}
