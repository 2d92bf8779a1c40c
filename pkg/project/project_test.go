package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/featprune/pkg/errors"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSinglePackage(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"solo\"\nversion = \"0.1.0\"\n")

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Name() != "solo" {
		t.Errorf("Name() = %q", p.Name())
	}
	want := []string{filepath.Join(root, "Cargo.toml")}
	if got := p.Members(); len(got) != 1 || got[0] != want[0] {
		t.Errorf("Members() = %v, want %v", got, want)
	}
	if got := p.ReportPath(""); got != filepath.Join(root, "report.json") {
		t.Errorf("ReportPath() = %q", got)
	}
	if got := p.ReportPath("/tmp/out"); got != filepath.Join("/tmp/out", "report.json") {
		t.Errorf("ReportPath(dir) = %q", got)
	}
}

func TestLoadWorkspace(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[package]
name = "root"
version = "0.1.0"

[workspace]
members = ["crates/*", "tools/cli"]
exclude = ["crates/skipped"]
`)
	writeManifest(t, filepath.Join(root, "crates", "b"), "[package]\nname = \"b\"\n")
	writeManifest(t, filepath.Join(root, "crates", "a"), "[package]\nname = \"a\"\n")
	writeManifest(t, filepath.Join(root, "crates", "skipped"), "[package]\nname = \"s\"\n")
	writeManifest(t, filepath.Join(root, "tools", "cli"), "[package]\nname = \"cli\"\n")
	if err := os.MkdirAll(filepath.Join(root, "crates", "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := Load(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{
		filepath.Join(root, "Cargo.toml"),
		filepath.Join(root, "crates", "a", "Cargo.toml"),
		filepath.Join(root, "crates", "b", "Cargo.toml"),
		filepath.Join(root, "tools", "cli", "Cargo.toml"),
	}
	got := p.Members()
	if len(got) != len(want) {
		t.Fatalf("Members() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadVirtualWorkspace(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[workspace]\nmembers = [\"m\"]\n")
	writeManifest(t, filepath.Join(root, "m"), "[package]\nname = \"m\"\n")

	p, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Members(); len(got) != 1 || got[0] != filepath.Join(root, "m", "Cargo.toml") {
		t.Errorf("Members() = %v", got)
	}
	if p.Name() != filepath.Base(root) {
		t.Errorf("virtual workspace should be named after its directory, got %q", p.Name())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("expected MANIFEST_NOT_FOUND, got %v", err)
	}

	root := t.TempDir()
	writeManifest(t, root, "[workspace]\nmembers = []\n")
	if _, err := Load(root); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
