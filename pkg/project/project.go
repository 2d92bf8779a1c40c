package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/manifest"
	"github.com/matzehuels/featprune/pkg/report"
)

// Project is an analysis root: a single package, a virtual workspace, or a
// package that is also a workspace.
type Project struct {
	Root    *manifest.Manifest
	members []string
}

// Load reads the manifest at root (a directory or a Cargo.toml path) and
// expands its workspace members.
func Load(root string) (*Project, error) {
	m, err := manifest.Load(root)
	if err != nil {
		return nil, err
	}
	p := &Project{Root: m}

	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			p.members = append(p.members, path)
		}
	}
	if m.Package != nil {
		add(m.Path)
	}
	if m.Workspace != nil {
		paths, err := expand(m.Dir(), m.Workspace.Members, m.Workspace.Exclude)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			add(path)
		}
	}
	if len(p.members) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s has neither [package] nor workspace members", m.Path)
	}
	return p, nil
}

// Name returns the root name recorded in reports.
func (p *Project) Name() string { return p.Root.Name() }

// Dir returns the root directory.
func (p *Project) Dir() string { return p.Root.Dir() }

// Members returns the manifest paths of every package to analyze, the root
// package first (when there is one) and then members in path order.
func (p *Project) Members() []string {
	return append([]string(nil), p.members...)
}

// ReportPath returns the report file location. An empty dir selects the
// project root.
func (p *Project) ReportPath(dir string) string {
	if dir == "" {
		dir = p.Dir()
	}
	return report.Path(dir)
}

// expand resolves member patterns relative to dir. Only directories holding
// a Cargo.toml count; entries matching an exclude pattern are dropped.
func expand(dir string, members, exclude []string) ([]string, error) {
	var out []string
	for _, pattern := range members {
		matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "workspace member pattern %q", pattern)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if excluded(dir, match, exclude) {
				continue
			}
			path := filepath.Join(match, manifest.FileName)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				out = append(out, path)
			}
		}
	}
	return out, nil
}

func excluded(dir, path string, patterns []string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		if ok, _ := filepath.Match(pattern, rel); ok || pattern == rel {
			return true
		}
	}
	return false
}
