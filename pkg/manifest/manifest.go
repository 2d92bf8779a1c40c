package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/featprune/pkg/errors"
)

// FileName is the manifest file name cargo looks for in a package directory.
const FileName = "Cargo.toml"

// Form describes how a dependency is written in the manifest.
type Form int

const (
	// FormUnknown is an entry neither the reader nor the editor understands
	// (for example an integer value).
	FormUnknown Form = iota
	// FormShort is the bare version string: serde = "1.0".
	FormShort
	// FormDetailed is an inline or sub-table: serde = { version = "1.0", ... }.
	FormDetailed
	// FormInherited delegates to [workspace.dependencies]: serde = { workspace = true }.
	FormInherited
)

// String returns a lowercase name for the form.
func (f Form) String() string {
	switch f {
	case FormShort:
		return "short"
	case FormDetailed:
		return "detailed"
	case FormInherited:
		return "inherited"
	default:
		return "unknown"
	}
}

// Dependency is the logical declaration of one entry in [dependencies].
//
// Short and detailed forms decode to the same value: a short entry has
// DefaultFeatures set and no explicit Features.
type Dependency struct {
	Name            string   // Key in [dependencies]
	Package         string   // Registry package name; equals Name unless renamed
	Version         string   // Version requirement (empty for path/git dependencies)
	DefaultFeatures bool     // Whether default features are enabled
	Features        []string // Explicitly requested features, as written
	Optional        bool     // Declared optional = true
	Local           bool     // Sourced from a path or git repository
	Form            Form     // Surface shape in the manifest
}

// Manifest is the canonical, read-only view of a Cargo.toml file.
//
// It does not preserve formatting; edits go through the edit package.
type Manifest struct {
	Path         string       // Absolute path of the manifest file
	Package      *Package     // [package] table, nil for virtual workspaces
	Workspace    *Workspace   // [workspace] table, nil when absent
	Dependencies []Dependency // [dependencies], sorted by Name
}

// Package holds the [package] fields featprune needs.
type Package struct {
	Name    string
	Version string
}

// Workspace holds the [workspace] member configuration.
type Workspace struct {
	Members []string
	Exclude []string
}

// Name returns the package name, or the directory name for virtual manifests.
func (m *Manifest) Name() string {
	if m.Package != nil && m.Package.Name != "" {
		return m.Package.Name
	}
	return filepath.Base(filepath.Dir(m.Path))
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// IsWorkspace reports whether the manifest declares workspace members.
func (m *Manifest) IsWorkspace() bool {
	return m.Workspace != nil && len(m.Workspace.Members) > 0
}

// Dependency looks up a declaration by its key.
func (m *Manifest) Dependency(name string) (Dependency, bool) {
	i := sort.Search(len(m.Dependencies), func(i int) bool { return m.Dependencies[i].Name >= name })
	if i < len(m.Dependencies) && m.Dependencies[i].Name == name {
		return m.Dependencies[i], true
	}
	return Dependency{}, false
}

// Load reads and parses the manifest at path.
// A directory path is resolved to the Cargo.toml inside it.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		abs = filepath.Join(abs, FileName)
	}

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "no manifest at %s", abs)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "read %s", abs)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	m.Path = abs
	return m, nil
}

// Parse decodes manifest contents. The returned Manifest has an empty Path.
func Parse(data []byte) (*Manifest, error) {
	var cargo cargoFile
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestParse, err, "parse manifest")
	}

	m := &Manifest{}
	if cargo.Package != nil {
		m.Package = &Package{Name: cargo.Package.Name, Version: versionString(cargo.Package.Version)}
	}
	if cargo.Workspace != nil {
		m.Workspace = &Workspace{Members: cargo.Workspace.Members, Exclude: cargo.Workspace.Exclude}
	}

	for name, raw := range cargo.Dependencies {
		m.Dependencies = append(m.Dependencies, decodeDependency(name, raw))
	}
	sort.Slice(m.Dependencies, func(i, j int) bool { return m.Dependencies[i].Name < m.Dependencies[j].Name })
	return m, nil
}

func decodeDependency(name string, raw any) Dependency {
	dep := Dependency{Name: name, Package: name, DefaultFeatures: true}

	switch v := raw.(type) {
	case string:
		dep.Version = v
		dep.Form = FormShort
	case map[string]any:
		dep.Form = FormDetailed
		if inherited, _ := v["workspace"].(bool); inherited {
			dep.Form = FormInherited
		}
		if s, ok := v["version"].(string); ok {
			dep.Version = s
		}
		if s, ok := v["package"].(string); ok && s != "" {
			dep.Package = s
		}
		_, path := v["path"]
		_, git := v["git"]
		dep.Local = path || git
		if b, ok := v["optional"].(bool); ok {
			dep.Optional = b
		}
		for _, key := range []string{"default-features", "default_features"} {
			if b, ok := v[key].(bool); ok {
				dep.DefaultFeatures = b
				break
			}
		}
		if list, ok := v["features"].([]any); ok {
			for _, f := range list {
				if s, ok := f.(string); ok {
					dep.Features = append(dep.Features, s)
				}
			}
		}
	}
	return dep
}

// versionString tolerates version.workspace = true in [package].
func versionString(v any) string {
	s, _ := v.(string)
	return s
}

type cargoFile struct {
	Package *struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
	Dependencies map[string]any `toml:"dependencies"`
}
