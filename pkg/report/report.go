package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/features"
)

// Version is the report format version. Reports with another version are
// rejected by [Load].
const Version = 0

// FileName is the report file written into the report directory.
const FileName = "report.json"

// Report records, per package and dependency, which features a minimization
// run found removable.
type Report struct {
	Version  int                 `json:"version"`
	RootName string              `json:"root_name"`
	RunID    string              `json:"run_id,omitempty"`
	Packages map[string]*Package `json:"workspace_crates"`
}

// Package is the report entry of one package.
type Package struct {
	ManifestPath string                 `json:"full_path"`
	Dependencies map[string]*Dependency `json:"dependencies"`
}

// Dependency holds the outcome for one dependency. Removable and Required
// partition Original.
type Dependency struct {
	Original  features.Set `json:"original_features"`
	Removable features.Set `json:"successfully_removed_features"`
	Required  features.Set `json:"unsuccessfully_removed_features"`
}

// Kept returns the features a prune leaves enabled.
func (d *Dependency) Kept() features.Set {
	return d.Original.Difference(d.Removable)
}

// New creates an empty report for the analyzed root.
func New(rootName string) *Report {
	return &Report{
		Version:  Version,
		RootName: rootName,
		RunID:    uuid.NewString(),
		Packages: make(map[string]*Package),
	}
}

// NewPackage creates an empty package entry.
func NewPackage(manifestPath string) *Package {
	return &Package{ManifestPath: manifestPath, Dependencies: make(map[string]*Dependency)}
}

// Add records dep under name. Dependencies without removable features are
// not recorded.
func (p *Package) Add(name string, dep Dependency) {
	if dep.Removable.Len() == 0 {
		return
	}
	p.Dependencies[name] = &dep
}

// Empty reports whether the package has no recorded dependency.
func (p *Package) Empty() bool { return len(p.Dependencies) == 0 }

// AddPackage records pkg under name. Empty packages are not recorded.
func (r *Report) AddPackage(name string, pkg *Package) {
	if pkg == nil || pkg.Empty() {
		return
	}
	r.Packages[name] = pkg
}

// Has reports whether a package is recorded.
func (r *Report) Has(name string) bool {
	_, ok := r.Packages[name]
	return ok
}

// PackageNames returns the recorded package names in sorted order.
func (r *Report) PackageNames() []string {
	names := make([]string, 0, len(r.Packages))
	for name := range r.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependencyNames returns the recorded dependency names in sorted order.
func (p *Package) DependencyNames() []string {
	names := make([]string, 0, len(p.Dependencies))
	for name := range p.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the report file path inside dir.
func Path(dir string) string { return filepath.Join(dir, FileName) }

// Marshal encodes r as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportIO, err, "encode report")
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a report. The version is checked before anything else
// is decoded, so a mismatch never yields a partially filled report.
func Unmarshal(data []byte) (*Report, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportIO, err, "decode report")
	}
	if probe.Version == nil || *probe.Version != Version {
		found := "none"
		if probe.Version != nil {
			found = strconv.Itoa(*probe.Version)
		}
		return nil, errors.New(errors.ErrCodeReportVersionMismatch,
			"report version %s is not supported (expected %d); rerun analyze", found, Version)
	}

	var r Report
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportIO, err, "decode report")
	}
	if r.Packages == nil {
		r.Packages = make(map[string]*Package)
	}
	for name, p := range r.Packages {
		if p == nil {
			return nil, errors.New(errors.ErrCodeReportIO, "decode report: package %s is null", name)
		}
		if p.Dependencies == nil {
			p.Dependencies = make(map[string]*Dependency)
		}
		for dep, d := range p.Dependencies {
			if d == nil {
				return nil, errors.New(errors.ErrCodeReportIO, "decode report: dependency %s of %s is null", dep, name)
			}
		}
	}
	return &r, nil
}

// Load reads the report at path.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportIO, err, "read report %s", path)
	}
	r, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	return r, nil
}

// Save writes the report to path, replacing it atomically.
func (r *Report) Save(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeReportIO, err, "create report directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeReportIO, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeReportIO, err, "write %s", path)
	}
	return nil
}
