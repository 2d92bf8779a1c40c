package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/featprune/pkg/errors"
)

// LockFileName is the name of cargo's lock file.
const LockFileName = "Cargo.lock"

// Lock is the subset of Cargo.lock needed to pin registry versions.
type Lock struct {
	Packages []LockedPackage `toml:"package"`
}

// LockedPackage is one [[package]] entry of Cargo.lock.
type LockedPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  string `toml:"source"`
}

// FromRegistry reports whether the package was resolved from a registry
// rather than a path or git source.
func (p LockedPackage) FromRegistry() bool {
	return strings.HasPrefix(p.Source, "registry+") || strings.HasPrefix(p.Source, "sparse+")
}

// Versions returns every locked registry version of the named package, in
// lock file order. Several versions of one crate may coexist.
func (l *Lock) Versions(name string) []string {
	var out []string
	for _, p := range l.Packages {
		if p.Name == name && p.FromRegistry() {
			out = append(out, p.Version)
		}
	}
	return out
}

// ParseLock decodes Cargo.lock contents.
func ParseLock(data []byte) (*Lock, error) {
	var l Lock
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestParse, err, "parse lock file")
	}
	return &l, nil
}

// FindLock walks up from dir and loads the first Cargo.lock it finds.
// Workspace members share the lock file of their root, so the search
// continues past the member directory.
func FindLock(dir string) (*Lock, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	for {
		path := filepath.Join(dir, LockFileName)
		data, err := os.ReadFile(path)
		if err == nil {
			l, err := ParseLock(data)
			return l, path, err
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", errors.New(errors.ErrCodeManifestNotFound, "no %s above %s", LockFileName, dir)
		}
		dir = parent
	}
}
