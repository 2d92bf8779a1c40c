package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/featprune/pkg/build"
	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/features"
)

// Cargo reads metadata from `cargo metadata --format-version 1`.
type Cargo struct {
	Binary string
	Logger *log.Logger
}

// NewCargo returns a provider that runs the cargo from [build.Binary].
func NewCargo(logger *log.Logger) *Cargo {
	if logger == nil {
		logger = log.Default()
	}
	return &Cargo{Binary: build.Binary(), Logger: logger}
}

// FetchPackageGraph implements [Provider].
func (c *Cargo) FetchPackageGraph(ctx context.Context, manifestPath string) (Packages, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadataFetch, err, "resolve %s", manifestPath)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, "metadata", "--format-version", "1", "--manifest-path", abs)
	cmd.Dir = filepath.Dir(abs)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if c.Logger != nil {
		c.Logger.Debug("cargo metadata", "manifest", abs)
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeMetadataFetch, err, "cargo metadata: %s", strings.TrimSpace(stderr.String()))
	}
	return DecodeCargo(stdout.Bytes(), abs)
}

// DecodeCargo extracts the dependency packages of the package at
// manifestPath from `cargo metadata` JSON.
//
// When the output has a resolve graph, each dependency is the exact package
// the resolver picked for this package. Without one (or when the package is
// not found in it) the first package listed under each name is used.
func DecodeCargo(data []byte, manifestPath string) (Packages, error) {
	var md cargoMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadataFetch, err, "decode cargo metadata")
	}

	byID := make(map[string]*cargoPackage, len(md.Packages))
	var root *cargoPackage
	for i := range md.Packages {
		p := &md.Packages[i]
		byID[p.ID] = p
		if root == nil && sameFile(p.ManifestPath, manifestPath) {
			root = p
		}
	}

	out := make(Packages)
	if root != nil && md.Resolve != nil {
		for _, node := range md.Resolve.Nodes {
			if node.ID != root.ID {
				continue
			}
			out.add(*root)
			for _, dep := range node.Deps {
				if !dep.normal() {
					continue
				}
				if p, ok := byID[dep.Pkg]; ok {
					out.add(*p)
				}
			}
			return out, nil
		}
	}

	for _, p := range md.Packages {
		out.add(p)
	}
	return out, nil
}

func (p Packages) add(c cargoPackage) {
	if _, ok := p[c.Name]; ok {
		return
	}
	info := PackageInfo{Name: c.Name, Version: c.Version, Features: features.Graph(c.Features)}
	if info.Features == nil {
		info.Features = features.Graph{}
	}
	for _, d := range c.Dependencies {
		info.Dependencies = append(info.Dependencies, d.Name)
	}
	p[c.Name] = info
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

type cargoMetadata struct {
	Packages []cargoPackage `json:"packages"`
	Resolve  *struct {
		Nodes []struct {
			ID   string    `json:"id"`
			Deps []nodeDep `json:"deps"`
		} `json:"nodes"`
	} `json:"resolve"`
}

type cargoPackage struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	ManifestPath string              `json:"manifest_path"`
	Features     map[string][]string `json:"features"`
	Dependencies []struct {
		Name string `json:"name"`
	} `json:"dependencies"`
}

type nodeDep struct {
	Name     string `json:"name"`
	Pkg      string `json:"pkg"`
	DepKinds []struct {
		Kind *string `json:"kind"`
	} `json:"dep_kinds"`
}

// normal reports whether the edge includes a [dependencies] entry. Old cargo
// versions omit dep_kinds entirely.
func (d nodeDep) normal() bool {
	if len(d.DepKinds) == 0 {
		return true
	}
	for _, k := range d.DepKinds {
		if k.Kind == nil || *k.Kind == "normal" {
			return true
		}
	}
	return false
}
