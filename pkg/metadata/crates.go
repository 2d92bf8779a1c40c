package metadata

import (
	"context"
	goerrors "errors"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/features"
	"github.com/matzehuels/featprune/pkg/integrations"
	"github.com/matzehuels/featprune/pkg/integrations/crates"
	"github.com/matzehuels/featprune/pkg/manifest"
)

const (
	defaultParallel  = 8
	defaultCacheSize = 1024
)

// Crates reads feature tables from the crates.io API instead of running
// cargo. Versions are taken from Cargo.lock when one exists; without a lock
// file the newest published version is used.
//
// Path and git dependencies have no registry entry and are left out, so the
// resolver treats them as having no metadata.
type Crates struct {
	client   *crates.Client
	logger   *log.Logger
	seen     *lru.Cache[string, PackageInfo]
	parallel int
	refresh  bool
}

// CratesOption configures a [Crates] provider.
type CratesOption func(*Crates)

// WithParallel bounds concurrent registry requests.
func WithParallel(n int) CratesOption {
	return func(c *Crates) {
		if n > 0 {
			c.parallel = n
		}
	}
}

// WithRefresh bypasses the on-disk HTTP cache.
func WithRefresh(refresh bool) CratesOption {
	return func(c *Crates) { c.refresh = refresh }
}

// NewCrates creates a provider over client. Fetched versions are memoized in
// memory for the lifetime of the provider, so workspace members that share
// dependencies query the registry once.
func NewCrates(client *crates.Client, logger *log.Logger, opts ...CratesOption) *Crates {
	if logger == nil {
		logger = log.Default()
	}
	seen, _ := lru.New[string, PackageInfo](defaultCacheSize)
	c := &Crates{client: client, logger: logger, seen: seen, parallel: defaultParallel}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchPackageGraph implements [Provider].
func (c *Crates) FetchPackageGraph(ctx context.Context, manifestPath string) (Packages, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	lock, lockPath, err := manifest.FindLock(m.Dir())
	if err != nil {
		c.logger.Warn("no lock file, using latest published versions", "package", m.Name())
		lock = nil
	} else {
		c.logger.Debug("pinning versions", "lock", lockPath)
	}

	var (
		mu  sync.Mutex
		out = make(Packages)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for _, dep := range m.Dependencies {
		if dep.Local || dep.Form == manifest.FormUnknown || dep.Form == manifest.FormInherited {
			continue
		}
		g.Go(func() error {
			info, ok, err := c.fetch(gctx, dep, lock)
			if err != nil || !ok {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			out[dep.Package] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeMetadataFetch, err, "crates.io metadata for %s", m.Name())
	}
	return out, nil
}

func (c *Crates) fetch(ctx context.Context, dep manifest.Dependency, lock *manifest.Lock) (PackageInfo, bool, error) {
	version, err := c.resolveVersion(ctx, dep, lock)
	if err != nil || version == "" {
		return PackageInfo{}, false, err
	}

	key := dep.Package + "@" + version
	if info, ok := c.seen.Get(key); ok {
		return info, true, nil
	}

	v, err := c.client.FetchVersion(ctx, dep.Package, version, c.refresh)
	if goerrors.Is(err, integrations.ErrNotFound) {
		c.logger.Warn("not on crates.io", "dependency", dep.Name, "version", version)
		return PackageInfo{}, false, nil
	}
	if err != nil {
		return PackageInfo{}, false, err
	}

	info := PackageInfo{Name: dep.Package, Version: v.Version, Features: features.Graph(v.Features)}
	for _, d := range v.Dependencies {
		if d.Kind == "normal" || d.Kind == "" {
			info.Dependencies = append(info.Dependencies, d.Name)
		}
	}
	c.seen.Add(key, info)
	return info, true, nil
}

func (c *Crates) resolveVersion(ctx context.Context, dep manifest.Dependency, lock *manifest.Lock) (string, error) {
	if lock != nil {
		if v := pickVersion(dep.Version, lock.Versions(dep.Package)); v != "" {
			return v, nil
		}
	}
	if dep.Version == "" {
		return "", nil
	}
	v, err := c.client.LatestVersion(ctx, dep.Package, c.refresh)
	if goerrors.Is(err, integrations.ErrNotFound) {
		c.logger.Warn("not on crates.io", "dependency", dep.Name)
		return "", nil
	}
	return v, err
}
