package crates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	fperrors "github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/httputil"
	"github.com/matzehuels/featprune/pkg/integrations"
)

// DefaultBaseURL is the crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

// VersionInfo is the feature table of one published crate version.
//
// Features holds the explicit [features] table plus the implicit feature
// cargo creates for every optional dependency that no feature references
// with "dep:" syntax, so it matches what `cargo metadata` reports.
type VersionInfo struct {
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	Features     map[string][]string `json:"features"`
	Dependencies []Dependency        `json:"dependencies"`
}

// Dependency is one dependency of a published version.
type Dependency struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // normal, dev or build
	Optional bool   `json:"optional"`
}

// Client fetches crate metadata from crates.io. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client. cache may be nil. crates.io requires
// a User-Agent, which is derived from version.
func NewClient(cache *httputil.Cache, version string) *Client {
	if cache != nil {
		cache = cache.Namespace("crates:")
	}
	headers := map[string]string{"User-Agent": integrations.UserAgent(version)}
	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another registry API root.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// FetchVersion returns the features and dependencies of crate at version.
// Published versions are immutable, so cached entries are reused unless
// refresh is set.
//
// Errors wrap [integrations.ErrNotFound] for an unknown crate or version and
// [integrations.ErrNetwork] for transport failures. A malformed crate name
// is rejected with INVALID_INPUT before any request is made.
func (c *Client) FetchVersion(ctx context.Context, crate, version string, refresh bool) (*VersionInfo, error) {
	if err := fperrors.ValidateCrateName(crate); err != nil {
		return nil, err
	}
	var info VersionInfo
	err := c.Cached(ctx, crate+"@"+version, refresh, &info, func() error {
		return c.fetchVersion(ctx, crate, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// LatestVersion returns the max_version of crate.
func (c *Client) LatestVersion(ctx context.Context, crate string, refresh bool) (string, error) {
	if err := fperrors.ValidateCrateName(crate); err != nil {
		return "", err
	}
	var version string
	err := c.Cached(ctx, crate+"@latest", refresh, &version, func() error {
		var data crateResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, integrations.PathEscape(crate)), &data); err != nil {
			return notFound(err, crate)
		}
		version = data.Crate.MaxVersion
		return nil
	})
	return version, err
}

func (c *Client) fetchVersion(ctx context.Context, crate, version string, info *VersionInfo) error {
	base := fmt.Sprintf("%s/crates/%s/%s", c.baseURL, integrations.PathEscape(crate), integrations.PathEscape(version))

	var data versionResponse
	if err := c.Get(ctx, base, &data); err != nil {
		return notFound(err, crate+" "+version)
	}

	var deps depsResponse
	if err := c.Get(ctx, base+"/dependencies", &deps); err != nil {
		return notFound(err, crate+" "+version)
	}

	*info = VersionInfo{
		Name:     data.Version.Crate,
		Version:  data.Version.Num,
		Features: make(map[string][]string, len(data.Version.Features)),
	}
	for name, implied := range data.Version.Features {
		info.Features[name] = append([]string{}, implied...)
	}
	for _, d := range deps.Dependencies {
		info.Dependencies = append(info.Dependencies, Dependency{Name: d.CrateID, Kind: d.Kind, Optional: d.Optional})
	}
	sort.Slice(info.Dependencies, func(i, j int) bool { return info.Dependencies[i].Name < info.Dependencies[j].Name })
	addImplicitFeatures(info)
	return nil
}

// addImplicitFeatures adds the feature cargo derives from an optional
// dependency that is never named with "dep:".
func addImplicitFeatures(info *VersionInfo) {
	explicit := make(map[string]bool)
	for _, implied := range info.Features {
		for _, f := range implied {
			if name, ok := strings.CutPrefix(f, "dep:"); ok {
				explicit[name] = true
			}
		}
	}
	for _, d := range info.Dependencies {
		if !d.Optional || explicit[d.Name] {
			continue
		}
		if _, ok := info.Features[d.Name]; !ok {
			info.Features[d.Name] = []string{"dep:" + d.Name}
		}
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: crate %s", err, what)
	}
	return err
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
	} `json:"crate"`
}

type versionResponse struct {
	Version struct {
		Crate    string              `json:"crate"`
		Num      string              `json:"num"`
		Features map[string][]string `json:"features"`
	} `json:"version"`
}

type depsResponse struct {
	Dependencies []struct {
		CrateID  string `json:"crate_id"`
		Kind     string `json:"kind"`
		Optional bool   `json:"optional"`
	} `json:"dependencies"`
}
