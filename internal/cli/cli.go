// Package cli implements the cargo-featprune command-line interface.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/featprune/pkg/build"
	"github.com/matzehuels/featprune/pkg/buildinfo"
	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/httputil"
	"github.com/matzehuels/featprune/pkg/integrations/crates"
	"github.com/matzehuels/featprune/pkg/metadata"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the binary name shown in help and completions.
	appName = "cargo-featprune"

	// subcommandName is the argument cargo passes when invoked as
	// "cargo featprune".
	subcommandName = "featprune"

	// defaultCacheTTL is how long crates.io responses are reused.
	defaultCacheTTL = 24 * time.Hour
)

// Metadata sources accepted by --metadata.
const (
	metadataCargo  = "cargo"
	metadataCrates = "crates"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// newVerifier returns the cargo build verifier.
func (c *CLI) newVerifier() build.Verifier {
	return build.NewCargo(c.Logger)
}

// newProvider returns the metadata provider selected by cfg.
func (c *CLI) newProvider(cfg *config) (metadata.Provider, error) {
	switch cfg.Metadata {
	case metadataCargo:
		return metadata.NewCargo(c.Logger), nil
	case metadataCrates:
		cache, err := newCache(cfg.NoCache, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		client := crates.NewClient(cache, buildinfo.Version)
		return metadata.NewCrates(client, c.Logger,
			metadata.WithParallel(cfg.Parallel),
			metadata.WithRefresh(cfg.Refresh),
		), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown metadata source %q (want %s or %s)",
		cfg.Metadata, metadataCargo, metadataCrates)
}

// newCache opens the HTTP response cache. A nil cache disables caching.
func newCache(noCache bool, ttl time.Duration) (*httputil.Cache, error) {
	if noCache {
		return nil, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, nil
	}
	return httputil.NewCache(dir, ttl)
}
