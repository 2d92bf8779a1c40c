package cli

import (
	goerrors "errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/featprune/pkg/build"
	"github.com/matzehuels/featprune/pkg/errors"
)

const (
	// configName is the optional config file looked up in the project root.
	configName = "featprune"

	// envPrefix prefixes environment overrides (FEATPRUNE_JOBS, ...).
	envPrefix = "FEATPRUNE"
)

// config is the resolved analyze configuration. Precedence from lowest to
// highest: flag defaults, featprune.toml, FEATPRUNE_* environment, flags
// given on the command line.
type config struct {
	Root      string
	ReportDir string
	Resume    bool
	Exclude   []string
	Build     build.Options
	Metadata  string
	Parallel  int
	Refresh   bool
	NoCache   bool
	CacheTTL  time.Duration
	File      string // config file used, empty when none
}

// loadConfig layers the config file and environment under the flags of fs.
// An explicit configFile must exist; the default featprune.toml is optional.
func loadConfig(fs *pflag.FlagSet, root, configFile string) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "bind flags")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath(root)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !goerrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
	}

	cfg := &config{
		Root:      root,
		ReportDir: v.GetString("report-dir"),
		Resume:    v.GetBool("resume"),
		Exclude:   v.GetStringSlice("exclude"),
		Build: build.Options{
			Lib:      v.GetBool("lib"),
			Bins:     v.GetBool("bins"),
			Tests:    v.GetBool("tests"),
			Benches:  v.GetBool("benches"),
			Examples: v.GetBool("examples"),
			Jobs:     v.GetInt("jobs"),
			Targets:  v.GetStringSlice("target"),
		},
		Metadata: v.GetString("metadata"),
		Parallel: v.GetInt("parallel"),
		Refresh:  v.GetBool("refresh"),
		NoCache:  v.GetBool("no-cache"),
		CacheTTL: v.GetDuration("cache-ttl"),
		File:     v.ConfigFileUsed(),
	}
	if cfg.ReportDir != "" && !filepath.IsAbs(cfg.ReportDir) {
		cfg.ReportDir = filepath.Join(root, cfg.ReportDir)
	}
	if cfg.Build.Jobs < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "jobs must not be negative, got %d", cfg.Build.Jobs)
	}
	// cargo builds lib and bins when no kind flag is given
	if len(cfg.Build.Kinds()) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no build kind selected; enable at least one of lib, bins, tests, benches, examples")
	}
	return cfg, nil
}

// rootDir resolves the project root argument to an absolute directory.
// A Cargo.toml path selects its directory.
func rootDir(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", arg)
	}
	if filepath.Base(abs) == "Cargo.toml" {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}
