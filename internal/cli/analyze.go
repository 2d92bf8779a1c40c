package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/minimize"
	"github.com/matzehuels/featprune/pkg/observability"
	"github.com/matzehuels/featprune/pkg/project"
	"github.com/matzehuels/featprune/pkg/report"
)

// markdownName is written next to report.json by build-report.
const markdownName = "report.md"

// analyzeFlags are shared by analyze and build-report. Only the build kind
// defaults differ.
type analyzeFlags struct {
	configFile string
	markdown   bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [workspace-root]",
		Short: "Find removable dependency features by rebuilding without each one",
		Long: `Analyze tries every enabled feature of every dependency, one at a time.
For each feature the package is rebuilt with the remaining features; if the
build passes, the feature is recorded as removable.

Results are written to report.json in the report directory (the workspace
root by default) after each package.`,
		Example: `  # Analyze the package in the current directory
  cargo featprune analyze

  # Analyze a workspace, skipping tokio, using crates.io for metadata
  cargo featprune analyze ./my-workspace --exclude tokio --metadata crates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd, args, flags)
		},
	}
	c.addAnalyzeFlags(cmd, &flags, false)
	return cmd
}

// buildReportCommand creates build-report: analyze with every build kind on,
// plus a Markdown rendering of the report.
func (c *CLI) buildReportCommand() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "build-report [workspace-root]",
		Short: "Analyze with all target kinds and write report.json and report.md",
		Long: `build-report runs the same analysis as analyze, but every trial builds all
target kinds (lib, bins, tests, benches, examples) so a feature is only
reported removable when nothing in the package needs it. A Markdown summary is
written next to report.json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.markdown = true
			return c.runAnalyze(cmd, args, flags)
		},
	}
	c.addAnalyzeFlags(cmd, &flags, true)
	return cmd
}

func (c *CLI) addAnalyzeFlags(cmd *cobra.Command, flags *analyzeFlags, allKinds bool) {
	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "config file (default <root>/featprune.toml)")
	f.String("report-dir", "", "directory for report.json (default: workspace root)")
	f.Bool("resume", false, "keep packages already in an existing report")
	f.StringSlice("exclude", nil, "dependencies to leave untouched (repeatable)")
	f.IntP("jobs", "j", runtime.NumCPU(), "parallel compiler jobs per build (0 lets cargo decide)")
	f.Bool("lib", true, "build the library target")
	f.Bool("bins", true, "build binary targets")
	f.Bool("tests", allKinds, "build test targets")
	f.Bool("benches", allKinds, "build benchmark targets")
	f.Bool("examples", allKinds, "build example targets")
	f.StringSlice("target", nil, "target triple to build for (repeatable, default host)")
	f.String("metadata", metadataCargo, "feature metadata source: cargo or crates")
	f.Int("parallel", 8, "concurrent crates.io requests (--metadata crates)")
	f.Bool("refresh", false, "ignore cached crates.io responses")
	f.Bool("no-cache", false, "disable the crates.io response cache")
	f.Duration("cache-ttl", defaultCacheTTL, "lifetime of cached crates.io responses")
}

func (c *CLI) runAnalyze(cmd *cobra.Command, args []string, flags analyzeFlags) error {
	ctx := cmd.Context()
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	root, err := rootDir(arg)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.Flags(), root, flags.configFile)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}

	proj, err := project.Load(root)
	if err != nil {
		return err
	}
	reportPath := proj.ReportPath(cfg.ReportDir)
	rep, err := c.openReport(proj, reportPath, cfg.Resume)
	if err != nil {
		return err
	}

	provider, err := c.newProvider(cfg)
	if err != nil {
		return err
	}
	engine := minimize.NewEngine(c.newVerifier(), c.Logger, minimize.Options{
		Build:   cfg.Build,
		Exclude: cfg.Exclude,
	})
	analyzer := minimize.NewAnalyzer(engine, provider, c.Logger)

	stats := observability.NewTrialStats()
	observability.SetMinimizeHooks(stats)
	defer observability.Reset()

	members := proj.Members()
	c.Logger.Info("analyzing", "root", proj.Name(), "packages", len(members),
		"kinds", strings.Join(cfg.Build.Kinds(), ","), "metadata", cfg.Metadata)
	prog := newProgress(c.Logger)

	sum, runErr := analyzer.Analyze(ctx, members, rep, reportPath)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("Analysis finished")

	if flags.markdown {
		if err := writeMarkdown(rep, filepath.Join(filepath.Dir(reportPath), markdownName)); err != nil {
			return err
		}
	}
	printAnalyzeSummary(sum, stats.Snapshot(), rep, reportPath, flags.markdown)
	return runErr
}

// openReport loads the existing report when resuming, otherwise starts a new
// one. A report with another version is fatal.
func (c *CLI) openReport(proj *project.Project, path string, resume bool) (*report.Report, error) {
	if resume {
		if _, err := os.Stat(path); err == nil {
			rep, err := report.Load(path)
			if err != nil {
				return nil, err
			}
			c.Logger.Info("resuming", "report", path, "packages", len(rep.Packages))
			return rep, nil
		}
	}
	return report.New(proj.Name()), nil
}

func writeMarkdown(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportIO, err, "create %s", path)
	}
	if err := rep.WriteMarkdown(f); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeReportIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeReportIO, err, "write %s", path)
	}
	return nil
}
