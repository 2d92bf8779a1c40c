package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/featprune/pkg/buildinfo"
	"github.com/matzehuels/featprune/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   appName,
		Short: "Find the dependency features a Cargo package can build without",
		Long: `cargo-featprune tries each enabled feature of every dependency, one at a
time, rebuilding the package without it. Features the build does not need are
recorded in report.json; "prune" then rewrites Cargo.toml to drop them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--log-level")
			}
			c.SetLogLevel(level)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides --verbose")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.buildReportCommand())
	root.AddCommand(c.pruneCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// StripSubcommand drops the "featprune" argument cargo inserts when the
// binary runs as "cargo featprune".
func StripSubcommand(args []string) []string {
	if len(args) > 0 && args[0] == subcommandName {
		return args[1:]
	}
	return args
}
