package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/featprune/pkg/errors"
	"github.com/matzehuels/featprune/pkg/prune"
	"github.com/matzehuels/featprune/pkg/report"
)

// pruneCommand creates the prune command.
func (c *CLI) pruneCommand() *cobra.Command {
	var (
		input       string
		dryRun      bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "prune [workspace-root]",
		Short: "Rewrite Cargo.toml files to drop the features a report marks removable",
		Long: `Prune reads report.json and rewrites every recorded dependency with
default-features = false and only the features the analysis found required.
Builds are not rerun.`,
		Example: `  cargo featprune prune
  cargo featprune prune -i target/featprune/report.json --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := input
			if path == "" {
				var arg string
				if len(args) > 0 {
					arg = args[0]
				}
				root, err := rootDir(arg)
				if err != nil {
					return err
				}
				path = report.Path(root)
			}
			return c.runPrune(cmd, path, dryRun, interactive)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "report to apply (default <root>/report.json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the changes without writing")
	cmd.Flags().BoolVarP(&interactive, "interactive", "I", false, "choose the dependencies to prune")
	return cmd
}

func (c *CLI) runPrune(cmd *cobra.Command, path string, dryRun, interactive bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	if !prune.Exists(abs) {
		return errors.New(errors.ErrCodeReportIO, "no report at %s; run analyze first", abs)
	}
	rep, err := report.Load(abs)
	if err != nil {
		return err
	}

	if interactive {
		if rep, err = selectInteractively(rep); err != nil {
			return err
		}
		if rep == nil {
			printInfo("Prune cancelled")
			return nil
		}
	}

	results, err := prune.Apply(cmd.Context(), rep, prune.Options{DryRun: dryRun, Logger: c.Logger})
	for _, res := range results {
		printPruneResult(res, dryRun)
	}
	return err
}
