package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/featprune/pkg/report"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "report [report.json]",
		Short: "Show a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := report.FileName
			if len(args) > 0 {
				path = args[0]
			}
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = report.Path(path)
			}
			rep, err := report.Load(filepath.Clean(path))
			if err != nil {
				return err
			}
			if markdown {
				return rep.WriteMarkdown(cmd.OutOrStdout())
			}
			printReport(rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the report as Markdown")
	return cmd
}

func filepathSibling(path, name string) string {
	return filepath.Join(filepath.Dir(path), name)
}
