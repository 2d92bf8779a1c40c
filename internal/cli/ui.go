package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/featprune/pkg/minimize"
	"github.com/matzehuels/featprune/pkg/observability"
	"github.com/matzehuels/featprune/pkg/prune"
	"github.com/matzehuels/featprune/pkg/report"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, removable
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, required
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleRemovable = lipgloss.NewStyle().Foreground(colorGreen)
	styleRequired  = lipgloss.NewStyle().Foreground(colorRed)
	styleCommand   = lipgloss.NewStyle().Foreground(colorBlue)
	styleDiffAdd   = lipgloss.NewStyle().Foreground(colorGreen)
	styleDiffDel   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Report Output
// =============================================================================

// printReport prints every package and dependency of rep with removable
// features in green and required ones in red.
func printReport(rep *report.Report) {
	t := rep.Totals()
	fmt.Println(StyleTitle.Render("Feature report for " + rep.RootName))
	printKeyValue("packages", fmt.Sprint(t.Packages))
	printKeyValue("removable", fmt.Sprintf("%d of %d features", t.Removable, t.Original))
	if rep.RunID != "" {
		printKeyValue("run", rep.RunID)
	}
	for _, name := range rep.PackageNames() {
		pkg := rep.Packages[name]
		fmt.Println()
		fmt.Println(StyleTitle.Render(name) + " " + StyleDim.Render(pkg.ManifestPath))
		for _, dep := range pkg.DependencyNames() {
			d := pkg.Dependencies[dep]
			fmt.Printf("  %s %s %s\n",
				StyleValue.Render(dep),
				renderFeatures(styleRemovable, "-", d.Removable.Sorted()),
				renderFeatures(styleRequired, "", d.Required.Sorted()))
		}
	}
}

func renderFeatures(style lipgloss.Style, prefix string, names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = style.Render(prefix + n)
	}
	return strings.Join(parts, " ")
}

// printAnalyzeSummary prints the outcome of analyze and build-report.
func printAnalyzeSummary(sum *minimize.Summary, stats observability.Stats, rep *report.Report, reportPath string, markdown bool) {
	fmt.Println()
	t := rep.Totals()
	printSuccess("Analyzed %d packages, %d skipped", len(sum.Analyzed), len(sum.Skipped))
	printDetail("%d trials · %d removable · %d required · mean build %s · slowest %s",
		stats.Trials, stats.Removable, stats.Required, stats.Mean().Round(time.Millisecond), stats.Slowest.Round(time.Millisecond))
	printDetail("report: %d removable of %d enabled features in %d dependencies", t.Removable, t.Original, t.Dependencies)
	for name, err := range sum.Failed {
		printError("%s: %s", name, err)
	}
	printFile(reportPath)
	if markdown {
		printFile(filepathSibling(reportPath, markdownName))
	}
	if t.Removable > 0 {
		fmt.Println()
		printNextStep("Apply with", appName+" prune -i "+reportPath)
	}
}

// printPruneResult prints what prune changed in one manifest.
func printPruneResult(res prune.Result, dryRun bool) {
	verb := "Pruned"
	if dryRun {
		verb = "Would prune"
	}
	if len(res.Updated) > 0 {
		printSuccess("%s %d dependencies of %s", verb, len(res.Updated), res.Package)
	} else {
		printInfo("Nothing to prune in %s", res.Package)
	}
	for dep, err := range res.Failed {
		printWarning("%s: %s", dep, err)
	}
	if dryRun && res.Diff != "" {
		printDiff(res.Diff)
	}
}

func printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			fmt.Println(StyleDim.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Println(styleDiffAdd.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Println(styleDiffDel.Render(line))
		default:
			fmt.Println(line)
		}
	}
}
