package report

import (
	"fmt"
	"io"
	"strings"
)

// Totals summarizes a report.
type Totals struct {
	Packages     int
	Dependencies int
	Original     int
	Removable    int
}

// Totals counts packages, dependencies and features across the report.
func (r *Report) Totals() Totals {
	var t Totals
	for _, p := range r.Packages {
		t.Packages++
		for _, d := range p.Dependencies {
			t.Dependencies++
			t.Original += d.Original.Len()
			t.Removable += d.Removable.Len()
		}
	}
	return t
}

// WriteMarkdown renders the report as a Markdown document with one table
// per package. Packages and dependencies appear in sorted order.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder
	t := r.Totals()
	fmt.Fprintf(&b, "# Feature report for `%s`\n\n", r.RootName)
	fmt.Fprintf(&b, "%d removable of %d enabled features across %d dependencies in %d packages.\n",
		t.Removable, t.Original, t.Dependencies, t.Packages)

	for _, name := range r.PackageNames() {
		p := r.Packages[name]
		fmt.Fprintf(&b, "\n## %s\n\n", name)
		fmt.Fprintf(&b, "Manifest: `%s`\n\n", p.ManifestPath)
		b.WriteString("| Dependency | Removable | Required |\n")
		b.WriteString("|---|---|---|\n")
		for _, dep := range p.DependencyNames() {
			d := p.Dependencies[dep]
			fmt.Fprintf(&b, "| %s | %s | %s |\n", dep, codeList(d.Removable.Sorted()), codeList(d.Required.Sorted()))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func codeList(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
