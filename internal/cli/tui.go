package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/featprune/pkg/report"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PruneSelectModel - Interactive choice of dependencies to prune
// =============================================================================

// pruneItem is one dependency of one package in the report.
type pruneItem struct {
	Package    string
	Dependency string
	Removable  []string
	Kept       []string
	Selected   bool
}

// PruneSelectModel is the bubbletea model for choosing which report entries
// prune applies. Every entry starts selected.
type PruneSelectModel struct {
	Items     []pruneItem
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewPruneSelectModel lists every dependency in rep.
func NewPruneSelectModel(rep *report.Report) PruneSelectModel {
	var items []pruneItem
	for _, pkg := range rep.PackageNames() {
		p := rep.Packages[pkg]
		for _, dep := range p.DependencyNames() {
			d := p.Dependencies[dep]
			items = append(items, pruneItem{
				Package:    pkg,
				Dependency: dep,
				Removable:  d.Removable.Sorted(),
				Kept:       d.Kept().Sorted(),
				Selected:   true,
			})
		}
	}
	return PruneSelectModel{Items: items, Height: 15}
}

func (m PruneSelectModel) Init() tea.Cmd {
	return nil
}

func (m PruneSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space", "x":
			if len(m.Items) > 0 {
				m.Items[m.Cursor].Selected = !m.Items[m.Cursor].Selected
			}
		case "a":
			all := true
			for _, it := range m.Items {
				all = all && it.Selected
			}
			for i := range m.Items {
				m.Items[i].Selected = !all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PruneSelectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dependencies to Prune"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ prune  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if it.Selected {
			check = "[x]"
		}
		rows = append(rows, []string{cursor + check, it.Package, it.Dependency,
			strings.Join(it.Removable, " "), orDash(strings.Join(it.Kept, " "))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Dependency", "Drop", "Keep").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			if !m.Items[idx].Selected {
				return base.Foreground(colorDim)
			}
			switch col {
			case 3:
				return base.Foreground(colorGreen)
			case 4:
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.selectedCount(), len(m.Items))))
	return b.String()
}

func (m PruneSelectModel) selectedCount() int {
	n := 0
	for _, it := range m.Items {
		if it.Selected {
			n++
		}
	}
	return n
}

// Filter returns a copy of rep holding only the selected dependencies.
// Packages left without a selected dependency are dropped.
func (m PruneSelectModel) Filter(rep *report.Report) *report.Report {
	out := &report.Report{
		Version:  rep.Version,
		RootName: rep.RootName,
		RunID:    rep.RunID,
		Packages: make(map[string]*report.Package),
	}
	for _, it := range m.Items {
		if !it.Selected {
			continue
		}
		src := rep.Packages[it.Package]
		dst, ok := out.Packages[it.Package]
		if !ok {
			dst = report.NewPackage(src.ManifestPath)
			out.Packages[it.Package] = dst
		}
		dst.Add(it.Dependency, *src.Dependencies[it.Dependency])
	}
	return out
}

// selectInteractively runs the selector. It returns nil when the user quits
// without confirming.
func selectInteractively(rep *report.Report) (*report.Report, error) {
	final, err := tea.NewProgram(NewPruneSelectModel(rep)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(PruneSelectModel)
	if !m.Confirmed {
		return nil, nil
	}
	return m.Filter(rep), nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
