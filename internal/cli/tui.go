package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tmarchal/pagegrid/pkg/registry"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PageListModel - Interactive page selection
// =============================================================================

// pageEntry is one selectable console page.
type pageEntry struct {
	Key     string
	Blocks  int
	Admin   bool
	Modules []string
}

// pageEntries builds the sorted selection list from a page registry.
func pageEntries(reg registry.Registry) []pageEntry {
	entries := make([]pageEntry, 0, len(reg))
	for _, key := range reg.PageKeys() {
		blocks, _ := reg.Page(key)

		admin := false
		moduleSet := map[string]struct{}{}
		for _, req := range blocks {
			if req == nil {
				continue
			}
			if req.Module == registry.AdminModule {
				admin = true
				continue
			}
			moduleSet[req.Module] = struct{}{}
		}
		modules := make([]string, 0, len(moduleSet))
		for m := range moduleSet {
			modules = append(modules, m)
		}
		sort.Strings(modules)

		entries = append(entries, pageEntry{Key: key, Blocks: len(blocks), Admin: admin, Modules: modules})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// PageListModel is the bubbletea model for interactive page selection.
type PageListModel struct {
	Pages    []pageEntry
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewPageListModel creates a new page list model from the registry.
func NewPageListModel(reg registry.Registry) PageListModel {
	return PageListModel{
		Pages:  pageEntries(reg),
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m PageListModel) Init() tea.Cmd {
	return nil
}

func (m PageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Pages)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Pages) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Pages[m.Cursor].Key
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Page"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Pages) {
		end = len(m.Pages)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Pages[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		access := "all users"
		if p.Admin && len(p.Modules) == 0 {
			access = "admin"
		} else if len(p.Modules) > 0 {
			access = strings.Join(p.Modules, ", ")
		}

		rows = append(rows, []string{cursor, p.Key, fmt.Sprintf("%d", p.Blocks), access})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Page", "Blocks", "Requires").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Pages) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorDim)
			}
			if isCurrent {
				if col != 3 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			if col == 1 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Pages))))

	return b.String()
}

// selectPage runs the interactive page picker and returns the chosen key.
// Returns "" when the user quit without selecting.
func selectPage(reg registry.Registry) (string, error) {
	model := NewPageListModel(reg)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(PageListModel); ok {
		return m.Selected, nil
	}
	return "", nil
}
