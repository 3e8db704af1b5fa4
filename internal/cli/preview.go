package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tmarchal/pagegrid/internal/config"
	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/grid"
)

// previewCommand creates the preview command rendering default layouts.
func (c *CLI) previewCommand() *cobra.Command {
	var breakpoint string

	cmd := &cobra.Command{
		Use:   "preview <manifest.toml>",
		Short: "Render a page's default layout from a blocks manifest",
		Long: `Render a page's default layout from a blocks manifest.

The manifest describes the page's blocks with their default placements per
breakpoint. Preview builds the same default layout the console would show a
user with no saved customization and draws it as a cell grid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp := grid.Breakpoint(breakpoint)
			if !bp.Valid() {
				return pgerrors.New(pgerrors.ErrCodeInvalidConfig, "unknown breakpoint %q", breakpoint)
			}

			manifest, err := config.LoadManifest(args[0])
			if err != nil {
				return err
			}
			blocks := manifest.GridBlocks()
			defaults := grid.BuildDefaults(blocks)

			c.Logger.Debug("built defaults", "page", manifest.Page, "blocks", len(blocks))

			printKeyValue("Page", manifest.Page)
			printKeyValue("Breakpoint", fmt.Sprintf("%s (%d columns)", bp, bp.Columns()))
			printNewline()
			fmt.Println(renderLayout(defaults[bp], bp.Columns()))
			printNewline()
			fmt.Println(renderLegend(defaults[bp], blocks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&breakpoint, "breakpoint", "b", string(grid.Large), "breakpoint to render (lg, md, sm, xs)")

	return cmd
}

// glyphs are assigned to blocks in item order for the cell grid.
const glyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// renderLayout draws items as a character cell grid, one glyph per block.
func renderLayout(items []grid.Item, columns int) string {
	height := 0
	for _, item := range items {
		if item.Y+item.H > height {
			height = item.Y + item.H
		}
	}
	if height == 0 || columns == 0 {
		return StyleDim.Render("  (empty layout)")
	}

	// cells[row][col] holds the glyph index or -1 for empty.
	cells := make([][]int, height)
	for r := range cells {
		cells[r] = make([]int, columns)
		for c := range cells[r] {
			cells[r][c] = -1
		}
	}
	for idx, item := range items {
		for r := item.Y; r < item.Y+item.H && r < height; r++ {
			for c := item.X; c < item.X+item.W && c < columns; c++ {
				cells[r][c] = idx
			}
		}
	}

	var b strings.Builder
	border := StyleDim.Render("|")
	for r := range cells {
		b.WriteString("  " + border)
		for c := range cells[r] {
			if idx := cells[r][c]; idx >= 0 {
				glyph := string(glyphs[idx%len(glyphs)])
				b.WriteString(StyleHighlight.Render(glyph + glyph))
			} else {
				b.WriteString(StyleDim.Render("··"))
			}
		}
		b.WriteString(border)
		if r < len(cells)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderLegend prints the glyph-to-block mapping with geometry and constraints.
func renderLegend(items []grid.Item, blocks []grid.Block) string {
	byID := make(map[string]grid.Block, len(blocks))
	for _, blk := range blocks {
		byID[blk.ID] = blk
	}

	rows := [][]string{}
	for idx, item := range items {
		blk := byID[item.ID]

		title := blk.Title
		if title == "" {
			title = item.ID
		}

		var notes []string
		if blk.Required {
			notes = append(notes, "required")
		}
		if item.MinH > 0 {
			notes = append(notes, fmt.Sprintf("minH %d", item.MinH))
		}
		if item.MaxH > 0 {
			notes = append(notes, fmt.Sprintf("maxH %d", item.MaxH))
		}
		if item.Resizable != nil && !*item.Resizable {
			notes = append(notes, "fixed size")
		}

		rows = append(rows, []string{
			string(glyphs[idx%len(glyphs)]),
			title,
			fmt.Sprintf("%d,%d", item.X, item.Y),
			fmt.Sprintf("%d×%d", item.W, item.H),
			strings.Join(notes, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Block", "Pos", "Size", "Constraints").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			if col >= 2 {
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
