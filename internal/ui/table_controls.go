package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableController interface {
	NextColumn()
	PrevColumn()
	HideActiveColumn() bool
	ShowAllColumns()
	TableMeta() string
}

const tableSeparator = "│"

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

// renderTableRow lays cells out in fixed-width slots. Cells wider than their
// slot are cut.
func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		w := widths[i]
		parts = append(parts, style.Width(w).MaxWidth(w).Render(cell))
	}
	sep := lipgloss.NewStyle().Foreground(ColorMuted).Render(tableSeparator)
	return strings.Join(parts, sep)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(parts, "┼"))
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return lipgloss.NewStyle().Underline(true).Foreground(ColorText).Render(label)
}
