package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/tui/styles"
)

// Responsive layout constants.
const (
	MinTerminalWidth   = 60 // narrower terminals get a resize hint
	SidePanelThreshold = 90 // below this width the history panel is hidden
	SidePanelMinWidth  = 32
)

// ComputeColumnWidths splits the terminal between the segment list and the
// history panel. The list keeps roughly two thirds; the panel never drops
// below SidePanelMinWidth and disappears entirely on narrow terminals.
func ComputeColumnWidths(termWidth int) (main, side int, showSide bool) {
	if termWidth < SidePanelThreshold {
		return termWidth, 0, false
	}
	usable := termWidth - 1 // border
	side = usable / 3
	if side < SidePanelMinWidth {
		side = SidePanelMinWidth
	}
	return usable - side, side, true
}

// JoinColumns joins pre-rendered column strings side by side with purple border separators.
// Each column is normalized to the given height and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	borderStr := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("│")

	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, 0, len(colLines))
		for i, lines := range colLines {
			parts = append(parts, PadToWidth(lines[row], widths[i]))
		}
		rows = append(rows, strings.Join(parts, borderStr))
	}

	return strings.Join(rows, "\n")
}
