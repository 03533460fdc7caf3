package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/history"
	"github.com/user/mediacms-timeline/tui/layout"
	"github.com/user/mediacms-timeline/tui/styles"
)

// HistoryPanel lists the undo history, newest last, with the cursor on
// position. Entries past the cursor are the redo branch and render dimmed.
// The window follows the cursor when the history is taller than height.
func HistoryPanel(entries []history.EditorState, position, width, height int) string {
	title := styles.Header.Render(fmt.Sprintf(" History %d/%d", position+1, len(entries)))
	lines := []string{title}

	rows := height - 1
	if rows < 1 || len(entries) == 0 {
		return strings.Join(lines, "\n")
	}

	start := 0
	if len(entries) > rows {
		start = position - rows/2
		if start < 0 {
			start = 0
		}
		if start > len(entries)-rows {
			start = len(entries) - rows
		}
	}
	end := start + rows
	if end > len(entries) {
		end = len(entries)
	}

	checkpoint := lipgloss.NewStyle().Foreground(styles.Green)
	for i := start; i < end; i++ {
		lines = append(lines, historyLine(entries[i], i, position, width, checkpoint))
	}
	return strings.Join(lines, "\n")
}

func historyLine(st history.EditorState, i, position, width int, checkpoint lipgloss.Style) string {
	label := st.Action.String()
	if label == "" {
		label = "edit"
	}
	text := fmt.Sprintf("%s %-20s %d seg", cursor(i == position), label, len(st.Segments))
	text = layout.PadToWidth(text, width)

	switch {
	case i == position:
		return styles.Highlight.Render(text)
	case i > position:
		return styles.DimText.Render(text)
	case st.Action.IsCheckpoint():
		return checkpoint.Render(text)
	default:
		return styles.SecondaryText.Render(text)
	}
}

func cursor(on bool) string {
	if on {
		return "›"
	}
	return " "
}
