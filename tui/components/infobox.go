// Package components provides the rendering pieces of the timeline editor TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/tui/styles"
)

// RenderInfoBox renders contentLines inside a rounded box whose top border
// carries title as a tab: ╭─ Title ───╮. Lines are padded to the inner width
// but never wrapped.
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	innerWidth := width - 2

	border := lipgloss.NewStyle().Foreground(styles.Purple)
	headerText := styles.Header.Render(" " + title + " ")
	fillWidth := innerWidth - 1 - lipgloss.Width(headerText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, border.Render("╭─")+headerText+border.Render(strings.Repeat("─", fillWidth)+"╮"))
	for _, line := range contentLines {
		pad := innerWidth - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, border.Render("│")+line+strings.Repeat(" ", pad)+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))

	return strings.Join(lines, "\n")
}
