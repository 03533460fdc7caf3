package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/tui/styles"
)

// HelpGroup is one titled block of the help overlay.
type HelpGroup struct {
	Title    string
	Bindings []key.Binding
}

// HelpOverlay renders every enabled binding grouped by function, centred in
// a width x height area.
func HelpOverlay(groups []HelpGroup, width, height int) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Padding(0, 1)
	groupStyle := lipgloss.NewStyle().
		Foreground(styles.Pink).
		Bold(true).
		MarginTop(1)
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Width(12)
	descStyle := lipgloss.NewStyle().
		Foreground(styles.LightLavender)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Timeline editor keys"))
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(groupStyle.Render(g.Title))
		for _, kb := range g.Bindings {
			if !kb.Enabled() {
				continue
			}
			h := kb.Help()
			b.WriteString("\n  ")
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(descStyle.Render(h.Desc))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styles.DimText.Render("  Press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(0, 2).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
