package layout

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/tui/styles"
)

// Container wraps content into an exact Width x Height bounding box.
// When content is truncated vertically, the last visible line shows a scroll indicator.
type Container struct {
	Width  int
	Height int
}

// Render returns the content constrained to exactly Width columns and Height lines.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	if len(lines) > c.Height {
		hidden := len(lines) - c.Height + 1
		lines = lines[:c.Height]
		indicator := lipgloss.NewStyle().Foreground(styles.Purple).Render(moreLabel(hidden))
		lines[c.Height-1] = indicator
	}

	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}

	return strings.Join(lines, "\n")
}

func moreLabel(n int) string {
	if n == 1 {
		return "↓ 1 more line"
	}
	return "↓ " + strconv.Itoa(n) + " more lines"
}
