package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/layout"
	"github.com/user/mediacms-timeline/tui/styles"
)

// StatusBarState holds the playback and document state shown in the status bar.
type StatusBarState struct {
	Playing         bool
	Muted           bool
	PlayingSegments bool
	CurrentTime     float64
	Duration        float64
	Variant         segment.Variant
	MediaID         string
	Unsaved         bool
	// Message is a transient result line; MessageIsError colours it red.
	Message        string
	MessageIsError bool
}

// StatusBar renders the one-line status bar.
func StatusBar(state StatusBarState, width int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}

	left := []string{" " + playIcon + " " + timeutil.FormatTime(state.CurrentTime) + " / " + timeutil.FormatTime(state.Duration)}
	if state.PlayingSegments {
		left = append(left, lipgloss.NewStyle().Foreground(styles.Green).Render("segments"))
	}
	if state.Muted {
		left = append(left, "🔇")
	}
	if state.Message != "" {
		msgStyle := styles.Success
		if state.MessageIsError {
			msgStyle = styles.Warning
		}
		left = append(left, msgStyle.Render(state.Message))
	}

	right := state.Variant.String()
	if state.MediaID != "" {
		right += " " + state.MediaID
	}
	if state.Unsaved {
		right = styles.Warning.Render("● ") + right
	}

	content := layout.Spread(strings.Join(left, "  "), right+" ", width)

	return lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Width(width).
		Render(content)
}
