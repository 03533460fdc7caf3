package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/styles"
)

// TimelineState is everything the timeline bar draws.
type TimelineState struct {
	CurrentTime float64
	Duration    float64
	TrimStart   float64
	TrimEnd     float64
	SplitPoints []float64
	Segments    []segment.Segment
	// SelectedID is the segment highlighted in the list, 0 for none.
	SelectedID int64
}

// TimelineHeight is the number of lines Timeline renders.
const TimelineHeight = 5

// Timeline renders the segment band with split points, the trim handles and
// the playhead in a bordered box. Output is TimelineHeight lines.
func Timeline(state TimelineState, width int) string {
	if width < 20 {
		return ""
	}

	timeDisplay := fmt.Sprintf(" %s / %s", timeutil.FormatTime(state.CurrentTime), timeutil.FormatTime(state.Duration))
	barWidth := width - 4 - lipgloss.Width(timeDisplay)
	if barWidth < 10 {
		barWidth = 10
	}

	col := func(t float64) int {
		if state.Duration <= 0 {
			return -1
		}
		c := int(math.Round(float64(barWidth-1) * t / state.Duration))
		if c < 0 {
			c = 0
		}
		if c >= barWidth {
			c = barWidth - 1
		}
		return c
	}

	splitCols := make(map[int]bool, len(state.SplitPoints))
	for _, p := range state.SplitPoints {
		splitCols[col(p)] = true
	}

	// colour index per segment id so neighbours alternate
	sorted := segment.SortByStart(state.Segments)
	band := make(map[int64]int, len(sorted))
	for i, s := range sorted {
		band[s.ID] = i % len(styles.SegmentBand)
	}

	splitStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(styles.Pink)

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		if splitCols[i] {
			bar.WriteString(splitStyle.Render("┃"))
			continue
		}
		t := 0.0
		if state.Duration > 0 {
			t = (float64(i) + 0.5) / float64(barWidth) * state.Duration
		}
		if t < state.TrimStart || t > state.TrimEnd {
			bar.WriteString(styles.DimText.Render("·"))
			continue
		}
		s, ok := segment.At(sorted, t)
		switch {
		case !ok:
			bar.WriteString(lipgloss.NewStyle().Foreground(styles.Purple).Render("─"))
		case s.ID == state.SelectedID:
			bar.WriteString(selectedStyle.Render("█"))
		default:
			bar.WriteString(lipgloss.NewStyle().Foreground(styles.SegmentBand[band[s.ID]]).Render("▆"))
		}
	}

	markers := make([]string, barWidth)
	for i := range markers {
		markers[i] = " "
	}
	trimStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	if c := col(state.TrimStart); c >= 0 {
		markers[c] = trimStyle.Render("[")
	}
	if c := col(state.TrimEnd); c >= 0 {
		markers[c] = trimStyle.Render("]")
	}
	if c := col(state.CurrentTime); c >= 0 {
		markers[c] = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).Render("▲")
	}

	timeStyle := lipgloss.NewStyle().Foreground(styles.LightLavender).Bold(true)
	trimLine := fmt.Sprintf(" trim %s – %s", timeutil.FormatTime(state.TrimStart), timeutil.FormatTime(state.TrimEnd))

	lines := []string{
		" " + bar.String() + " " + timeStyle.Render(timeDisplay),
		" " + strings.Join(markers, ""),
		styles.SecondaryText.Render(trimLine),
	}
	return RenderInfoBox("Timeline", lines, width)
}
