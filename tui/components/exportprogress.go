package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/user/mediacms-timeline/db"
	"github.com/user/mediacms-timeline/tui/styles"
)

// ExportProgressState summarises the export jobs queued from this session.
type ExportProgressState struct {
	Active      bool
	Total       int
	Completed   int
	Errors      int
	Bytes       int64
	CurrentFile string
}

// ExportProgressFromJobs counts job statuses. The job being cut, if any,
// becomes CurrentFile.
func ExportProgressFromJobs(jobs []db.ExportJob) ExportProgressState {
	st := ExportProgressState{Active: len(jobs) > 0, Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case db.StatusComplete:
			st.Completed++
			st.Bytes += j.Filesize
		case db.StatusError:
			st.Errors++
		case db.StatusProcessing:
			st.CurrentFile = j.Filename
		}
	}
	return st
}

// Done reports whether no job is waiting or running.
func (s ExportProgressState) Done() bool {
	return s.Completed+s.Errors >= s.Total
}

// ExportProgress renders a bordered info box showing export progress.
func ExportProgress(state ExportProgressState, width int) string {
	if !state.Active || width < 10 {
		return ""
	}

	greenStyle := lipgloss.NewStyle().Foreground(styles.Green)
	amberStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	textStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)

	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	finished := state.Completed + state.Errors
	var pct int
	if state.Total > 0 {
		pct = finished * 100 / state.Total
	}
	barWidth := innerW - 6
	if barWidth < 4 {
		barWidth = 4
	}
	filled := 0
	if state.Total > 0 {
		filled = barWidth * finished / state.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := greenStyle.Render(strings.Repeat("█", filled)) + amberStyle.Render(strings.Repeat("░", barWidth-filled))
	lines := []string{" " + bar + textStyle.Render(fmt.Sprintf(" %3d%%", pct))}

	counter := fmt.Sprintf(" %d/%d segments, %s", state.Completed, state.Total, humanize.Bytes(uint64(state.Bytes)))
	if state.Errors > 0 {
		counter += "  " + styles.Warning.Render(fmt.Sprintf("%d failed", state.Errors))
	}
	lines = append(lines, textStyle.Render(counter))

	switch {
	case state.Done():
		lines = append(lines, " "+greenStyle.Render("Export finished"))
	case state.CurrentFile != "":
		file := state.CurrentFile
		if lipgloss.Width(file) > innerW-2 {
			file = ansi.Truncate(file, innerW-2, "...")
		}
		lines = append(lines, " "+textStyle.Render(file))
	}

	return RenderInfoBox("Export", lines, width)
}
