package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/layout"
	"github.com/user/mediacms-timeline/tui/styles"
)

// SegmentListState holds the rows and cursor of the segment table.
type SegmentListState struct {
	Segments []segment.Segment
	// Selected is the cursor row.
	Selected int
	// Offset is the first visible row.
	Offset int
	// ActiveID is the segment under the playhead, 0 for none.
	ActiveID int64
}

// SetSegments replaces the rows in chronological order and keeps the cursor
// on the same segment id when it still exists.
func (s *SegmentListState) SetSegments(segs []segment.Segment) {
	prev, hadPrev := s.SelectedSegment()
	s.Segments = segment.SortByStart(segs)
	if hadPrev {
		for i, seg := range s.Segments {
			if seg.ID == prev.ID {
				s.Selected = i
				return
			}
		}
	}
	s.clamp()
}

// MoveUp moves the cursor one row up.
func (s *SegmentListState) MoveUp() {
	s.Selected--
	s.clamp()
}

// MoveDown moves the cursor one row down.
func (s *SegmentListState) MoveDown() {
	s.Selected++
	s.clamp()
}

// SelectedSegment returns the segment under the cursor.
func (s SegmentListState) SelectedSegment() (segment.Segment, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Segments) {
		return segment.Segment{}, false
	}
	return s.Segments[s.Selected], true
}

func (s *SegmentListState) clamp() {
	if s.Selected >= len(s.Segments) {
		s.Selected = len(s.Segments) - 1
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
}

// scroll adjusts Offset so the cursor is inside a window of rows lines.
func (s *SegmentListState) scroll(rows int) {
	if rows < 1 {
		rows = 1
	}
	if s.Selected < s.Offset {
		s.Offset = s.Selected
	} else if s.Selected >= s.Offset+rows {
		s.Offset = s.Selected - rows + 1
	}
	maxOffset := len(s.Segments) - rows
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.Offset > maxOffset {
		s.Offset = maxOffset
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
}

// SegmentList renders the segment table. The state is taken by pointer so
// the scroll offset persists between frames.
func SegmentList(state *SegmentListState, width, height int) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Lavender).
		Bold(true).
		Underline(true)

	const (
		numWidth  = 3
		timeWidth = 8
	)
	titleWidth := width - numWidth - 3*timeWidth - 7
	if titleWidth < 8 {
		titleWidth = 8
	}

	row := func(num, title, start, end, length string) string {
		return fmt.Sprintf(" %*s %-*s %*s %*s %*s",
			numWidth, num,
			titleWidth, layout.PadToWidth(title, titleWidth),
			timeWidth, start,
			timeWidth, end,
			timeWidth, length)
	}

	lines := []string{headerStyle.Render(row("#", "Title", "Start", "End", "Length"))}
	if len(state.Segments) == 0 {
		lines = append(lines, styles.DimText.Render(" No segments. Press s to split at the playhead."))
		return strings.Join(lines, "\n")
	}

	rows := height - 1
	state.scroll(rows)

	activeStyle := lipgloss.NewStyle().Foreground(styles.Green)
	end := state.Offset + rows
	if end > len(state.Segments) {
		end = len(state.Segments)
	}
	for i := state.Offset; i < end; i++ {
		seg := state.Segments[i]
		title := seg.Title
		if seg.Thumbnail != "" {
			title = "▣ " + title
		}
		line := row(
			fmt.Sprintf("%d", i+1),
			title,
			timeutil.FormatTime(seg.StartTime),
			timeutil.FormatTime(seg.EndTime),
			timeutil.FormatTime(seg.Duration()),
		)
		switch {
		case i == state.Selected:
			line = styles.Highlight.Render(layout.PadToWidth(line, width))
		case seg.ID == state.ActiveID:
			line = activeStyle.Render(line)
		default:
			line = styles.PrimaryText.Render(line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
