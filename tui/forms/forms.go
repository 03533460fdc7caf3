// Package forms provides the huh dialogs of the timeline editor.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/user/mediacms-timeline/pkg/timeutil"
	"github.com/user/mediacms-timeline/segment"
)

// NewConfirmQuitForm asks whether to leave with unsaved edits. quit is bound
// to the confirm field.
func NewConfirmQuitForm(quit *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Quit without saving?").
				Description("The timeline has edits that were not saved.").
				Affirmative("Quit").
				Negative("Keep editing").
				Value(quit),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// SegmentFormResult holds the edited fields of one segment as typed text.
type SegmentFormResult struct {
	Title string
	Start string
	End   string
}

// NewSegmentFormResult pre-fills the form fields from seg.
func NewSegmentFormResult(seg segment.Segment) *SegmentFormResult {
	return &SegmentFormResult{
		Title: seg.Title,
		Start: timeutil.FormatTimestamp(seg.StartTime),
		End:   timeutil.FormatTimestamp(seg.EndTime),
	}
}

// Times parses Start and End.
func (r *SegmentFormResult) Times() (start, end float64, err error) {
	if start, err = timeutil.ParseTimestamp(r.Start); err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	if end, err = timeutil.ParseTimestamp(r.End); err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

// NewSegmentForm edits the title and bounds of segment n (1-based) of a
// media of the given duration. Bounds are validated as typed; overlap with
// neighbours is checked by the editor on submit.
func NewSegmentForm(n int, duration float64, result *SegmentFormResult) *huh.Form {
	validTime := func(s string) error {
		t, err := timeutil.ParseTimestamp(s)
		if err != nil {
			return err
		}
		if t < 0 || t > duration {
			return fmt.Errorf("must be within 0 and %s", timeutil.FormatTime(duration))
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Edit segment %d", n)),

			huh.NewInput().
				Title("Title").
				Description("Leave empty for an automatic title").
				Value(&result.Title),

			huh.NewInput().
				Title("Start").
				Description("HH:MM:SS.mmm").
				Value(&result.Start).
				Validate(validTime),

			huh.NewInput().
				Title("End").
				Description("HH:MM:SS.mmm").
				Value(&result.End).
				Validate(func(s string) error {
					if err := validTime(s); err != nil {
						return err
					}
					start, end, err := result.Times()
					if err == nil && end <= start {
						return fmt.Errorf("end must be after start")
					}
					return nil
				}),
		),
	).WithTheme(Theme())
}
