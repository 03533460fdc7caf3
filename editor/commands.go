package editor

import (
	"github.com/user/mediacms-timeline/history"
	"github.com/user/mediacms-timeline/segment"
)

// Command is an inbound edit request. The concrete types below form a closed set.
type Command interface {
	command()
}

// UpdateTrim moves one trim handle. Preview updates change the live bound
// only; a non-preview update also records an undo point.
type UpdateTrim struct {
	Time    float64
	IsStart bool
	Preview bool
	Action  history.Action
}

// UpdateSegments replaces the whole segment list. The list is renumbered
// before it is stored. Action defaults to history.UpdateSegments.
type UpdateSegments struct {
	Segments []segment.Segment
	Preview  bool
	Action   history.Action
}

// SplitSegment cuts the identified segment at Time.
type SplitSegment struct {
	Time      float64
	SegmentID int64
}

// DeleteSegment removes the identified segment.
type DeleteSegment struct {
	SegmentID int64
}

// UpdateSegmentIndex jumps segment playback to Index. Ignored unless
// segment playback is running.
type UpdateSegmentIndex struct {
	Index int
}

func (UpdateTrim) command()         {}
func (UpdateSegments) command()     {}
func (SplitSegment) command()       {}
func (DeleteSegment) command()      {}
func (UpdateSegmentIndex) command() {}

// Patch holds the fields UpdateSegment may change. Nil fields are left alone.
type Patch struct {
	Title     *string
	StartTime *float64
	EndTime   *float64
}
