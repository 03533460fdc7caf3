package history

import "fmt"

// Action identifies the edit that produced a snapshot.
type Action int

const (
	// None marks an untagged push; it is dropped when nothing significant changed.
	None Action = iota
	Init
	TrimStart
	TrimEnd
	CreateSplitPoints
	SplitSegment
	DeleteSegment
	Reset
	UpdateSegments
	UpdateSegment
	Save
	SaveCopy
	SaveSegments
)

var actionTags = map[Action]string{
	None:              "",
	Init:              "init",
	TrimStart:         "adjust_trim_start",
	TrimEnd:           "adjust_trim_end",
	CreateSplitPoints: "create_split_points",
	SplitSegment:      "split_segment",
	DeleteSegment:     "delete_segment",
	Reset:             "reset",
	UpdateSegments:    "update_segments",
	UpdateSegment:     "update_segment",
	Save:              "save",
	SaveCopy:          "save_copy",
	SaveSegments:      "save_segments",
}

// String returns the wire tag for the action.
func (a Action) String() string {
	if tag, ok := actionTags[a]; ok {
		return tag
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps a wire tag back to its Action.
func ParseAction(tag string) (Action, error) {
	for a, t := range actionTags {
		if t == tag {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", tag)
}

// IsCheckpoint reports whether the action records a save, after which the
// editor has no unsaved changes.
func (a Action) IsCheckpoint() bool {
	return a == Save || a == SaveCopy || a == SaveSegments
}
