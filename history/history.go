// Package history implements the snapshot-based undo/redo stack of the
// timeline editor.
package history

import (
	"math"

	"github.com/user/mediacms-timeline/segment"
)

// Tolerance is the largest segment boundary drift, in seconds, that is
// still considered "unchanged" by the significance test.
const Tolerance = 0.001

// EditorState is one undo point: the full editable state plus the action
// that produced it.
type EditorState struct {
	TrimStart   float64
	TrimEnd     float64
	SplitPoints []float64
	Segments    []segment.Segment
	Action      Action
}

// Clone returns a deep copy so history entries never alias live state.
func (s EditorState) Clone() EditorState {
	out := s
	if s.SplitPoints != nil {
		out.SplitPoints = make([]float64, len(s.SplitPoints))
		copy(out.SplitPoints, s.SplitPoints)
	}
	out.Segments = segment.Clone(s.Segments)
	return out
}

// Significant reports whether b differs from a enough to deserve its own
// undo point. Titles are not compared.
func Significant(a, b EditorState) bool {
	if len(a.Segments) != len(b.Segments) {
		return true
	}
	if a.TrimStart != b.TrimStart || a.TrimEnd != b.TrimEnd {
		return true
	}
	if len(a.SplitPoints) != len(b.SplitPoints) {
		return true
	}
	for i := range a.Segments {
		if math.Abs(a.Segments[i].StartTime-b.Segments[i].StartTime) > Tolerance ||
			math.Abs(a.Segments[i].EndTime-b.Segments[i].EndTime) > Tolerance {
			return true
		}
	}
	return false
}

// History is a linear list of snapshots with a cursor on the current one.
// It is not safe for concurrent use; the editor serializes access.
type History struct {
	entries []EditorState
	pos     int
}

// New seeds a history with a single entry.
func New(seed EditorState) *History {
	return &History{entries: []EditorState{seed.Clone()}}
}

// Push appends state after the cursor, discarding any redo branch.
// An untagged state that is not significant against the current entry is
// dropped. Tagged states are always recorded. It reports whether the state
// was appended.
func (h *History) Push(state EditorState) bool {
	if len(h.entries) > 0 && state.Action == None && !Significant(h.entries[h.pos], state) {
		return false
	}
	if len(h.entries) > 0 && h.pos < len(h.entries)-1 {
		h.entries = h.entries[:h.pos+1]
	}
	h.entries = append(h.entries, state.Clone())
	h.pos = len(h.entries) - 1
	return true
}

// Undo moves the cursor back one entry and returns a copy of it.
func (h *History) Undo() (EditorState, bool) {
	if !h.CanUndo() {
		return EditorState{}, false
	}
	h.pos--
	return h.entries[h.pos].Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of it.
func (h *History) Redo() (EditorState, bool) {
	if !h.CanRedo() {
		return EditorState{}, false
	}
	h.pos++
	return h.entries[h.pos].Clone(), true
}

// CanUndo reports whether an earlier entry exists.
func (h *History) CanUndo() bool {
	return h.pos > 0
}

// CanRedo reports whether a later entry exists.
func (h *History) CanRedo() bool {
	return h.pos < len(h.entries)-1
}

// Current returns a copy of the entry under the cursor.
func (h *History) Current() EditorState {
	if len(h.entries) == 0 {
		return EditorState{}
	}
	return h.entries[h.pos].Clone()
}

// Position returns the cursor.
func (h *History) Position() int {
	return h.pos
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns deep copies of every entry, oldest first.
func (h *History) Entries() []EditorState {
	out := make([]EditorState, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}
