package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mediacms-timeline/segment"
)

func seed() EditorState {
	return EditorState{
		TrimStart: 0,
		TrimEnd:   100,
		Segments:  []segment.Segment{{ID: 1, Title: "Chapter 1", StartTime: 0, EndTime: 100}},
		Action:    Init,
	}
}

func withTrim(start, end float64) EditorState {
	s := seed()
	s.TrimStart, s.TrimEnd = start, end
	s.Action = None
	return s
}

func TestActionTags(t *testing.T) {
	assert.Equal(t, "create_split_points", CreateSplitPoints.String())
	assert.Equal(t, "save_copy", SaveCopy.String())

	a, err := ParseAction("update_segments")
	require.NoError(t, err)
	assert.Equal(t, UpdateSegments, a)
	_, err = ParseAction("explode")
	assert.Error(t, err)

	for _, a := range []Action{Save, SaveCopy, SaveSegments} {
		assert.True(t, a.IsCheckpoint(), a.String())
	}
	for _, a := range []Action{None, Init, TrimStart, UpdateSegments, Reset} {
		assert.False(t, a.IsCheckpoint(), a.String())
	}
}

func TestSignificant(t *testing.T) {
	base := seed()

	same := base.Clone()
	same.Segments[0].EndTime += 0.0005
	same.Segments[0].Title = "Renamed"
	assert.False(t, Significant(base, same))

	moved := base.Clone()
	moved.Segments[0].EndTime -= 0.01
	assert.True(t, Significant(base, moved))

	assert.True(t, Significant(base, withTrim(1, 100)))

	split := base.Clone()
	split.SplitPoints = []float64{40}
	assert.True(t, Significant(base, split))

	fewer := base.Clone()
	fewer.Segments = nil
	assert.True(t, Significant(base, fewer))
}

func TestPushGating(t *testing.T) {
	h := New(seed())

	untagged := seed()
	untagged.Action = None
	assert.False(t, h.Push(untagged))
	assert.Equal(t, 1, h.Len())

	tagged := seed()
	tagged.Action = UpdateSegments
	assert.True(t, h.Push(tagged))
	assert.True(t, h.Push(tagged), "tagged duplicates are recorded")
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Position())
}

func TestUndoRedoBounds(t *testing.T) {
	h := New(seed())
	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)

	h.Push(withTrim(5, 100))
	st, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0.0, st.TrimStart)
	assert.Equal(t, 0, h.Position())

	st, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, 5.0, st.TrimStart)
	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestTruncateOnBranch(t *testing.T) {
	h := New(seed())
	for i := 1; i <= 4; i++ {
		require.True(t, h.Push(withTrim(float64(i), 100)))
	}
	require.Equal(t, 5, h.Len())

	h.Undo()
	h.Undo()
	before := h.Position()
	require.Equal(t, 2, before)

	require.True(t, h.Push(withTrim(50, 100)))
	assert.Equal(t, before+2, h.Len())
	assert.Equal(t, h.Len()-1, h.Position())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 50.0, h.Current().TrimStart)
}

func TestRoundTrip(t *testing.T) {
	h := New(seed())
	var states []EditorState
	for i := 1; i <= 6; i++ {
		s := withTrim(float64(i), 100-float64(i))
		s.SplitPoints = make([]float64, i%3)
		s.Segments = append(s.Segments, segment.Segment{ID: int64(i + 1), StartTime: 100, EndTime: 100 + float64(i)})
		require.True(t, h.Push(s))
		states = append(states, s)
	}
	last := h.Current()

	for range states {
		_, ok := h.Undo()
		require.True(t, ok)
	}
	assert.Equal(t, seed(), h.Current())

	var got EditorState
	for range states {
		var ok bool
		got, ok = h.Redo()
		require.True(t, ok)
	}
	assert.Equal(t, last, got)
}

func TestNoAliasing(t *testing.T) {
	live := seed()
	h := New(live)
	live.Segments[0].Title = "mutated"

	assert.Equal(t, "Chapter 1", h.Current().Segments[0].Title)

	cur := h.Current()
	cur.Segments[0].StartTime = 99
	assert.Equal(t, 0.0, h.Entries()[0].Segments[0].StartTime)
}
