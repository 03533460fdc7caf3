package editor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mediacms-timeline/history"
	"github.com/user/mediacms-timeline/segment"
)

type stubPlayer struct {
	mu       sync.Mutex
	time     float64
	duration float64
	paused   bool
	muted    bool
	polls    int
	texts    []string
}

func (p *stubPlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	return p.time, nil
}

func (p *stubPlayer) ShowText(text string, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
	return nil
}

func (p *stubPlayer) pollCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func (p *stubPlayer) shown() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func (p *stubPlayer) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.time = t
	return nil
}

func (p *stubPlayer) Duration() (float64, error) { return p.duration, nil }

func (p *stubPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

func (p *stubPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *stubPlayer) Paused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused, nil
}

func (p *stubPlayer) Muted() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted, nil
}

func (p *stubPlayer) SetMuted(m bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = m
	return nil
}

type recordingSaver struct {
	err    error
	calls  [][]segment.Segment
	during func()
}

func (s *recordingSaver) Save(ctx context.Context, mediaID string, segs []segment.Segment, duration float64) error {
	s.calls = append(s.calls, segs)
	if s.during != nil {
		s.during()
	}
	return s.err
}

func newEditor(t *testing.T, opts Options) (*Editor, *stubPlayer) {
	t.Helper()
	p := &stubPlayer{duration: 100, paused: true}
	if opts.Player == nil {
		opts.Player = p
	}
	opts.Logger = zerolog.Nop()
	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, p
}

func spans(segs []segment.Segment) [][2]float64 {
	out := make([][2]float64, len(segs))
	for i, s := range segs {
		out[i] = [2]float64{s.StartTime, s.EndTime}
	}
	return out
}

func titles(segs []segment.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Title
	}
	return out
}

func TestNewDuration(t *testing.T) {
	_, err := New(Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, ErrNoDuration)

	e, _ := newEditor(t, Options{})
	v := e.State()
	assert.Equal(t, 100.0, v.Duration)
	assert.Equal(t, 0.0, v.TrimStart)
	assert.Equal(t, 100.0, v.TrimEnd)
	assert.Equal(t, [][2]float64{{0, 100}}, spans(v.ClipSegments))
	assert.Equal(t, []string{"Chapter 1"}, titles(v.ClipSegments))
	assert.Len(t, v.History, 1)
	assert.False(t, v.HasUnsavedChanges)
}

func TestNewInitialSegments(t *testing.T) {
	e, _ := newEditor(t, Options{Initial: []segment.Segment{
		{Title: "Outro", StartTime: 80, EndTime: 100},
		{StartTime: 0, EndTime: 30},
		{StartTime: 50, EndTime: 40},
	}})
	segs := e.Segments()
	assert.Equal(t, [][2]float64{{0, 30}, {80, 100}}, spans(segs))
	assert.Equal(t, []string{"Chapter 1", "Outro"}, titles(segs))
	assert.NotZero(t, segs[0].ID)
	assert.NotEqual(t, segs[0].ID, segs[1].ID)
}

// Split, delete and undo run against one session.
func TestSplitDeleteUndo(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})
	initial := e.State()
	id := initial.ClipSegments[0].ID

	require.True(t, e.Dispatch(ctx, SplitSegment{SegmentID: id, Time: 40}))
	v := e.State()
	assert.Equal(t, [][2]float64{{0, 40}, {40, 100}}, spans(v.ClipSegments))
	assert.Equal(t, []string{"Chapter 1", "Chapter 2"}, titles(v.ClipSegments))
	assert.Len(t, v.History, 2)
	assert.True(t, v.HasUnsavedChanges)

	require.True(t, e.Dispatch(ctx, DeleteSegment{SegmentID: v.ClipSegments[1].ID}))
	v = e.State()
	assert.Equal(t, [][2]float64{{0, 40}}, spans(v.ClipSegments))
	assert.Equal(t, []string{"Chapter 1"}, titles(v.ClipSegments))
	assert.Len(t, v.History, 3)

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	v = e.State()
	assert.Equal(t, 0, v.HistoryPosition)
	assert.Equal(t, initial.ClipSegments, v.ClipSegments)
	assert.Equal(t, initial.TrimStart, v.TrimStart)
	assert.Equal(t, initial.TrimEnd, v.TrimEnd)
	assert.False(t, e.Undo())
}

func TestTrimPreviewThenCommit(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})

	assert.True(t, e.Dispatch(ctx, UpdateTrim{Time: 10, IsStart: true, Preview: true}))
	assert.True(t, e.Dispatch(ctx, UpdateTrim{Time: 90, Preview: true}))
	assert.Len(t, e.State().History, 1)

	assert.True(t, e.Dispatch(ctx, UpdateTrim{Time: 90}))
	v := e.State()
	require.Len(t, v.History, 2)
	assert.Equal(t, 10.0, v.History[1].TrimStart)
	assert.Equal(t, 90.0, v.History[1].TrimEnd)
	assert.Equal(t, 10.0, v.TrimStart)
	assert.Equal(t, 90.0, v.TrimEnd)
}

func TestTrimRejectsInvertedRange(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.True(t, e.ChangeTrimEnd(50))
	assert.False(t, e.ChangeTrimStart(60))
	assert.False(t, e.ChangeTrimEnd(-1))
	assert.False(t, e.ChangeTrimEnd(101))
	v := e.State()
	assert.Equal(t, 0.0, v.TrimStart)
	assert.Equal(t, 50.0, v.TrimEnd)
	assert.Equal(t, history.TrimEnd, v.History[v.HistoryPosition].Action)
}

func TestIdenticalUntaggedCommitIsDropped(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})
	assert.True(t, e.Dispatch(ctx, UpdateTrim{Time: 100}))
	assert.True(t, e.Dispatch(ctx, UpdateTrim{Time: 0, IsStart: true}))
	assert.Len(t, e.State().History, 1)

	// tagged pushes are kept even when nothing moved
	assert.True(t, e.ChangeTrimStart(0))
	assert.Len(t, e.State().History, 2)
}

func TestEditAfterUndoTruncates(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.True(t, e.ChangeTrimStart(5))
	require.True(t, e.ChangeTrimStart(10))
	require.True(t, e.ChangeTrimStart(15))
	require.True(t, e.Undo())
	require.True(t, e.Undo())
	before := e.State().HistoryPosition

	require.True(t, e.ChangeTrimEnd(70))
	v := e.State()
	assert.Len(t, v.History, before+2)
	assert.Equal(t, before+1, v.HistoryPosition)
	assert.False(t, e.Redo())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})
	first := e.Segments()[0].ID

	require.True(t, e.ChangeTrimStart(3))
	require.True(t, e.Dispatch(ctx, SplitSegment{SegmentID: first, Time: 25}))
	require.True(t, e.ChangeTrimEnd(80))
	segs := e.Segments()
	require.True(t, e.UpdateSegment(segs[1].ID, Patch{Title: strPtr("Kickoff")}))
	want := e.State()

	n := want.HistoryPosition
	for i := 0; i < n; i++ {
		require.True(t, e.Undo())
	}
	for i := 0; i < n; i++ {
		require.True(t, e.Redo())
	}
	got := e.State()
	assert.Equal(t, want.TrimStart, got.TrimStart)
	assert.Equal(t, want.TrimEnd, got.TrimEnd)
	assert.Equal(t, want.SplitPoints, got.SplitPoints)
	assert.Equal(t, want.ClipSegments, got.ClipSegments)
}

func TestUndoRedoFireAutosave(t *testing.T) {
	calls := 0
	e, _ := newEditor(t, Options{OnAutosave: func() { calls++ }})
	require.True(t, e.ChangeTrimStart(5))
	require.True(t, e.Undo())
	require.True(t, e.Redo())
	assert.False(t, e.Redo())
	assert.Equal(t, 2, calls)
}

func TestSplitAtPlayhead(t *testing.T) {
	e, p := newEditor(t, Options{})

	p.time = 0
	assert.False(t, e.Split())

	p.time = 30
	require.True(t, e.Split())
	assert.False(t, e.Split())

	p.time = 60
	require.True(t, e.Split())
	v := e.State()
	assert.Equal(t, []float64{30, 60}, v.SplitPoints)
	assert.Equal(t, [][2]float64{{0, 30}, {30, 60}, {60, 100}}, spans(v.ClipSegments))
	assert.Equal(t, history.CreateSplitPoints, v.History[v.HistoryPosition].Action)
}

func TestUpdateSegment(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})
	require.True(t, e.Dispatch(ctx, SplitSegment{SegmentID: e.Segments()[0].ID, Time: 50}))
	segs := e.Segments()

	assert.True(t, e.UpdateSegment(segs[1].ID, Patch{Title: strPtr("Second half")}))
	// would overlap the first segment
	assert.False(t, e.UpdateSegment(segs[1].ID, Patch{StartTime: f64Ptr(40)}))
	assert.False(t, e.UpdateSegment(999, Patch{Title: strPtr("x")}))
	assert.False(t, e.UpdateSegment(segs[0].ID, Patch{EndTime: f64Ptr(math.NaN())}))
	assert.False(t, e.UpdateSegment(segs[0].ID, Patch{StartTime: f64Ptr(math.NaN())}))
	assert.False(t, e.UpdateSegment(segs[1].ID, Patch{EndTime: f64Ptr(math.Inf(1))}))
	assert.False(t, e.UpdateSegment(segs[0].ID, Patch{StartTime: f64Ptr(math.Inf(-1))}))
	assert.Len(t, e.State().History, 3)

	assert.True(t, e.UpdateSegment(segs[0].ID, Patch{EndTime: f64Ptr(45)}))
	got := e.Segments()
	assert.Equal(t, [][2]float64{{0, 45}, {50, 100}}, spans(got))
	assert.Equal(t, []string{"Chapter 1", "Second half"}, titles(got))
}

func TestUpdateSegmentsCommand(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})

	assert.False(t, e.Dispatch(ctx, UpdateSegments{}))
	assert.False(t, e.Dispatch(ctx, UpdateSegments{Segments: []segment.Segment{
		{StartTime: 0, EndTime: 60}, {StartTime: 50, EndTime: 100},
	}}))
	assert.Len(t, e.State().History, 1)

	assert.True(t, e.Dispatch(ctx, UpdateSegments{Segments: []segment.Segment{
		{StartTime: 50, EndTime: 100}, {StartTime: 0, EndTime: 50},
	}, Preview: true}))
	assert.Len(t, e.State().History, 1)

	assert.True(t, e.Dispatch(ctx, UpdateSegments{Segments: e.Segments()}))
	v := e.State()
	require.Len(t, v.History, 2)
	assert.Equal(t, history.UpdateSegments, v.History[1].Action)
	assert.Equal(t, []string{"Chapter 1", "Chapter 2"}, titles(v.ClipSegments))
}

func TestMalformedCommandsIgnored(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{})
	id := e.Segments()[0].ID

	assert.False(t, e.Dispatch(ctx, nil))
	assert.False(t, e.Dispatch(ctx, SplitSegment{SegmentID: 42, Time: 10}))
	assert.False(t, e.Dispatch(ctx, SplitSegment{SegmentID: id, Time: 0}))
	assert.False(t, e.Dispatch(ctx, SplitSegment{SegmentID: id, Time: 100}))
	assert.False(t, e.Dispatch(ctx, DeleteSegment{SegmentID: 42}))
	assert.False(t, e.Dispatch(ctx, UpdateSegmentIndex{Index: 1}))
	assert.False(t, e.Dispatch(ctx, SplitSegment{SegmentID: id, Time: math.NaN()}))
	assert.False(t, e.Dispatch(ctx, UpdateSegments{Segments: []segment.Segment{{StartTime: math.NaN(), EndTime: 60}}}))
	assert.False(t, e.Dispatch(ctx, UpdateSegments{Segments: []segment.Segment{{StartTime: 0, EndTime: math.NaN()}}}))
	assert.False(t, e.Dispatch(ctx, UpdateSegments{Segments: []segment.Segment{{StartTime: 0, EndTime: math.Inf(1)}}}))
	assert.False(t, e.Dispatch(ctx, UpdateTrim{Time: math.NaN()}))
	assert.Equal(t, [][2]float64{{0, 100}}, spans(e.Segments()))
	assert.Len(t, e.State().History, 1)
}

func TestDeleteLastSegment(t *testing.T) {
	ctx := context.Background()

	chapters, _ := newEditor(t, Options{Variant: segment.Chapters})
	require.True(t, chapters.ChangeTrimStart(10))
	require.True(t, chapters.Dispatch(ctx, DeleteSegment{SegmentID: chapters.Segments()[0].ID}))
	v := chapters.State()
	assert.Empty(t, v.ClipSegments)
	assert.Equal(t, 0.0, v.TrimStart)

	trimmer, _ := newEditor(t, Options{Variant: segment.Trimmer})
	require.True(t, trimmer.Dispatch(ctx, DeleteSegment{SegmentID: trimmer.Segments()[0].ID}))
	segs := trimmer.Segments()
	assert.Equal(t, [][2]float64{{0, 100}}, spans(segs))
	assert.Equal(t, []string{"Segment 1"}, titles(segs))
}

func TestReset(t *testing.T) {
	e, p := newEditor(t, Options{})
	p.time = 40
	require.True(t, e.Split())
	require.True(t, e.ChangeTrimEnd(70))

	e.Reset()
	v := e.State()
	assert.Empty(t, v.SplitPoints)
	assert.Empty(t, v.ClipSegments)
	assert.Equal(t, 100.0, v.TrimEnd)
	assert.Equal(t, history.Reset, v.History[v.HistoryPosition].Action)

	require.True(t, e.Undo())
	assert.Equal(t, 70.0, e.State().TrimEnd)
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	_, err := func() (*Editor, error) {
		e, _ := newEditor(t, Options{})
		return e, e.Save(ctx, history.Save)
	}()
	assert.ErrorIs(t, err, ErrNoSaver)

	boom := errors.New("boom")
	saver := &recordingSaver{err: boom}
	e, _ := newEditor(t, Options{Saver: saver, MediaID: "abc"})
	require.True(t, e.ChangeTrimStart(4))
	require.True(t, e.State().HasUnsavedChanges)

	err = e.Save(ctx, history.Save)
	assert.ErrorIs(t, err, boom)
	assert.True(t, e.State().HasUnsavedChanges)
	assert.Len(t, e.State().History, 2)

	saver.err = nil
	require.NoError(t, e.Save(ctx, history.None))
	v := e.State()
	assert.False(t, v.HasUnsavedChanges)
	assert.Equal(t, history.Save, v.History[v.HistoryPosition].Action)
	assert.Len(t, saver.calls, 2)

	// stepping back past the checkpoint marks the session dirty again
	require.True(t, e.Undo())
	assert.True(t, e.State().HasUnsavedChanges)
	require.True(t, e.Redo())
	assert.False(t, e.State().HasUnsavedChanges)
}

func TestSaveKeepsEditMadeWhileSaving(t *testing.T) {
	ctx := context.Background()
	saver := &recordingSaver{}
	e, _ := newEditor(t, Options{Saver: saver, MediaID: "abc"})
	saver.during = func() {
		e.Dispatch(ctx, SplitSegment{SegmentID: e.Segments()[0].ID, Time: 50})
	}

	require.NoError(t, e.Save(ctx, history.Save))
	require.Len(t, saver.calls, 1)
	assert.Len(t, saver.calls[0], 1)

	v := e.State()
	assert.Len(t, v.ClipSegments, 2)
	assert.True(t, v.HasUnsavedChanges)
	assert.Equal(t, history.SplitSegment, v.History[v.HistoryPosition].Action)

	saver.during = nil
	require.NoError(t, e.Save(ctx, history.Save))
	assert.Len(t, saver.calls[1], 2)
	assert.False(t, e.State().HasUnsavedChanges)
}

func TestPlaySegmentsToggle(t *testing.T) {
	ctx := context.Background()
	e, p := newEditor(t, Options{})
	require.True(t, e.Dispatch(ctx, SplitSegment{SegmentID: e.Segments()[0].ID, Time: 30}))

	require.NoError(t, e.PlaySegments(ctx))
	v := e.State()
	assert.True(t, v.PlayingSegments)
	assert.True(t, v.IsPlaying)

	assert.True(t, e.Dispatch(ctx, UpdateSegmentIndex{Index: 1}))
	pos, _ := p.CurrentTime()
	assert.Equal(t, 30.0, pos)

	require.NoError(t, e.PlaySegments(ctx))
	v = e.State()
	assert.False(t, v.PlayingSegments)
	assert.False(t, v.IsPlaying)
}

func TestTickPausesAtTrimEnd(t *testing.T) {
	ctx := context.Background()
	e, p := newEditor(t, Options{})
	require.True(t, e.ChangeTrimEnd(50))
	require.NoError(t, e.PlayPause(ctx))
	assert.True(t, e.State().IsPlaying)

	require.NoError(t, e.Seek(ctx, 55))
	e.Tick(ctx)
	assert.False(t, e.State().IsPlaying)
	paused, _ := p.Paused()
	assert.True(t, paused)

	require.NoError(t, e.Seek(ctx, 500))
	pos, _ := p.CurrentTime()
	assert.Equal(t, 100.0, pos)
}

func TestWatchStopsOnClose(t *testing.T) {
	ctx := context.Background()
	e, p := newEditor(t, Options{})
	require.True(t, e.ChangeTrimEnd(50))
	require.NoError(t, e.PlayPause(ctx))
	require.NoError(t, e.Seek(ctx, 55))

	e.Watch(ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		paused, _ := p.Paused()
		return paused
	}, time.Second, 5*time.Millisecond)

	e.Close()
	polls := p.pollCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, polls, p.pollCount())

	stop := e.Watch(ctx, 5*time.Millisecond)
	stop()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, polls, p.pollCount())
}

func TestWatchStopIsIdempotent(t *testing.T) {
	e, p := newEditor(t, Options{})
	stop := e.Watch(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return p.pollCount() > 0 }, time.Second, 5*time.Millisecond)

	stop()
	stop()
	polls := p.pollCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, polls, p.pollCount())
	e.Close()
}

func TestPlayerOverlays(t *testing.T) {
	ctx := context.Background()
	e, p := newEditor(t, Options{Saver: &recordingSaver{}})
	require.True(t, e.ChangeTrimStart(10))
	require.True(t, e.Undo())
	require.True(t, e.Redo())
	require.NoError(t, e.Save(ctx, history.Save))
	assert.Equal(t, []string{"Undo", "Redo", "Saved"}, p.shown())
}

type pathThumbnailer struct{}

func (pathThumbnailer) Thumbnail(ctx context.Context, seg segment.Segment) (string, error) {
	return "/thumbs/" + seg.Title + ".jpg", nil
}

func TestTrimmerThumbnails(t *testing.T) {
	e, _ := newEditor(t, Options{Variant: segment.Trimmer, Thumbnailer: pathThumbnailer{}})
	assert.Eventually(t, func() bool {
		segs := e.Segments()
		return len(segs) == 1 && segs[0].Thumbnail == "/thumbs/Segment 1.jpg"
	}, time.Second, 5*time.Millisecond)
}

func TestCloseWhileEditing(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t, Options{Variant: segment.Trimmer, Thumbnailer: pathThumbnailer{}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i < 50; i++ {
			segs := e.Segments()
			e.Dispatch(ctx, SplitSegment{SegmentID: segs[0].ID, Time: 99 - float64(i)})
		}
	}()
	e.Close()
	<-done

	// edits after Close still apply but start no background work
	before := len(e.Segments())
	segs := e.Segments()
	require.True(t, e.Dispatch(ctx, SplitSegment{SegmentID: segs[0].ID, Time: segs[0].StartTime + 0.5}))
	assert.Len(t, e.Segments(), before+1)
}

func strPtr(s string) *string    { return &s }
func f64Ptr(f float64) *float64 { return &f }
