// Package editor orchestrates a timeline editing session: it owns the live
// trim/split/segment state and its undo history, applies inbound commands,
// and forwards playback requests to the playback controller.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/history"
	"github.com/user/mediacms-timeline/playback"
	"github.com/user/mediacms-timeline/segment"
)

var (
	// ErrNoDuration is returned by New when neither the options nor the
	// player report a positive media duration.
	ErrNoDuration = errors.New("editor: media duration unknown")
	// ErrNoSaver is returned by Save when no persistence adapter is configured.
	ErrNoSaver = errors.New("editor: no saver configured")
)

// Saver persists a segment list for a media item.
type Saver interface {
	Save(ctx context.Context, mediaID string, segs []segment.Segment, duration float64) error
}

// Thumbnailer renders a preview frame for a segment and returns its path.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, seg segment.Segment) (string, error)
}

// Announcer is implemented by players that can overlay a short message on the video.
type Announcer interface {
	ShowText(text string, d time.Duration) error
}

// announceDuration is how long player overlays stay on screen.
const announceDuration = 1500 * time.Millisecond

// Options configures New.
type Options struct {
	Variant segment.Variant
	MediaID string
	// Duration in seconds. Zero asks the Player.
	Duration float64
	Player   playback.Player
	// Initial segments, e.g. chapters fetched from the backend. Empty starts
	// with one segment spanning the whole media.
	Initial     []segment.Segment
	Logger      zerolog.Logger
	OnAutosave  func()
	Saver       Saver
	Thumbnailer Thumbnailer
}

// View is the state exposed to the rendering layer.
type View struct {
	CurrentTime       float64
	Duration          float64
	IsPlaying         bool
	IsMuted           bool
	PlayingSegments   bool
	SegmentIndex      int
	TrimStart         float64
	TrimEnd           float64
	SplitPoints       []float64
	ClipSegments      []segment.Segment
	HistoryPosition   int
	History           []history.EditorState
	HasUnsavedChanges bool
}

// Editor is one editing session. All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	variant  segment.Variant
	mediaID  string
	duration float64
	logger   zerolog.Logger

	player   playback.Player
	playback *playback.Controller

	ids         segment.IDs
	hist        *history.History
	trimStart   float64
	trimEnd     float64
	splitPoints []float64
	segments    []segment.Segment
	unsaved     bool
	// gen counts changes to the live segments or history.
	gen uint64

	onAutosave  func()
	saver       Saver
	thumbnailer Thumbnailer

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
	watchers []func()
}

// New starts a session. The initial state is the first history entry.
func New(opts Options) (*Editor, error) {
	duration := opts.Duration
	if duration <= 0 && opts.Player != nil {
		if d, err := opts.Player.Duration(); err == nil {
			duration = d
		}
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, ErrNoDuration
	}

	logger := opts.Logger.With().
		Str("component", "editor").
		Str("session", uuid.NewString()).
		Str("variant", opts.Variant.String()).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	e := &Editor{
		variant:     opts.Variant,
		mediaID:     opts.MediaID,
		duration:    duration,
		logger:      logger,
		player:      opts.Player,
		playback:    playback.NewController(opts.Player, opts.Logger),
		trimEnd:     duration,
		onAutosave:  opts.OnAutosave,
		saver:       opts.Saver,
		thumbnailer: opts.Thumbnailer,
		bgCtx:       ctx,
		bgCancel:    cancel,
	}

	initial := e.sanitizeInitial(opts.Initial)
	if len(initial) == 0 {
		initial = segment.Full(duration, e.variant, &e.ids)
	}
	e.segments = initial
	e.hist = history.New(e.snapshotLocked(history.Init))
	e.refreshThumbnailsLocked()

	e.logger.Debug().Int("segments", len(initial)).Float64("duration", duration).Msg("editor initialized")
	return e, nil
}

// sanitizeInitial drops segments outside the media, assigns ids to segments
// that have none and renumbers the rest.
func (e *Editor) sanitizeInitial(in []segment.Segment) []segment.Segment {
	var out []segment.Segment
	for _, s := range in {
		if s.EndTime > e.duration {
			s.EndTime = e.duration
		}
		if s.StartTime < 0 || s.StartTime >= s.EndTime {
			e.logger.Debug().Int64("id", s.ID).Msg("dropping invalid initial segment")
			continue
		}
		out = append(out, s)
	}
	if segment.Overlapping(out) {
		e.logger.Warn().Msg("initial segments overlap, starting from a single segment")
		return nil
	}
	e.ids.Observe(out)
	for i := range out {
		if out[i].ID == 0 {
			out[i].ID = e.ids.Next()
		}
	}
	return segment.Renumber(out, e.variant)
}

// Close stops watchers, background work and segment playback. It is safe to
// call more than once.
func (e *Editor) Close() {
	e.mu.Lock()
	e.bgCancel()
	watchers := e.watchers
	e.watchers = nil
	e.mu.Unlock()

	for _, stop := range watchers {
		stop()
	}
	e.bg.Wait()
	e.playback.StopSegments()
}

// announce shows text on the player when it supports overlays. Must be
// called without e.mu held.
func (e *Editor) announce(text string) {
	a, ok := e.player.(Announcer)
	if !ok {
		return
	}
	if err := a.ShowText(text, announceDuration); err != nil {
		e.logger.Debug().Err(err).Msg("show text failed")
	}
}

// State returns a copy of everything the UI renders.
func (e *Editor) State() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	ps := e.playback.State()
	return View{
		CurrentTime:       ps.CurrentTime,
		Duration:          e.duration,
		IsPlaying:         ps.IsPlaying,
		IsMuted:           ps.IsMuted,
		PlayingSegments:   ps.Mode == playback.PlayingSegments,
		SegmentIndex:      ps.SegmentIndex,
		TrimStart:         e.trimStart,
		TrimEnd:           e.trimEnd,
		SplitPoints:       append([]float64(nil), e.splitPoints...),
		ClipSegments:      segment.Clone(e.segments),
		HistoryPosition:   e.hist.Position(),
		History:           e.hist.Entries(),
		HasUnsavedChanges: e.unsaved,
	}
}

// Segments returns a copy of the live segment list.
func (e *Editor) Segments() []segment.Segment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return segment.Clone(e.segments)
}

// Dispatch applies an inbound command. It reports whether anything changed;
// malformed or impossible commands are ignored.
func (e *Editor) Dispatch(ctx context.Context, cmd Command) bool {
	switch c := cmd.(type) {
	case UpdateTrim:
		return e.updateTrim(c)
	case UpdateSegments:
		return e.updateSegments(c)
	case SplitSegment:
		return e.splitSegment(c)
	case DeleteSegment:
		return e.deleteSegment(c.SegmentID)
	case UpdateSegmentIndex:
		return e.playback.SetSegmentIndex(ctx, c.Index)
	case nil:
		return false
	default:
		e.logger.Debug().Str("command", fmt.Sprintf("%T", cmd)).Msg("unknown command ignored")
		return false
	}
}

// ChangeTrimStart moves the trim start and records an undo point.
func (e *Editor) ChangeTrimStart(t float64) bool {
	return e.updateTrim(UpdateTrim{Time: t, IsStart: true, Action: history.TrimStart})
}

// ChangeTrimEnd moves the trim end and records an undo point.
func (e *Editor) ChangeTrimEnd(t float64) bool {
	return e.updateTrim(UpdateTrim{Time: t, Action: history.TrimEnd})
}

// Split cuts the timeline at the current playback position using split
// points. Positions at the media edges or already split are ignored.
func (e *Editor) Split() bool {
	t := e.currentTime()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !(t > 0 && t < e.duration) {
		e.logger.Debug().Float64("time", t).Msg("split outside media ignored")
		return false
	}
	for _, p := range e.splitPoints {
		if p == t {
			e.logger.Debug().Float64("time", t).Msg("duplicate split point ignored")
			return false
		}
	}

	points := append(append([]float64(nil), e.splitPoints...), t)
	sort.Float64s(points)
	e.splitPoints = points
	e.setSegmentsLocked(segment.FromSplitPoints(points, e.duration, e.variant, &e.ids))
	e.pushLocked(history.CreateSplitPoints)
	return true
}

// Reset clears trim and split state. The chapter editor ends with no
// segments; the trimmer with one spanning the whole media.
func (e *Editor) Reset() {
	e.playback.StopSegments()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.trimStart, e.trimEnd = 0, e.duration
	e.splitPoints = nil
	if e.variant.FillOnEmpty() {
		e.setSegmentsLocked(segment.Full(e.duration, e.variant, &e.ids))
	} else {
		e.setSegmentsLocked([]segment.Segment{})
	}
	e.pushLocked(history.Reset)
}

// Undo restores the previous history entry and fires the autosave hook.
func (e *Editor) Undo() bool {
	return e.move((*history.History).Undo, "undo", "Undo")
}

// Redo restores the next history entry and fires the autosave hook.
func (e *Editor) Redo() bool {
	return e.move((*history.History).Redo, "redo", "Redo")
}

func (e *Editor) move(step func(*history.History) (history.EditorState, bool), name, overlay string) bool {
	e.mu.Lock()
	st, ok := step(e.hist)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug().Msg(name + " unavailable")
		return false
	}
	e.applyLocked(st)
	e.logger.Debug().Int("position", e.hist.Position()).Str("action", st.Action.String()).Msg(name)
	hook := e.onAutosave
	e.mu.Unlock()

	e.announce(overlay)
	if hook != nil {
		hook()
	}
	return true
}

// UpdateSegment changes the title and/or bounds of one segment. Bounds that
// would leave the media or overlap a neighbour reject the whole patch.
func (e *Editor) UpdateSegment(id int64, p Patch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	segs := segment.Clone(e.segments)
	idx := -1
	for i := range segs {
		if segs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.logger.Debug().Int64("id", id).Msg("update of unknown segment ignored")
		return false
	}

	s := &segs[idx]
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.StartTime != nil || p.EndTime != nil {
		s.Thumbnail = ""
	}
	if !segment.Valid(segs, e.duration) {
		e.logger.Debug().Int64("id", id).Msg("segment update rejected")
		return false
	}

	e.setSegmentsLocked(segment.Renumber(segs, e.variant))
	e.pushLocked(history.UpdateSegment)
	return true
}

// DeleteSegment removes one segment.
func (e *Editor) DeleteSegment(id int64) bool {
	return e.deleteSegment(id)
}

// PlaySegments toggles sequential playback through every segment.
func (e *Editor) PlaySegments(ctx context.Context) error {
	if e.playback.State().Mode == playback.PlayingSegments {
		e.playback.StopSegments()
		return nil
	}
	return e.playback.PlaySegments(ctx, e.Segments())
}

// PlayPause toggles normal playback inside the trim range.
func (e *Editor) PlayPause(ctx context.Context) error {
	start, end := e.trimBounds()
	return e.playback.PlayPause(ctx, start, end)
}

// Seek moves the playhead, clamped to the media.
func (e *Editor) Seek(ctx context.Context, t float64) error {
	if math.IsNaN(t) {
		return nil
	}
	return e.playback.Seek(ctx, math.Max(0, math.Min(t, e.duration)))
}

// ToggleMute flips the player's mute flag.
func (e *Editor) ToggleMute() error {
	return e.playback.ToggleMute()
}

// Tick polls the player once; the TUI calls it on its refresh timer.
func (e *Editor) Tick(ctx context.Context) {
	_, end := e.trimBounds()
	e.playback.Tick(ctx, end)
}

// Watch keeps polling the player every interval until stop is called or the
// editor is closed. Watch on a closed editor returns a no-op stop.
func (e *Editor) Watch(ctx context.Context, interval time.Duration) (stop func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bgCtx.Err() != nil {
		return func() {}
	}
	stop = e.playback.Watch(ctx, interval, func() float64 {
		_, end := e.trimBounds()
		return end
	})
	e.watchers = append(e.watchers, stop)
	return stop
}

// Save persists the live segments. The unsaved-changes flag is cleared and a
// checkpoint recorded only when the saver succeeds and nothing was edited
// while the request was in flight.
func (e *Editor) Save(ctx context.Context, action history.Action) error {
	if e.saver == nil {
		return ErrNoSaver
	}
	if !action.IsCheckpoint() {
		action = history.Save
	}

	e.mu.Lock()
	segs := segment.Clone(e.segments)
	mediaID, duration := e.mediaID, e.duration
	gen := e.gen
	e.mu.Unlock()

	if err := e.saver.Save(ctx, mediaID, segs, duration); err != nil {
		e.logger.Error().Err(err).Str("media_id", mediaID).Msg("save failed")
		return fmt.Errorf("save segments: %w", err)
	}

	e.mu.Lock()
	stale := e.gen != gen
	if !stale {
		e.pushLocked(action)
	}
	e.mu.Unlock()
	if stale {
		e.logger.Warn().Str("media_id", mediaID).Msg("segments changed during save, keeping unsaved changes")
		return nil
	}
	e.announce("Saved")
	e.logger.Info().Str("media_id", mediaID).Int("segments", len(segs)).Msg("segments saved")
	return nil
}

func (e *Editor) updateTrim(c UpdateTrim) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := c.Time
	if math.IsNaN(t) || t < 0 || t > e.duration {
		e.logger.Debug().Float64("time", t).Msg("trim outside media ignored")
		return false
	}
	if c.IsStart {
		if t >= e.trimEnd {
			return false
		}
		e.trimStart = t
	} else {
		if t <= e.trimStart {
			return false
		}
		e.trimEnd = t
	}

	if !c.Preview {
		e.pushLocked(c.Action)
	}
	return true
}

func (e *Editor) updateSegments(c UpdateSegments) bool {
	if c.Segments == nil {
		e.logger.Debug().Msg("segment update without segments ignored")
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	segs := segment.Clone(c.Segments)
	if !segment.Valid(segs, e.duration) {
		e.logger.Debug().Int("segments", len(segs)).Msg("invalid segment list ignored")
		return false
	}
	e.ids.Observe(segs)
	for i := range segs {
		if segs[i].ID == 0 {
			segs[i].ID = e.ids.Next()
		}
	}
	if len(segs) == 0 && e.variant.FillOnEmpty() {
		segs = segment.Full(e.duration, e.variant, &e.ids)
	}
	e.setSegmentsLocked(segment.Renumber(segs, e.variant))

	if !c.Preview {
		action := c.Action
		if action == history.None {
			action = history.UpdateSegments
		}
		e.pushLocked(action)
	}
	return true
}

func (e *Editor) splitSegment(c SplitSegment) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	segs, ok := segment.Split(e.segments, c.SegmentID, c.Time, &e.ids)
	if !ok {
		e.logger.Debug().Int64("id", c.SegmentID).Float64("time", c.Time).Msg("split ignored")
		return false
	}
	e.setSegmentsLocked(segment.Renumber(segs, e.variant))
	e.pushLocked(history.SplitSegment)
	return true
}

func (e *Editor) deleteSegment(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	segs, ok := segment.Delete(e.segments, id)
	if !ok {
		e.logger.Debug().Int64("id", id).Msg("delete of unknown segment ignored")
		return false
	}
	if len(segs) == 0 {
		e.trimStart, e.trimEnd = 0, e.duration
		e.splitPoints = nil
		if e.variant.FillOnEmpty() {
			segs = segment.Full(e.duration, e.variant, &e.ids)
		}
	}
	e.setSegmentsLocked(segment.Renumber(segs, e.variant))
	e.pushLocked(history.DeleteSegment)
	return true
}

func (e *Editor) currentTime() float64 {
	if e.player != nil {
		if t, err := e.player.CurrentTime(); err == nil {
			return t
		}
	}
	return e.playback.State().CurrentTime
}

func (e *Editor) trimBounds() (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trimStart, e.trimEnd
}

func (e *Editor) snapshotLocked(a history.Action) history.EditorState {
	return history.EditorState{
		TrimStart:   e.trimStart,
		TrimEnd:     e.trimEnd,
		SplitPoints: e.splitPoints,
		Segments:    e.segments,
		Action:      a,
	}.Clone()
}

func (e *Editor) pushLocked(a history.Action) {
	if !e.hist.Push(e.snapshotLocked(a)) {
		return
	}
	e.gen++
	e.unsaved = !a.IsCheckpoint()
	e.logger.Debug().Str("action", a.String()).Int("position", e.hist.Position()).Msg("history push")
}

func (e *Editor) applyLocked(st history.EditorState) {
	e.trimStart = st.TrimStart
	e.trimEnd = st.TrimEnd
	e.splitPoints = st.SplitPoints
	e.setSegmentsLocked(st.Segments)
	e.unsaved = !st.Action.IsCheckpoint()
	e.gen++
}

func (e *Editor) setSegmentsLocked(segs []segment.Segment) {
	e.segments = segs
	e.gen++
	e.refreshThumbnailsLocked()
}

// refreshThumbnailsLocked renders missing thumbnails in the background and
// attaches them to the live segments that still match.
func (e *Editor) refreshThumbnailsLocked() {
	if e.thumbnailer == nil || !e.variant.Thumbnails() {
		return
	}
	var missing []segment.Segment
	for _, s := range e.segments {
		if s.Thumbnail == "" {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 || e.bgCtx.Err() != nil {
		return
	}

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		for _, s := range missing {
			path, err := e.thumbnailer.Thumbnail(e.bgCtx, s)
			if err != nil {
				if e.bgCtx.Err() != nil {
					return
				}
				e.logger.Warn().Err(err).Int64("id", s.ID).Msg("thumbnail failed")
				continue
			}
			e.mu.Lock()
			for i := range e.segments {
				if e.segments[i].ID == s.ID && e.segments[i].StartTime == s.StartTime {
					e.segments[i].Thumbnail = path
				}
			}
			e.mu.Unlock()
		}
	}()
}
