// Package playback drives a media player for the timeline editor: play/pause,
// seeking, trim-range limiting and sequential play-through of segments.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/segment"
)

// SegmentEndEpsilon is how close to a segment's end playback advances to the next one.
const SegmentEndEpsilon = 0.01

// Player is the media device under control. The mpv client implements it;
// tests use an in-memory fake.
type Player interface {
	CurrentTime() (float64, error)
	Seek(seconds float64) error
	Duration() (float64, error)
	Play(ctx context.Context) error
	Pause() error
	Paused() (bool, error)
	Muted() (bool, error)
	SetMuted(muted bool) error
}

// Mode is the segment-sequencing state.
type Mode int

const (
	// Idle means normal playback limited by the trim range.
	Idle Mode = iota
	// PlayingSegments means playback walks the sorted segment list.
	PlayingSegments
)

// State is a read-only view of the controller's playback flags.
type State struct {
	CurrentTime  float64
	IsPlaying    bool
	IsMuted      bool
	Mode         Mode
	SegmentIndex int
	LastSeeked   float64
}

// Controller owns every interaction with the Player. It never mutates the
// segments it is given; PlaySegments keeps its own sorted copy.
type Controller struct {
	mu     sync.Mutex
	player Player
	logger zerolog.Logger

	currentTime float64
	lastSeeked  float64
	playing     bool
	muted       bool

	mode  Mode
	queue []segment.Segment
	index int
}

// NewController wraps player.
func NewController(player Player, logger zerolog.Logger) *Controller {
	return &Controller{
		player: player,
		logger: logger.With().Str("component", "playback").Logger(),
	}
}

// State returns a snapshot of the playback flags.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		CurrentTime:  c.currentTime,
		IsPlaying:    c.playing,
		IsMuted:      c.muted,
		Mode:         c.mode,
		SegmentIndex: c.index,
		LastSeeked:   c.lastSeeked,
	}
}

// PlayPause toggles playback. Resuming at or past trimEnd restarts from
// trimStart. A rejected play leaves the controller paused and the error is
// logged and returned.
func (c *Controller) PlayPause(ctx context.Context, trimStart, trimEnd float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil {
		return nil
	}

	if c.playing {
		if err := c.player.Pause(); err != nil {
			c.logger.Warn().Err(err).Msg("pause failed")
			return err
		}
		c.playing = false
		return nil
	}

	if t, err := c.player.CurrentTime(); err == nil {
		c.currentTime = t
	}
	if trimEnd > trimStart && c.currentTime >= trimEnd {
		if err := c.seekLocked(trimStart); err != nil {
			return err
		}
	}
	return c.playLocked(ctx)
}

// Seek moves the playhead to t and resumes playback if it was playing.
func (c *Controller) Seek(ctx context.Context, t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil {
		return nil
	}
	wasPlaying := c.playing
	if err := c.seekLocked(t); err != nil {
		return err
	}
	if wasPlaying {
		return c.playLocked(ctx)
	}
	return nil
}

// PlaySegments starts sequential playback through segs in chronological
// order. An empty list is a no-op.
func (c *Controller) PlaySegments(ctx context.Context, segs []segment.Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil || len(segs) == 0 {
		return nil
	}

	c.queue = segment.SortByStart(segs)
	c.index = 0
	c.mode = PlayingSegments
	if err := c.seekLocked(c.queue[0].StartTime); err != nil {
		c.resetSegmentsLocked()
		return err
	}
	if err := c.playLocked(ctx); err != nil {
		c.resetSegmentsLocked()
		return err
	}
	c.logger.Debug().Int("segments", len(c.queue)).Msg("segment playback started")
	return nil
}

// StopSegments pauses and leaves segment mode, resetting the index.
func (c *Controller) StopSegments() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSegmentsLocked()
}

// SetSegmentIndex jumps to segment i of the active sequence. It is ignored
// unless segment playback is running.
func (c *Controller) SetSegmentIndex(ctx context.Context, i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != PlayingSegments || i < 0 || i >= len(c.queue) {
		return false
	}
	c.index = i
	if err := c.seekLocked(c.queue[i].StartTime); err != nil {
		return false
	}
	return true
}

// ToggleMute flips the player's mute flag.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil {
		return nil
	}
	muted, err := c.player.Muted()
	if err != nil {
		muted = c.muted
	}
	if err := c.player.SetMuted(!muted); err != nil {
		return err
	}
	c.muted = !muted
	return nil
}

// Tick polls the player and runs OnTimeUpdate with the result. It also
// picks up pauses made directly in the player.
func (c *Controller) Tick(ctx context.Context, trimEnd float64) {
	c.mu.Lock()
	if c.player == nil {
		c.mu.Unlock()
		return
	}
	t, err := c.player.CurrentTime()
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug().Err(err).Msg("time poll failed")
		return
	}
	if paused, err := c.player.Paused(); err == nil {
		c.playing = !paused
	}
	c.mu.Unlock()

	c.OnTimeUpdate(ctx, t, trimEnd)
}

// OnTimeUpdate handles a playback time tick. In segment mode it keeps the
// playhead inside the active segment and advances through the list; otherwise
// it pauses once playback reaches trimEnd.
func (c *Controller) OnTimeUpdate(ctx context.Context, t, trimEnd float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t

	if c.mode != PlayingSegments {
		if c.playing && trimEnd > 0 && t >= trimEnd {
			if err := c.player.Pause(); err != nil {
				c.logger.Warn().Err(err).Msg("pause at trim end failed")
				return
			}
			c.playing = false
		}
		return
	}

	active := c.queue[c.index]
	if t < active.StartTime {
		_ = c.seekLocked(active.StartTime)
		return
	}
	if t < active.EndTime-SegmentEndEpsilon {
		return
	}

	if c.index+1 < len(c.queue) {
		c.index++
		if err := c.seekLocked(c.queue[c.index].StartTime); err != nil {
			return
		}
		if paused, err := c.player.Paused(); err == nil && paused {
			if err := c.playLocked(ctx); err != nil {
				c.resetSegmentsLocked()
			}
		}
		return
	}

	c.logger.Debug().Msg("segment playback finished")
	c.stopSegmentsLocked()
}

// Watch registers a time-update listener that ticks every interval until
// the returned stop func is called or ctx ends. bounds supplies the current
// trim end on each tick. stop waits for the listener to exit and may be
// called more than once.
func (c *Controller) Watch(ctx context.Context, interval time.Duration, bounds func() float64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Tick(ctx, bounds())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (c *Controller) seekLocked(t float64) error {
	if err := c.player.Seek(t); err != nil {
		c.logger.Warn().Err(err).Float64("time", t).Msg("seek failed")
		return err
	}
	c.currentTime = t
	c.lastSeeked = t
	return nil
}

func (c *Controller) playLocked(ctx context.Context) error {
	if err := c.player.Play(ctx); err != nil {
		c.playing = false
		c.logger.Warn().Err(err).Msg("play rejected")
		return err
	}
	c.playing = true
	return nil
}

func (c *Controller) stopSegmentsLocked() {
	if c.player != nil && c.playing {
		if err := c.player.Pause(); err != nil {
			c.logger.Warn().Err(err).Msg("pause failed")
		}
	}
	c.playing = false
	c.resetSegmentsLocked()
}

func (c *Controller) resetSegmentsLocked() {
	c.mode = Idle
	c.index = 0
	c.queue = nil
}
