package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mediacms-timeline/editor"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/forms"
)

type fakePlayer struct {
	mu     sync.Mutex
	time   float64
	paused bool
	muted  bool
}

func (p *fakePlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.time, nil
}

func (p *fakePlayer) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.time = t
	return nil
}

func (p *fakePlayer) Duration() (float64, error) { return 100, nil }

func (p *fakePlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *fakePlayer) Paused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused, nil
}

func (p *fakePlayer) Muted() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted, nil
}

func (p *fakePlayer) SetMuted(m bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = m
	return nil
}

func newModel(t *testing.T) (*Model, *fakePlayer) {
	t.Helper()
	player := &fakePlayer{paused: true}
	ed, err := editor.New(editor.Options{Variant: segment.Chapters, MediaID: "m1", Player: player, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(ed.Close)

	m := NewModel(context.Background(), ed, Options{Variant: segment.Chapters, MediaID: "m1", Logger: zerolog.Nop()})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, player
}

func press(m *Model, keys string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

func TestSplitUndoRedo(t *testing.T) {
	m, player := newModel(t)
	require.Len(t, m.list.Segments, 1)

	player.Seek(40)
	press(m, "s")
	require.Len(t, m.list.Segments, 2)
	assert.Equal(t, 40.0, m.list.Segments[1].StartTime)
	assert.True(t, m.view.HasUnsavedChanges)

	press(m, "u")
	assert.Len(t, m.list.Segments, 1)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Len(t, m.list.Segments, 2)

	// a second split at the same position is refused
	press(m, "s")
	assert.Len(t, m.list.Segments, 2)
	assert.True(t, m.messageIsError)
}

func TestDeleteSelected(t *testing.T) {
	m, player := newModel(t)
	player.Seek(50)
	press(m, "s")
	press(m, "j")
	sel, ok := m.list.SelectedSegment()
	require.True(t, ok)
	assert.Equal(t, 50.0, sel.StartTime)

	press(m, "d")
	require.Len(t, m.list.Segments, 1)
	assert.Equal(t, "Chapter 1", m.list.Segments[0].Title)
}

func TestHistoryFocusWalksHistory(t *testing.T) {
	m, player := newModel(t)
	player.Seek(25)
	press(m, "s")
	player.Seek(75)
	press(m, "s")
	require.Len(t, m.list.Segments, 3)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusHistory, m.focus)
	press(m, "k")
	press(m, "k")
	assert.Len(t, m.list.Segments, 1)
	press(m, "j")
	assert.Len(t, m.list.Segments, 2)
}

func TestTrimKeys(t *testing.T) {
	m, player := newModel(t)
	player.Seek(80)
	m.Update(tickMsg{})
	press(m, "]")
	assert.Equal(t, 80.0, m.view.TrimEnd)

	player.Seek(90)
	m.Update(tickMsg{})
	press(m, "[")
	assert.Equal(t, 0.0, m.view.TrimStart)
	assert.True(t, m.messageIsError)
}

func TestQuitConfirmsUnsaved(t *testing.T) {
	m, player := newModel(t)
	assert.NotNil(t, press(m, "q"))
	assert.True(t, m.quitting)

	m, player = newModel(t)
	player.Seek(10)
	press(m, "s")
	press(m, "q")
	assert.False(t, m.quitting)
	require.NotNil(t, m.form)
	assert.Equal(t, formQuit, m.formKind)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.form)
	assert.False(t, m.quitting)
}

func TestEditFormOpens(t *testing.T) {
	m, _ := newModel(t)
	press(m, "e")
	require.NotNil(t, m.form)
	assert.Equal(t, formSegment, m.formKind)
	assert.Equal(t, "00:00:00.000", m.segResult.Start)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.form)
}

func TestApplySegmentForm(t *testing.T) {
	m, player := newModel(t)
	player.Seek(50)
	press(m, "s")
	first := m.list.Segments[0]

	m.applySegmentForm(first.ID, &forms.SegmentFormResult{Title: "Intro", Start: "00:00:05", End: "00:00:50"})
	assert.Equal(t, "Intro", m.list.Segments[0].Title)
	assert.Equal(t, 5.0, m.list.Segments[0].StartTime)

	m.applySegmentForm(first.ID, &forms.SegmentFormResult{Title: "Intro", Start: "00:00:05", End: "00:01:10"})
	assert.True(t, m.messageIsError)
	assert.Equal(t, 50.0, m.list.Segments[0].EndTime)
}

func TestSaveResult(t *testing.T) {
	m, _ := newModel(t)
	m.Update(saveResultMsg{err: errors.New("status 403")})
	assert.Equal(t, "status 403", m.message)
	assert.True(t, m.messageIsError)

	m.Update(saveResultMsg{})
	assert.Equal(t, "saved", m.message)
	assert.False(t, m.saving)
}

func TestViewRenders(t *testing.T) {
	m, _ := newModel(t)
	out := m.View()
	assert.Contains(t, out, "Timeline")
	assert.Contains(t, out, "History 1/1")
	assert.Contains(t, out, "Chapter 1")

	press(m, "?")
	assert.Contains(t, m.View(), "split at playhead")
	press(m, "x")
	assert.False(t, m.showHelp)

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, m.View(), "too narrow")
}

func TestTickPollsUnlessWatched(t *testing.T) {
	m, player := newModel(t)
	player.Seek(42)
	m.Update(tickMsg(time.Now()))
	assert.Equal(t, 42.0, m.view.CurrentTime)

	m.opts.Watched = true
	player.Seek(60)
	m.Update(tickMsg(time.Now()))
	assert.Equal(t, 42.0, m.view.CurrentTime)
}
