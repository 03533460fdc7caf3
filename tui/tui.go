// Package tui is the terminal front end of the timeline editor. It renders
// the editor state and maps key presses onto editor operations; all edits go
// through *editor.Editor.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/editor"
	"github.com/user/mediacms-timeline/history"
	"github.com/user/mediacms-timeline/segment"
	"github.com/user/mediacms-timeline/tui/components"
	"github.com/user/mediacms-timeline/tui/forms"
	"github.com/user/mediacms-timeline/tui/layout"
	"github.com/user/mediacms-timeline/tui/styles"
)

const (
	// defaultTickInterval is the interval for polling the player.
	defaultTickInterval = 100 * time.Millisecond
	// defaultStepSize is the default seek step size in seconds.
	defaultStepSize = 5.0
	// resultDisplayDuration is how long to show result messages.
	resultDisplayDuration = 3 * time.Second
)

// stepSizes defines the available seek step sizes, cycled with < and >.
var stepSizes = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}

// tickMsg is a message sent on every tick interval to refresh playback state.
type tickMsg time.Time

// clearResultMsg clears the status message if it is still the one with seq.
type clearResultMsg struct{ seq int }

// saveResultMsg reports the outcome of a background save.
type saveResultMsg struct{ err error }

type formKind int

const (
	formNone formKind = iota
	formSegment
	formQuit
)

// Options configures the editor screen.
type Options struct {
	Variant      segment.Variant
	MediaID      string
	TickInterval time.Duration
	// Export enables the export key; nil leaves it disabled.
	Export *ExportConfig
	Logger zerolog.Logger
	// Watched means a player watcher is running, so ticks only redraw.
	Watched bool
}

// Model is the Bubbletea model of the editor screen.
type Model struct {
	ctx  context.Context
	ed   *editor.Editor
	opts Options
	keys keyMap
	help help.Model

	width  int
	height int

	view     editor.View
	list     components.SegmentListState
	focus    FocusTarget
	stepSize float64
	showHelp bool

	message        string
	messageIsError bool
	messageSeq     int

	form        *huh.Form
	formKind    formKind
	segResult   *forms.SegmentFormResult
	editID      int64
	confirmQuit bool

	saving   bool
	export   components.ExportProgressState
	exportCh <-chan tea.Msg

	quitting bool
}

// NewModel creates the editor screen around ed.
func NewModel(ctx context.Context, ed *editor.Editor, opts Options) *Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	keys := newKeyMap()
	keys.Export.SetEnabled(opts.Export != nil)

	m := &Model{
		ctx:      ctx,
		ed:       ed,
		opts:     opts,
		keys:     keys,
		help:     help.New(),
		stepSize: defaultStepSize,
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(styles.Amber)
	m.help.Styles.ShortDesc = styles.SecondaryText
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(styles.Purple)
	m.refresh()
	return m
}

// Init starts the player poll.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh copies the editor state into the view model.
func (m *Model) refresh() {
	m.view = m.ed.State()
	m.list.SetSegments(m.view.ClipSegments)
	m.list.ActiveID = 0
	if s, ok := segment.At(m.view.ClipSegments, m.view.CurrentTime); ok {
		m.list.ActiveID = s.ID
	}
}

// flash shows a transient message in the status bar.
func (m *Model) flash(msg string, isErr bool) tea.Cmd {
	m.messageSeq++
	m.message = msg
	m.messageIsError = isErr
	seq := m.messageSeq
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{seq: seq}
	})
}

func (m *Model) flashErr(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.opts.Logger.Warn().Err(err).Msg("editor action failed")
	return m.flash(err.Error(), true)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case tickMsg:
		if !m.opts.Watched {
			m.ed.Tick(m.ctx)
		}
		m.refresh()
		return m, m.tickCmd()

	case clearResultMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil

	case saveResultMsg:
		m.saving = false
		m.refresh()
		if msg.err != nil {
			return m, m.flashErr(msg.err)
		}
		return m, m.flash("saved", false)

	case exportProgressMsg:
		m.export = msg.state
		return m, waitForExportMsg(m.exportCh)

	case exportCompleteMsg:
		m.export = msg.state
		m.exportCh = nil
		text := fmt.Sprintf("exported %d segments to %s", msg.state.Completed, msg.outputDir)
		return m, m.flash(text, msg.state.Errors > 0)

	case exportErrorMsg:
		m.export.Active = false
		m.exportCh = nil
		return m, m.flashErr(msg.err)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, k.Quit):
		if m.view.HasUnsavedChanges {
			return m, m.openQuitForm()
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.showHelp = true

	case key.Matches(msg, k.PlayPause):
		cmd = m.flashErr(m.ed.PlayPause(m.ctx))
	case key.Matches(msg, k.PlaySegments):
		cmd = m.flashErr(m.ed.PlaySegments(m.ctx))
	case key.Matches(msg, k.SeekBack):
		cmd = m.flashErr(m.ed.Seek(m.ctx, m.view.CurrentTime-m.stepSize))
	case key.Matches(msg, k.SeekForward):
		cmd = m.flashErr(m.ed.Seek(m.ctx, m.view.CurrentTime+m.stepSize))
	case key.Matches(msg, k.StepDown):
		m.stepSize = stepSizes[max(m.stepIndex()-1, 0)]
		cmd = m.flash(fmt.Sprintf("step %gs", m.stepSize), false)
	case key.Matches(msg, k.StepUp):
		m.stepSize = stepSizes[min(m.stepIndex()+1, len(stepSizes)-1)]
		cmd = m.flash(fmt.Sprintf("step %gs", m.stepSize), false)
	case key.Matches(msg, k.Mute):
		cmd = m.flashErr(m.ed.ToggleMute())

	case key.Matches(msg, k.TrimStart):
		if !m.ed.ChangeTrimStart(m.view.CurrentTime) {
			cmd = m.flash("trim start must stay before trim end", true)
		}
	case key.Matches(msg, k.TrimEnd):
		if !m.ed.ChangeTrimEnd(m.view.CurrentTime) {
			cmd = m.flash("trim end must stay after trim start", true)
		}
	case key.Matches(msg, k.Split):
		if !m.ed.Split() {
			cmd = m.flash("cannot split here", true)
		}
	case key.Matches(msg, k.Delete):
		if seg, ok := m.list.SelectedSegment(); ok {
			m.ed.DeleteSegment(seg.ID)
		}
	case key.Matches(msg, k.Edit):
		if seg, ok := m.list.SelectedSegment(); ok {
			return m, m.openSegmentForm(seg)
		}
	case key.Matches(msg, k.Reset):
		m.ed.Reset()
		cmd = m.flash("timeline reset", false)
	case key.Matches(msg, k.Undo):
		cmd = m.undo()
	case key.Matches(msg, k.Redo):
		cmd = m.redo()

	case key.Matches(msg, k.Up):
		if m.focus == FocusHistory {
			cmd = m.undo()
		} else {
			m.list.MoveUp()
		}
	case key.Matches(msg, k.Down):
		if m.focus == FocusHistory {
			cmd = m.redo()
		} else {
			m.list.MoveDown()
		}
	case key.Matches(msg, k.Jump):
		if seg, ok := m.list.SelectedSegment(); ok {
			cmd = m.flashErr(m.ed.Seek(m.ctx, seg.StartTime))
		}
	case key.Matches(msg, k.Focus):
		m.focus = m.focus.Next()

	case key.Matches(msg, k.Save):
		cmd = m.save()
	case key.Matches(msg, k.Export):
		cmd = m.startExport()
	}

	m.refresh()
	return m, cmd
}

func (m *Model) undo() tea.Cmd {
	if !m.ed.Undo() {
		return m.flash("nothing to undo", true)
	}
	return nil
}

func (m *Model) redo() tea.Cmd {
	if !m.ed.Redo() {
		return m.flash("nothing to redo", true)
	}
	return nil
}

func (m *Model) stepIndex() int {
	for i, s := range stepSizes {
		if s >= m.stepSize {
			return i
		}
	}
	return len(stepSizes) - 1
}

// save runs the persistence adapter off the UI goroutine.
func (m *Model) save() tea.Cmd {
	if m.saving {
		return nil
	}
	m.saving = true
	ctx, ed := m.ctx, m.ed
	return tea.Batch(
		m.flash("saving…", false),
		func() tea.Msg {
			return saveResultMsg{err: ed.Save(ctx, history.Save)}
		},
	)
}

func (m *Model) startExport() tea.Cmd {
	if m.opts.Export == nil {
		return nil
	}
	if m.exportCh != nil {
		return m.flash("export already running", true)
	}
	ch, err := startExport(m.ctx, *m.opts.Export, m.view.Duration, m.view.ClipSegments)
	if err != nil {
		return m.flashErr(err)
	}
	m.exportCh = ch
	m.export = components.ExportProgressState{Active: true, Total: len(m.view.ClipSegments)}
	return waitForExportMsg(ch)
}

func (m *Model) openSegmentForm(seg segment.Segment) tea.Cmd {
	m.segResult = forms.NewSegmentFormResult(seg)
	m.editID = seg.ID
	m.formKind = formSegment
	m.form = forms.NewSegmentForm(m.list.Selected+1, m.view.Duration, m.segResult)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
	return m.form.Init()
}

func (m *Model) openQuitForm() tea.Cmd {
	m.confirmQuit = false
	m.formKind = formQuit
	m.form = forms.NewConfirmQuitForm(&m.confirmQuit)
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
	m.segResult = nil
}

// updateForm routes messages to the open dialog and applies it on submit.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		kind := m.formKind
		res, id := m.segResult, m.editID
		m.closeForm()
		switch kind {
		case formQuit:
			if m.confirmQuit {
				m.quitting = true
				return m, tea.Quit
			}
		case formSegment:
			return m, m.applySegmentForm(id, res)
		}
		return m, nil
	}
	return m, cmd
}

func (m *Model) applySegmentForm(id int64, res *forms.SegmentFormResult) tea.Cmd {
	start, end, err := res.Times()
	if err != nil {
		return m.flashErr(err)
	}
	title := strings.TrimSpace(res.Title)
	ok := m.ed.UpdateSegment(id, editor.Patch{Title: &title, StartTime: &start, EndTime: &end})
	m.refresh()
	if !ok {
		return m.flash("segment would overlap its neighbours", true)
	}
	return nil
}

// View renders the editor screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.width < layout.MinTerminalWidth {
		return styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d columns, need %d)", m.width, layout.MinTerminalWidth))
	}
	if m.showHelp {
		return components.HelpOverlay(m.keys.groups(), m.width, m.height)
	}

	status := components.StatusBar(components.StatusBarState{
		Playing:         m.view.IsPlaying,
		Muted:           m.view.IsMuted,
		PlayingSegments: m.view.PlayingSegments,
		CurrentTime:     m.view.CurrentTime,
		Duration:        m.view.Duration,
		Variant:         m.opts.Variant,
		MediaID:         m.opts.MediaID,
		Unsaved:         m.view.HasUnsavedChanges,
		Message:         m.message,
		MessageIsError:  m.messageIsError,
	}, m.width)

	var selectedID int64
	if seg, ok := m.list.SelectedSegment(); ok {
		selectedID = seg.ID
	}
	timeline := components.Timeline(components.TimelineState{
		CurrentTime: m.view.CurrentTime,
		Duration:    m.view.Duration,
		TrimStart:   m.view.TrimStart,
		TrimEnd:     m.view.TrimEnd,
		SplitPoints: m.view.SplitPoints,
		Segments:    m.view.ClipSegments,
		SelectedID:  selectedID,
	}, m.width)

	exportBox := components.ExportProgress(m.export, m.width)
	footer := m.help.View(m.keys)

	sections := []string{status, timeline}
	if exportBox != "" {
		sections = append(sections, exportBox)
	}
	used := 1 // footer
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	bodyHeight := m.height - used
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	sections = append(sections, m.renderBody(bodyHeight), footer)
	return strings.Join(sections, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.form != nil {
		return layout.Container{Width: m.width, Height: height}.Render(m.form.View())
	}

	mainW, sideW, showSide := layout.ComputeColumnWidths(m.width)
	list := components.SegmentList(&m.list, mainW, height)
	if !showSide {
		return layout.Container{Width: m.width, Height: height}.Render(list)
	}
	hist := components.HistoryPanel(m.view.History, m.view.HistoryPosition, sideW, height)
	if m.focus == FocusHistory {
		hist = strings.Replace(hist, "History", "History ◂", 1)
	}
	return layout.JoinColumns([]string{list, hist}, []int{mainW, sideW}, height)
}

// Run starts the TUI program and blocks until the user quits.
func Run(ctx context.Context, ed *editor.Editor, opts Options) error {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	stop := ed.Watch(ctx, opts.TickInterval)
	defer stop()
	opts.Watched = true

	p := tea.NewProgram(NewModel(ctx, ed, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
