package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/user/mediacms-timeline/tui/components"
)

// keyMap holds every binding of the editor screen.
type keyMap struct {
	PlayPause    key.Binding
	PlaySegments key.Binding
	SeekBack     key.Binding
	SeekForward  key.Binding
	StepDown     key.Binding
	StepUp       key.Binding
	Mute         key.Binding

	TrimStart key.Binding
	TrimEnd   key.Binding
	Split     key.Binding
	Delete    key.Binding
	Edit      key.Binding
	Reset     key.Binding
	Undo      key.Binding
	Redo      key.Binding

	Up    key.Binding
	Down  key.Binding
	Jump  key.Binding
	Focus key.Binding

	Save   key.Binding
	Export key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PlayPause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause inside trim")),
		PlaySegments: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play segments in order")),
		SeekBack:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "seek back")),
		SeekForward:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "seek forward")),
		StepDown:     key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "smaller seek step")),
		StepUp:       key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "larger seek step")),
		Mute:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mute")),

		TrimStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "trim start at playhead")),
		TrimEnd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "trim end at playhead")),
		Split:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "split at playhead")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete segment")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit segment")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset timeline")),
		Undo:      key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:      key.NewBinding(key.WithKeys("ctrl+r", "U"), key.WithHelp("ctrl+r", "redo")),

		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous segment")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next segment")),
		Jump:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "seek to segment")),
		Focus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "segments/history")),

		Save:   key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "save")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export segments")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap for the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Split, k.Delete, k.Undo, k.Redo, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	groups := k.groups()
	out := make([][]key.Binding, len(groups))
	for i, g := range groups {
		out[i] = g.Bindings
	}
	return out
}

func (k keyMap) groups() []components.HelpGroup {
	return []components.HelpGroup{
		{Title: "Playback", Bindings: []key.Binding{k.PlayPause, k.PlaySegments, k.SeekBack, k.SeekForward, k.StepDown, k.StepUp, k.Mute}},
		{Title: "Edit", Bindings: []key.Binding{k.TrimStart, k.TrimEnd, k.Split, k.Delete, k.Edit, k.Reset, k.Undo, k.Redo}},
		{Title: "Navigation", Bindings: []key.Binding{k.Up, k.Down, k.Jump, k.Focus}},
		{Title: "File", Bindings: []key.Binding{k.Save, k.Export, k.Help, k.Quit}},
	}
}
