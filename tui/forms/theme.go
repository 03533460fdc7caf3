package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/mediacms-timeline/tui/styles"
)

// Theme returns the huh theme used by every editor dialog.
func Theme() *huh.Theme {
	t := huh.ThemeBase()
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Amber).
		PaddingLeft(1)
	t.Focused.Title = fg(styles.Pink).Bold(true)
	t.Focused.NoteTitle = fg(styles.Cyan).Bold(true)
	t.Focused.Description = fg(styles.Lavender)
	t.Focused.ErrorIndicator = fg(styles.Red).Bold(true)
	t.Focused.ErrorMessage = fg(styles.Red)
	t.Focused.SelectSelector = fg(styles.Cyan).SetString("▸ ")
	t.Focused.Option = fg(styles.LightLavender)
	t.Focused.NextIndicator = fg(styles.Lavender)
	t.Focused.PrevIndicator = fg(styles.Lavender)
	t.Focused.SelectedOption = fg(styles.Cyan)
	t.Focused.UnselectedOption = fg(styles.Lavender)
	t.Focused.TextInput.Cursor = fg(styles.Amber)
	t.Focused.TextInput.Placeholder = fg(styles.Purple)
	t.Focused.TextInput.Prompt = fg(styles.Cyan)
	t.Focused.TextInput.Text = fg(styles.LightLavender)
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Background(styles.BrightPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Background(styles.Purple).
		Foreground(styles.Lavender).
		Padding(0, 1)
	t.Focused.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(0, 1)
	t.Focused.Next = t.Focused.FocusedButton

	// Blurred fields share the focused layout with muted colours.
	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = fg(styles.Lavender)
	t.Blurred.NoteTitle = fg(styles.Lavender)
	t.Blurred.Description = fg(styles.Purple)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")
	t.Blurred.TextInput.Cursor = fg(styles.Purple)
	t.Blurred.TextInput.Prompt = fg(styles.Purple)
	t.Blurred.TextInput.Text = fg(styles.Lavender)
	t.Blurred.FocusedButton = t.Focused.BlurredButton
	t.Blurred.BlurredButton = lipgloss.NewStyle().
		Background(styles.DeepPurple).
		Foreground(styles.Purple).
		Padding(0, 1)
	t.Blurred.Card = t.Focused.Card.BorderForeground(styles.DeepPurple)
	t.Blurred.Next = t.Blurred.FocusedButton

	return t
}
