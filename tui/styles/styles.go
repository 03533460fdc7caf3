// Package styles provides Lipgloss styles for the timeline editor using the Ciapre colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - Ciapre (warm, earthy) theme from Gogh
const (
	// DeepPurple is the main background colour
	DeepPurple = lipgloss.Color("#191C27")
	// DarkPurple is the status bar and panel background
	DarkPurple = lipgloss.Color("#181818")
	// Purple is the border/dim accent colour
	Purple = lipgloss.Color("#5C4F4B")
	// BrightPurple is used for highlights and focus states
	BrightPurple = lipgloss.Color("#724D7C")
	// Lavender is a secondary text colour
	Lavender = lipgloss.Color("#AEA47A")
	// LightLavender is the primary text colour
	LightLavender = lipgloss.Color("#F3DBB2")
	// Pink marks headers and the playhead
	Pink = lipgloss.Color("#D33061")
	// Cyan marks split points and interactive elements
	Cyan = lipgloss.Color("#3097C6")
	// Amber marks the trim handles
	Amber = lipgloss.Color("#CC8B3F")
	// Red is used for warnings, errors and the unsaved marker
	Red = lipgloss.Color("#AC3835")
	// Green is used for success messages and the segment being played
	Green = lipgloss.Color("#A6A75D")
)

// SegmentBand alternates between these so neighbouring segments stay distinguishable.
var SegmentBand = []lipgloss.Color{BrightPurple, Amber}

// Border is the style for bordered panels
var Border = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Purple)

// Highlight is the style for the selected row
var Highlight = lipgloss.NewStyle().
	Background(BrightPurple).
	Foreground(LightLavender).
	Bold(true)

// PrimaryText is the style for primary text content
var PrimaryText = lipgloss.NewStyle().
	Foreground(LightLavender)

// SecondaryText is the style for less prominent text
var SecondaryText = lipgloss.NewStyle().
	Foreground(Lavender)

// DimText is used for empty states and trimmed-away regions
var DimText = lipgloss.NewStyle().
	Foreground(Purple).
	Italic(true)

// Header is the style for box titles
var Header = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// Warning is the style for warning messages
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is the style for success messages
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)
