// Package styles provides colour themes and styling for the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the header line.
	Title lipgloss.Style

	// UserLabel marks the user's turns in the transcript.
	UserLabel lipgloss.Style

	// AssistantLabel marks the assistant's turns in the transcript.
	AssistantLabel lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Source style for provenance lines under an answer.
	Source lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// InputField style for the question input area.
	InputField lipgloss.Style

	// Help style for the key hints line.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),
		AssistantLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Source: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles built from the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme behind the styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
