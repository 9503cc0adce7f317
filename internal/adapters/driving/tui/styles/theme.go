// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the chat and document views draw with.
// Each colour adapts to light and dark terminal backgrounds.
type Theme struct {
	Accent   lipgloss.AdaptiveColor // titles, selection
	Question lipgloss.AdaptiveColor // the user's side of the transcript
	Citation lipgloss.AdaptiveColor
	Followup lipgloss.AdaptiveColor
	Text     lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Success  lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Border   lipgloss.AdaptiveColor
	Bar      lipgloss.AdaptiveColor // status bar background
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Question: lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"},
		Citation: lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C4B5FD"},
		Followup: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
		Text:     lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Muted:    lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Success:  lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Error:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Border:   lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:      lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles holds the lipgloss styles built from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style

	// InputField frames the question prompt.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Transcript styles.
	Question lipgloss.Style
	Citation lipgloss.Style
	Followup lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Question).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Bar).Background(theme.Accent).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Help:     fg(theme.Muted),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Question:  fg(theme.Question).Bold(true),
		Citation:  fg(theme.Citation).Underline(true),
		Followup:  fg(theme.Followup).Italic(true),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
