// Package tui renders subscription detail views for the terminal: a static
// snapshot renderer shared with the show command and a Bubble Tea model that
// follows a live session.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorBorder    = lipgloss.Color("238")
	ColorOK        = lipgloss.Color("42")
	ColorWarning   = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
)

// Status icons.
const (
	IconPolling   = "●"
	IconScheduled = "◷"
	IconCurrent   = "▶"
	IconUpcoming  = "»"
	IconVerified  = "✓"
)

// Layout defaults.
const (
	defaultWidth  = 100
	defaultHeight = 30
	borderPadding = 2
)

//nolint:gochecknoglobals // Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader).
			MarginTop(1)

	FocusedSectionStyle = SectionStyle.
				Foreground(ColorHighlight).
				Underline(true)

	LabelStyle   = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle   = lipgloss.NewStyle().Foreground(ColorValue)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	OKStyle      = lipgloss.NewStyle().Foreground(ColorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
