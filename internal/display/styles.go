package display

import "github.com/charmbracelet/lipgloss"

// ── Styles (soft palette) ────────────────────────────────────────

var (
	// bannerStyle is muted slate for the startup banner.
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bae6fd")).
				Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	// Clock digits change colour as the exam runs down.
	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	clockLateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fdba74"))

	clockDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	toggleOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	toggleOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))
)
