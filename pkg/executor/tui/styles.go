package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all progress view colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // Soft pastel salmon pink - primary accent / failures
	mintGreen   = lipgloss.Color("#A8E6CF") // Soft mint green - success states
	sandYellow  = lipgloss.Color("#FDE2A7") // Pale sand - skipped / paused states
	mutedGray   = lipgloss.Color("#6B7280") // Muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Bright white - primary text
)

// Common Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	logStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	timeStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	failedStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	pausedStyle = lipgloss.NewStyle().
			Foreground(sandYellow)

	currentStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
