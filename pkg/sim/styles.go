package sim

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	vrcGreen    = lipgloss.Color("#008417")
	errorRed    = lipgloss.Color("#EF4444")
	optionInk   = lipgloss.Color("#111827")
	optionPaper = lipgloss.Color("#FFFFFF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	pageStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	controlStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Background(vrcGreen).
			Bold(true)

	controlErrorStyle = lipgloss.NewStyle().
				Foreground(brightWhite).
				Background(errorRed).
				Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(optionInk).
			Background(optionPaper)

	tooltipStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Background(optionInk)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	openedStyle = lipgloss.NewStyle().
			Foreground(vrcGreen)
)
