package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorOverlay1)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	enrolledStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	statusBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	footerStyle    = lipgloss.NewStyle().Foreground(colorSubtext0).Background(colorMantle).Padding(0, 2)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	alertStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorWarning).Padding(0, 1)
	searchStyle    = lipgloss.NewStyle().Foreground(colorInfo)
)
