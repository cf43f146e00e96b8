package ui

import "github.com/charmbracelet/lipgloss"

// Shared palette and styles for the terminal UI
var (
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorRed    = lipgloss.Color("196")
	ColorOrange = lipgloss.Color("214")
	ColorGray   = lipgloss.Color("241")

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorOrange)
	SubtleStyle  = lipgloss.NewStyle().Foreground(ColorGray)
	HelpStyle    = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)
)

// Common key names
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)
