package styles

import "github.com/charmbracelet/lipgloss"

// Monokai Pro color palette
const (
	// Base colors
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	// Accent colors
	Red     = "#FF6188" // Errors
	Orange  = "#FC9867" // Warnings, fields
	Yellow  = "#FFD866" // Targets
	Green   = "#A9DC76" // Success, supertags
	Cyan    = "#78DCE8" // Info
	Blue    = "#AB9DF2" // URLs
	Magenta = "#FF6188" // Titles

	// UI colors
	Comment = "#727072" // Dim text, help
	Border  = "#5B595C" // Borders, separators
)

// Common styles
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Magenta))
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Magenta))
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	LabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment)).Width(11)

	// One style per extracted kind
	TargetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	URLStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Blue)).Underline(true)
	SupertagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	FieldStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	NameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Foreground))

	PreviewStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Border)).
			Padding(0, 1)
)
