// Package styles provides the color palette and style definitions for
// buildmedic's terminal output.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	White  = lipgloss.Color("#E2E2E2")
	Gray   = lipgloss.Color("#888888")
	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)

var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Label is used for field names in detail views.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// ErrorText is for error messages and failed outcomes.
	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// SuccessText is for success messages and applied grants.
	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// WarningText is for warnings and skipped outcomes.
	WarningText = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)
)
