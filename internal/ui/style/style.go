// Package style holds the colours, icons and lipgloss styles shared by the
// logger and the command output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#0EA5A4")
	Muted  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
	Circle  = "○"
)

// Text styles for listings.
var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Name    = lipgloss.NewStyle().Bold(true)
	Version = lipgloss.NewStyle().Foreground(Muted)
	Path    = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	Badge   = lipgloss.NewStyle().Foreground(Yellow)
	Success = lipgloss.NewStyle().Foreground(Green)
)
