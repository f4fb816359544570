package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: deep-water blues with a warm accent for the tutor.
var (
	Primary   = lipgloss.Color("#38BDF8") // Sky
	Secondary = lipgloss.Color("#2DD4BF") // Teal
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#4ADE80")
	Warning   = lipgloss.Color("#FB923C")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#0C1A2B")
	Border    = lipgloss.Color("#1E3A5F")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Tutor = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Learner = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Notice = lipgloss.NewStyle().
		Foreground(Warning)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// ConfidenceColor grades a confidence value for concept listings.
func ConfidenceColor(c float64) lipgloss.Style {
	switch {
	case c >= 0.7:
		return lipgloss.NewStyle().Foreground(Success)
	case c >= 0.4:
		return lipgloss.NewStyle().Foreground(Accent)
	case c > 0:
		return lipgloss.NewStyle().Foreground(Error)
	}
	return lipgloss.NewStyle().Foreground(TextDim)
}
