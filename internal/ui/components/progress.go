package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/cfdlab/foamtutor/internal/ui/theme"
)

// ConfidenceBar renders a labelled 0..1 value as a bar.
type ConfidenceBar struct {
	Label string
	Value float64
	Width int
}

func (b ConfidenceBar) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Width(24).Render(b.Label)
	barWidth := max(b.Width-lipgloss.Width(label)-6, 4)

	filled := min(max(int(float64(barWidth)*b.Value), 0), barWidth)
	bar := theme.ConfidenceColor(b.Value).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled))

	return label + bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3.0f%%", b.Value*100))
}
