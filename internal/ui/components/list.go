package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfdlab/foamtutor/internal/ui/theme"
)

// ListItem is one selectable row.
type ListItem struct {
	ID    string
	Label string
	Note  string
}

// List is a vertical selectable list that scrolls to keep the cursor in
// view.
type List struct {
	Items    []ListItem
	Selected int
}

func NewList(items []ListItem) List {
	return List{Items: items}
}

// Update moves the cursor on up/down and j/k.
func (l List) Update(msg tea.Msg) List {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok || len(l.Items) == 0 {
		return l
	}
	switch k.String() {
	case "up", "k":
		l.Selected = max(l.Selected-1, 0)
	case "down", "j":
		l.Selected = min(l.Selected+1, len(l.Items)-1)
	case "home", "g":
		l.Selected = 0
	case "end", "G":
		l.Selected = len(l.Items) - 1
	}
	return l
}

// Current returns the selected item.
func (l List) Current() (ListItem, bool) {
	if l.Selected < 0 || l.Selected >= len(l.Items) {
		return ListItem{}, false
	}
	return l.Items[l.Selected], true
}

// View renders at most height rows.
func (l List) View(height int) string {
	if height <= 0 {
		height = len(l.Items)
	}
	start := 0
	if l.Selected >= height {
		start = l.Selected - height + 1
	}
	end := min(start+height, len(l.Items))

	var b strings.Builder
	for i := start; i < end; i++ {
		it := l.Items[i]
		line := "  " + it.Label
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == l.Selected {
			line = "▸ " + it.Label
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		if it.Note != "" {
			b.WriteString("  " + it.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}
