package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// Prompt is a single-line learner input.
type Prompt struct {
	Model textinput.Model
}

// NewPrompt returns a focused input.
func NewPrompt(placeholder string, limit int) Prompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return Prompt{Model: ti}
}

func (p Prompt) Init() tea.Cmd {
	return p.Model.Focus()
}

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.Model, cmd = p.Model.Update(msg)
	return p, cmd
}

func (p Prompt) View() string {
	return p.Model.View()
}

// SetWidth fits the input to the screen.
func (p *Prompt) SetWidth(w int) {
	p.Model.SetWidth(max(w-4, 10))
}

// Take returns the trimmed text and clears the input.
func (p *Prompt) Take() string {
	v := strings.TrimSpace(p.Model.Value())
	p.Model.Reset()
	return v
}
