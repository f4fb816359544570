// Package app is the root Bubble Tea model for `foamtutor chat`.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/narrate"
	"github.com/cfdlab/foamtutor/internal/ui/layout"
	"github.com/cfdlab/foamtutor/internal/ui/router"
	"github.com/cfdlab/foamtutor/internal/ui/screens/chat"
)

// Model frames the active screen with a header and footer.
type Model struct {
	router *router.Router
	chat   *chat.Screen
	width  int
	height int
}

// New builds the root model around one tutoring session.
func New(ctx context.Context, o *dialogue.Orchestrator, n *narrate.Narrator) Model {
	c := chat.New(ctx, o, n)
	return Model{router: router.New(c), chat: c}
}

func (m Model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
		return m, m.router.Update(msg)

	case router.PushMsg, router.PopMsg:
		return m, m.router.Update(msg)
	}

	return m, m.router.Broadcast(msg)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.chat.Progress(), m.width)
	hints := active.KeyHints()
	if m.router.Depth() == 1 && m.chat.Ready() {
		hints = append(hints, layout.KeyHint{Key: "✓", Description: "ready for case setup"})
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	v.SetContent(layout.RenderFrame(header, active.View(m.width, contentHeight), footer, m.width, m.height))
	return v
}

// Run starts the program and blocks until the learner quits.
func Run(ctx context.Context, o *dialogue.Orchestrator, n *narrate.Narrator) error {
	p := tea.NewProgram(New(ctx, o, n), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}
