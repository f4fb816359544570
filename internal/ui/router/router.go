// Package router stacks full-screen views for the chat program.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/cfdlab/foamtutor/internal/ui/layout"
)

// Screen is one full-screen view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, without header and footer.
	View(width, height int) string
	Title() string
	KeyHints() []layout.KeyHint
}

// PushMsg opens a screen on top of the current one.
type PushMsg struct {
	Screen Screen
}

// PopMsg returns to the previous screen.
type PopMsg struct{}

// Push returns a command that opens s.
func Push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushMsg{Screen: s} }
}

// Pop returns a command that closes the active screen.
func Pop() tea.Msg { return PopMsg{} }

// Router is a screen stack that never drops its root.
type Router struct {
	stack []Screen
}

func New(root Screen) *Router {
	return &Router{stack: []Screen{root}}
}

func (r *Router) Active() Screen { return r.stack[len(r.stack)-1] }

func (r *Router) Depth() int { return len(r.stack) }

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushMsg:
		r.stack = append(r.stack, msg.Screen)
		return msg.Screen.Init()
	case PopMsg:
		if len(r.stack) > 1 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil
	}
	updated, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// Broadcast delivers msg to every screen on the stack, root first, so
// screens below the top still see results of their own commands.
func (r *Router) Broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(r.stack))
	for i, s := range r.stack {
		updated, cmd := s.Update(msg)
		r.stack[i] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
