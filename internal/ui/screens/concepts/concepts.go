// Package concepts is the concept browser: every concept in the graph
// with the learner's confidence, and a detail pane for the selected one.
package concepts

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/ui/components"
	"github.com/cfdlab/foamtutor/internal/ui/layout"
	"github.com/cfdlab/foamtutor/internal/ui/router"
	"github.com/cfdlab/foamtutor/internal/ui/theme"
)

// ExplainRequestMsg asks the session owner for a tailored explanation.
type ExplainRequestMsg struct {
	ID string
}

// ErrBusy rejects an explanation request while another command runs.
var ErrBusy = errors.New("tutor is busy")

// ExplanationMsg carries an explanation back.
type ExplanationMsg struct {
	ID   string
	Text string
	Err  error
}

// Screen lists concepts. Confidence is a snapshot taken when the screen
// opens.
type Screen struct {
	graph      *knowledge.Graph
	level      knowledge.Level
	confidence map[string]float64

	list        components.List
	detail      bool
	explanation map[string]string
	pending     string
}

var _ router.Screen = (*Screen)(nil)

// New lists the graph's concepts in prerequisite order.
func New(g *knowledge.Graph, level knowledge.Level, confidence map[string]float64) *Screen {
	s := &Screen{
		graph:       g,
		level:       level,
		confidence:  confidence,
		explanation: map[string]string{},
	}
	var items []components.ListItem
	for _, id := range g.TopologicalOrder() {
		c := confidence[id]
		note := theme.ConfidenceColor(c).Render(fmt.Sprintf("%3.0f%%", c*100))
		if _, tracked := confidence[id]; !tracked {
			note = theme.Hint.Render("new")
		}
		items = append(items, components.ListItem{ID: id, Label: g.Name(id), Note: note})
	}
	s.list = components.NewList(items)
	return s
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Concepts" }

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.detail {
		return []layout.KeyHint{
			{Key: "e", Description: "Explain for me"},
			{Key: "Enter", Description: "List"},
			{Key: "Esc", Description: "Back to chat"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back to chat"},
	}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ExplanationMsg:
		if msg.ID == s.pending {
			s.pending = ""
		}
		if msg.Text != "" {
			s.explanation[msg.ID] = msg.Text
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			s.detail = !s.detail
			return s, nil
		case "e":
			it, ok := s.list.Current()
			if !ok || !s.detail || s.pending != "" {
				return s, nil
			}
			s.pending = it.ID
			return s, func() tea.Msg { return ExplainRequestMsg{ID: it.ID} }
		}
		if !s.detail {
			s.list = s.list.Update(msg)
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if !s.detail {
		return s.list.View(height)
	}
	it, ok := s.list.Current()
	if !ok {
		return ""
	}
	return s.renderDetail(it.ID, width)
}

func (s *Screen) renderDetail(id string, width int) string {
	c, _ := s.graph.Concept(id)
	wrap := lipgloss.NewStyle().Width(max(width-2, 20))

	var b strings.Builder
	b.WriteString(theme.Title.Render(c.Name) + "  " + theme.Hint.Render(id) + "\n\n")
	b.WriteString(components.ConfidenceBar{Label: "Your confidence", Value: s.confidence[id], Width: min(width, 60)}.View() + "\n\n")
	if c.Description != "" {
		b.WriteString(wrap.Render(c.Description) + "\n\n")
	}
	if len(c.Prerequisites) > 0 {
		names := make([]string, len(c.Prerequisites))
		for i, p := range c.Prerequisites {
			names[i] = s.graph.Name(p)
		}
		b.WriteString(theme.Body.Bold(true).Render("Builds on: ") + strings.Join(names, ", ") + "\n\n")
	}

	text, tailored := s.explanation[id]
	if !tailored {
		text = s.graph.Explanation(id, s.level)
	}
	if s.pending == id {
		b.WriteString(theme.Hint.Render("Preparing an explanation…") + "\n\n")
	}
	if text != "" {
		b.WriteString(wrap.Render(text) + "\n\n")
	}

	if len(c.CommonMisconceptions) > 0 {
		b.WriteString(theme.Notice.Render("Watch out for") + "\n")
		for _, m := range c.CommonMisconceptions {
			b.WriteString(wrap.Render("• "+m) + "\n")
		}
	}
	return b.String()
}
