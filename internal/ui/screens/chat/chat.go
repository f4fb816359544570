// Package chat is the main tutoring screen: a transcript, a prompt and
// slash commands for status, parameters and explanations.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/extract"
	"github.com/cfdlab/foamtutor/internal/narrate"
	"github.com/cfdlab/foamtutor/internal/ui/components"
	"github.com/cfdlab/foamtutor/internal/ui/layout"
	"github.com/cfdlab/foamtutor/internal/ui/router"
	"github.com/cfdlab/foamtutor/internal/ui/screens/concepts"
	"github.com/cfdlab/foamtutor/internal/ui/theme"
)

type speaker int

const (
	speakerTutor speaker = iota
	speakerLearner
	speakerSystem
)

type line struct {
	who  speaker
	text string
}

const helpText = `/status          progress, gaps and suggested questions
/params [case]   gathered parameters and case readiness
/explain <id>    explain a concept for you
/path <id>       what to learn before a concept
/level <level>   beginner, intermediate or expert
/concepts        browse concepts (or press Tab)`

// Screen owns one orchestrator. The orchestrator is only used inside
// commands, one at a time, guarded by busy.
type Screen struct {
	ctx      context.Context
	orch     *dialogue.Orchestrator
	narrator *narrate.Narrator

	lines []line
	input components.Prompt
	busy  bool
	snap  snapshot
}

var _ router.Screen = (*Screen)(nil)

// New returns a chat screen over o. narrator may be nil.
func New(ctx context.Context, o *dialogue.Orchestrator, n *narrate.Narrator) *Screen {
	if n == nil {
		n = narrate.New(nil, narrate.DefaultConfig())
	}
	return &Screen{
		ctx:      ctx,
		orch:     o,
		narrator: n,
		input:    components.NewPrompt("Ask a question or describe your flow…", 500),
		busy:     true,
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.open())
}

func (s *Screen) Title() string {
	if s.snap.Topic != "" {
		return "Chat · " + s.snap.Topic
	}
	return "Chat"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Concepts"},
		{Key: "/help", Description: "Commands"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Progress is the learner's overall confidence as of the last turn.
func (s *Screen) Progress() float64 { return s.snap.Progress }

// Ready reports whether the last turn found the learner ready for case
// setup.
func (s *Screen) Ready() bool { return s.snap.Ready }

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		s.busy = false
		s.snap = msg.Snap
		s.say(speakerTutor, msg.Text)
		return s, nil

	case replyMsg:
		s.busy = false
		s.snap = msg.Snap
		if ps := extract.Flatten(msg.Result.Parameters); len(ps) > 0 {
			s.say(speakerSystem, "Noted: "+strings.Join(ps, "; "))
		}
		s.say(speakerTutor, msg.Result.Reply)
		return s, nil

	case noticeMsg:
		s.busy = false
		s.snap = msg.Snap
		s.say(speakerSystem, msg.Text)
		return s, nil

	case concepts.ExplainRequestMsg:
		if s.busy {
			return s, func() tea.Msg {
				return concepts.ExplanationMsg{ID: msg.ID, Err: concepts.ErrBusy}
			}
		}
		s.busy = true
		return s, s.explainFor(msg.ID)

	case concepts.ExplanationMsg:
		if errors.Is(msg.Err, concepts.ErrBusy) {
			return s, nil
		}
		s.busy = false
		if msg.Text != "" {
			s.say(speakerTutor, msg.Text)
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return s.submit()
		case "tab":
			if s.busy {
				return s, nil
			}
			return s, router.Push(concepts.New(s.orch.Graph(), s.orch.Model().ExperienceLevel(), s.snap.Confidence))
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) say(who speaker, text string) {
	s.lines = append(s.lines, line{who: who, text: text})
}

func (s *Screen) submit() (router.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	text := s.input.Take()
	if text == "" {
		return s, nil
	}
	if strings.HasPrefix(text, "/") {
		return s.command(text)
	}
	s.say(speakerLearner, text)
	s.busy = true
	o, ctx := s.orch, s.ctx
	return s, func() tea.Msg {
		res := o.Turn(ctx, text)
		return replyMsg{Result: res, Snap: snap(o)}
	}
}

func (s *Screen) command(text string) (router.Screen, tea.Cmd) {
	fields := strings.Fields(text)
	name, args := fields[0], fields[1:]
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch name {
	case "/help":
		s.say(speakerSystem, helpText)
		return s, nil
	case "/concepts":
		return s, router.Push(concepts.New(s.orch.Graph(), s.orch.Model().ExperienceLevel(), s.snap.Confidence))
	case "/explain":
		if arg == "" {
			s.say(speakerSystem, "usage: /explain <concept id>")
			return s, nil
		}
		s.busy = true
		return s, s.explain(arg)
	}

	run, ok := map[string]func(*dialogue.Orchestrator) string{
		"/status": status,
		"/params": func(o *dialogue.Orchestrator) string {
			return o.CaseReport(arg).Markdown(o.ExtractedParameters())
		},
		"/path": func(o *dialogue.Orchestrator) string {
			if !o.Graph().Has(arg) {
				return fmt.Sprintf("unknown concept %q", arg)
			}
			path := o.LearningPath(arg)
			if len(path) == 0 {
				return "Nothing left to learn before " + arg + "."
			}
			return "Learn in order: " + strings.Join(path, " → ")
		},
		"/level": func(o *dialogue.Orchestrator) string {
			if !o.SetUserExperienceLevel(arg) {
				return fmt.Sprintf("unknown level %q", arg)
			}
			return "Level set to " + arg + "."
		},
	}[name]
	if !ok {
		s.say(speakerSystem, fmt.Sprintf("unknown command %s; try /help", name))
		return s, nil
	}

	s.busy = true
	o := s.orch
	return s, func() tea.Msg { return noticeMsg{Text: run(o), Snap: snap(o)} }
}

func (s *Screen) explain(id string) tea.Cmd {
	o, n, ctx := s.orch, s.narrator, s.ctx
	return func() tea.Msg {
		in, err := n.InputFor(o, id)
		if err != nil {
			return noticeMsg{Text: err.Error(), Snap: snap(o), Err: err}
		}
		text, err := n.Explain(ctx, in)
		if qs := o.PracticeQuestions(id); len(qs) > 0 {
			text += "\nTry answering:"
			for _, q := range qs {
				text += "\n  • " + q
			}
		}
		return noticeMsg{Text: text, Snap: snap(o), Err: err}
	}
}

func (s *Screen) explainFor(id string) tea.Cmd {
	o, n, ctx := s.orch, s.narrator, s.ctx
	return func() tea.Msg {
		in, err := n.InputFor(o, id)
		if err != nil {
			return concepts.ExplanationMsg{ID: id, Err: err}
		}
		text, err := n.Explain(ctx, in)
		return concepts.ExplanationMsg{ID: id, Text: text, Err: err}
	}
}

func status(o *dialogue.Orchestrator) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Progress %.0f%%, level %s. %s.", o.OverallLearningProgress()*100,
		o.Model().ExperienceLevel(), o.NextLearningObjective())
	if o.IsUserReadyForCaseGeneration() {
		b.WriteString(" You are ready to set up a case.")
	}
	if qs := o.SuggestedQuestions(); len(qs) > 0 {
		b.WriteString("\nYou could ask:")
		for _, q := range qs {
			b.WriteString("\n  • " + q)
		}
	}
	return b.String()
}

func (s *Screen) open() tea.Cmd {
	o, ctx := s.orch, s.ctx
	return func() tea.Msg {
		text := o.Open(ctx)
		return openedMsg{Text: text, Snap: snap(o)}
	}
}

func snap(o *dialogue.Orchestrator) snapshot {
	m := o.Model()
	conf := map[string]float64{}
	for _, c := range o.Graph().Concepts() {
		if _, ok := m.Record(c.ID); ok {
			conf[c.ID] = m.Confidence(c.ID)
		}
	}
	return snapshot{
		Level:      string(m.ExperienceLevel()),
		Progress:   o.OverallLearningProgress(),
		Topic:      o.CurrentTopic(),
		Ready:      o.IsUserReadyForCaseGeneration(),
		Confidence: conf,
	}
}

func (s *Screen) View(width, height int) string {
	s.input.SetWidth(width)
	prompt := s.input.View()
	if s.busy {
		prompt = theme.Hint.Render("thinking…")
	}

	wrap := lipgloss.NewStyle().Width(max(width-4, 20))
	var rendered []string
	for _, l := range s.lines {
		var label string
		switch l.who {
		case speakerTutor:
			label = theme.Tutor.Render("Tutor")
		case speakerLearner:
			label = theme.Learner.Render("You")
		default:
			label = theme.Hint.Render("·")
		}
		rendered = append(rendered, label, wrap.Render(l.text), "")
	}

	transcript := strings.Split(strings.Join(rendered, "\n"), "\n")
	room := max(height-2, 1)
	if len(transcript) > room {
		transcript = transcript[len(transcript)-room:]
	}
	return strings.Join(transcript, "\n") + "\n" + prompt
}
