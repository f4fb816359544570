// Package socratic generates guided questions whose style follows the
// learner's confidence in the concept being taught.
package socratic

import (
	"strings"
	"unicode/utf8"

	"github.com/cfdlab/foamtutor/internal/knowledge"
)

// ConceptSource resolves concept ids to display names and catalog entries.
// *knowledge.Graph satisfies it.
type ConceptSource interface {
	Name(id string) string
	Concept(id string) (knowledge.Concept, bool)
}

// ConfidenceSource reports a learner's confidence in a concept.
// *learner.Model satisfies it.
type ConfidenceSource interface {
	Confidence(conceptID string) float64
}

// Question is one generated question. It is built fresh per turn.
type Question struct {
	Strategy      Strategy
	TargetConcept string
	ConceptName   string
	Text          string
	CognitiveLoad int

	// Success decides whether a response shows the intended understanding.
	// Nil means no predicate; ValidateEffectiveness then uses its fallbacks.
	Success func(response string) bool
}

// Context is the conversational state available when rendering a template.
type Context struct {
	// Summary is a digest of recent turns, substituted for {context}.
	Summary string
	// LastUtterance is the learner's most recent message; it is played back
	// by Confirm templates.
	LastUtterance string
	// Parameter names a flow quantity for {parameter} and {condition}.
	Parameter string
	// Application is the learner's domain, e.g. "automotive".
	Application string
}

// Engine renders questions from templates.
type Engine struct {
	concepts  ConceptSource
	picker    Picker
	bands     Bands
	templates Templates
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker sets the template selection source.
func WithPicker(p Picker) Option {
	return func(e *Engine) {
		if p != nil {
			e.picker = p
		}
	}
}

// WithBands sets the confidence bands used for strategy selection.
func WithBands(b Bands) Option {
	return func(e *Engine) { e.bands = b }
}

// WithTemplates overrides templates per strategy. Strategies missing from t
// keep the defaults.
func WithTemplates(t Templates) Option {
	return func(e *Engine) { e.templates = t.merged() }
}

// New builds an Engine. concepts may be nil, in which case raw ids are
// used as display names.
func New(concepts ConceptSource, opts ...Option) *Engine {
	e := &Engine{
		concepts:  concepts,
		picker:    &RoundRobin{},
		bands:     DefaultBands(),
		templates: DefaultTemplates(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Bands returns the engine's confidence bands.
func (e *Engine) Bands() Bands { return e.bands }

// SelectOptimalStrategy picks a strategy from the learner's confidence in
// conceptID.
func (e *Engine) SelectOptimalStrategy(conceptID string, m ConfidenceSource) Strategy {
	if m == nil {
		return Clarify
	}
	return SelectStrategy(m.Confidence(conceptID), e.bands)
}

func (e *Engine) conceptName(id string) string {
	if e.concepts == nil {
		return id
	}
	return e.concepts.Name(id)
}

// Generate renders a question of strategy s about conceptID. Recognized
// placeholders are {concept}, {parameter}, {condition}, {context},
// {understanding}, {summary}, {interpretation}, {belief}, {problem} and
// {application}. Unknown strategies fall back to Clarify.
func (e *Engine) Generate(s Strategy, conceptID string, ctx Context) Question {
	list := e.templates[s]
	if len(list) == 0 {
		s = Clarify
		list = e.templates[s]
	}
	name := e.conceptName(conceptID)
	tmpl := list[e.picker.Pick(s, len(list))%len(list)]

	return Question{
		Strategy:      s,
		TargetConcept: conceptID,
		ConceptName:   name,
		Text:          render(tmpl, name, ctx),
		CognitiveLoad: s.CognitiveLoad(),
		Success:       DefaultSuccess(conceptID, name),
	}
}

func render(tmpl, name string, ctx Context) string {
	parameter := strings.TrimSpace(ctx.Parameter)
	if parameter == "" {
		parameter = name
	}
	playback := playbackOf(ctx.LastUtterance)
	if playback == "" {
		playback = name + " matters for your case"
	}
	problem, application := "your current flow problem", "a CFD study"
	if app := strings.TrimSpace(ctx.Application); app != "" {
		problem = withArticle(app + " flow problem")
		application = withArticle(app + " system")
	}
	summary := strings.TrimSpace(ctx.Summary)

	return strings.NewReplacer(
		"{concept}", name,
		"{parameter}", parameter,
		"{condition}", parameter,
		"{context}", summary,
		"{understanding}", playback,
		"{summary}", playback,
		"{interpretation}", playback,
		"{belief}", playback,
		"{problem}", problem,
		"{application}", application,
	).Replace(tmpl)
}

func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("aeiouAEIOU", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

const maxPlayback = 160

// playbackOf trims an utterance to its first sentence, without the closing
// punctuation, so it can be embedded in a question.
func playbackOf(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || (strings.IndexByte(".!?", s[i]) >= 0 && (i+1 == len(s) || s[i+1] == ' ')) {
			s = s[:i]
			break
		}
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxPlayback {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:maxPlayback])) + "..."
	}
	return s
}

// minSuccessLength is the response length, in bytes, a default predicate
// requires before a concept mention counts.
const minSuccessLength = 20

// DefaultSuccess holds when a response mentions the concept, by id or
// display name, and is longer than 20 characters.
func DefaultSuccess(conceptID, name string) func(string) bool {
	return func(response string) bool {
		return len(response) > minSuccessLength && mentions(response, conceptID, name)
	}
}

func mentions(response, conceptID, name string) bool {
	r := strings.ToLower(response)
	if conceptID != "" && strings.Contains(r, strings.ToLower(conceptID)) {
		return true
	}
	return name != "" && strings.Contains(r, strings.ToLower(name))
}

// ValidateEffectiveness judges whether a response engaged with a question:
// the success predicate wins if it holds; otherwise very short responses
// fail and a mention of the concept name passes.
func ValidateEffectiveness(q Question, response string) bool {
	if q.Success != nil && q.Success(response) {
		return true
	}
	if len(response) < 10 {
		return false
	}
	return mentions(response, q.TargetConcept, q.ConceptName)
}
