// Package narrate phrases concept explanations with a language model. It
// sits outside the dialogue turn: a failed or missing model always falls
// back to the static explanation.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/llm"
)

// ErrUnknownConcept is returned by InputFor for ids missing from the graph.
var ErrUnknownConcept = errors.New("unknown concept")

// ExplainInput is everything the model sees about one explanation.
type ExplainInput struct {
	Concept    knowledge.Concept
	Level      knowledge.Level
	Interest   string
	Confidence float64

	RecentTurns []string

	// Reference is the static personalized explanation. It grounds the
	// prompt and is returned when the model cannot be used.
	Reference string
}

// Narrator generates explanations.
type Narrator struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

type Option func(*Narrator)

func WithLogger(l *zap.Logger) Option {
	return func(n *Narrator) {
		if l != nil {
			n.log = l
		}
	}
}

// New returns a narrator. A nil provider is allowed and yields static
// explanations only.
func New(provider llm.Provider, cfg Config, opts ...Option) *Narrator {
	n := &Narrator{provider: provider, cfg: cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Enabled reports whether a model is attached.
func (n *Narrator) Enabled() bool { return n.provider != nil }

type explanationOutput struct {
	Explanation   string `json:"explanation"`
	Example       string `json:"example"`
	CheckQuestion string `json:"check_question"`
}

// Explain returns a tailored explanation. The returned text is always
// usable: on error it is in.Reference and the error says why the model
// was not used.
func (n *Narrator) Explain(ctx context.Context, in ExplainInput) (string, error) {
	if n.provider == nil {
		return in.Reference, nil
	}
	ctx = llm.WithPurpose(ctx, "explain")

	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      ExplanationSchema,
		MaxTokens:   n.cfg.MaxTokens,
		Temperature: n.cfg.Temperature,
	}
	resp, err := n.provider.Generate(ctx, req)
	if err != nil {
		n.log.Warn("explanation fell back to static text", zap.String("concept", in.Concept.ID), zap.Error(err))
		return in.Reference, fmt.Errorf("explain %s: %w", in.Concept.ID, err)
	}

	var out explanationOutput
	if err := resp.Decode(&out); err != nil {
		return in.Reference, fmt.Errorf("explain %s: %w", in.Concept.ID, err)
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return in.Reference, fmt.Errorf("explain %s: empty explanation", in.Concept.ID)
	}

	parts := []string{strings.TrimSpace(out.Explanation)}
	for _, s := range []string{out.Example, out.CheckQuestion} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// InputFor builds the input for concept id from a live session and marks
// the concept explained.
func (n *Narrator) InputFor(o *dialogue.Orchestrator, id string) (ExplainInput, error) {
	c, ok := o.Graph().Concept(id)
	if !ok {
		return ExplainInput{}, fmt.Errorf("%w: %q", ErrUnknownConcept, id)
	}
	m := o.Model()
	in := ExplainInput{
		Concept:    c,
		Level:      m.ExperienceLevel(),
		Confidence: m.Confidence(id),
		Reference:  o.Explain(id),
	}
	if interests := m.Interests(); len(interests) > 0 {
		in.Interest = interests[0]
	}
	history := o.History()
	if k := n.cfg.RecentTurns; k > 0 && len(history) > k {
		history = history[len(history)-k:]
	}
	in.RecentTurns = history
	return in, nil
}
