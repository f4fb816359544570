package narrate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/llm"
)

func reynoldsInput(t *testing.T) ExplainInput {
	t.Helper()
	c, ok := knowledge.DefaultGraph().Concept(knowledge.ConceptReynoldsNumber)
	require.True(t, ok)
	return ExplainInput{
		Concept:    c,
		Level:      knowledge.LevelBeginner,
		Interest:   "marine",
		Confidence: 0.25,
		Reference:  "static reynolds text",
	}
}

func TestExplain_Model(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"explanation": "Re compares inertia with viscous forces.",
			"example": "A hull at 5 m/s has Re near 10^7.",
			"check_question": "What happens to Re if the ship doubles its speed?"
		}`),
	})
	n := New(mock, DefaultConfig())

	got, err := n.Explain(t.Context(), reynoldsInput(t))
	require.NoError(t, err)
	assert.Equal(t, "Re compares inertia with viscous forces.\n\n"+
		"A hull at 5 m/s has Re near 10^7.\n\n"+
		"What happens to Re if the ship doubles its speed?", got)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	req := calls[0]
	assert.Equal(t, "concept-explanation", req.Schema.Name)
	assert.Equal(t, 600, req.MaxTokens)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Learner level: beginner")
	assert.Contains(t, msg, "Application interest: marine")
	assert.Contains(t, msg, "Learner confidence on this concept: 25%")
	assert.Contains(t, msg, "static reynolds text")
	assert.Contains(t, msg, "Avoid equations")
}

func TestExplain_NoProvider(t *testing.T) {
	n := New(nil, DefaultConfig())
	assert.False(t, n.Enabled())

	got, err := n.Explain(t.Context(), reynoldsInput(t))
	require.NoError(t, err)
	assert.Equal(t, "static reynolds text", got)
}

func TestExplain_FallsBack(t *testing.T) {
	tests := []struct {
		name   string
		script llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}},
		{"schema violation", llm.MockText(map[string]string{"text": "wrong"})},
		{"blank explanation", llm.MockText(map[string]string{"explanation": "  ", "example": "", "check_question": ""})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(llm.NewMockProvider(tt.script), DefaultConfig())
			got, err := n.Explain(t.Context(), reynoldsInput(t))
			assert.Error(t, err)
			assert.Equal(t, "static reynolds text", got)
		})
	}
}

func TestInputFor(t *testing.T) {
	o := dialogue.New(knowledge.DefaultGraph())
	o.SetUserExperienceLevel("expert")
	for _, text := range []string{"hello", "flow around a ship hull", "what about Reynolds number?", "ok", "thanks"} {
		o.ProcessUserInput(text)
	}

	cfg := DefaultConfig()
	cfg.RecentTurns = 4
	n := New(nil, cfg)

	in, err := n.InputFor(o, knowledge.ConceptReynoldsNumber)
	require.NoError(t, err)
	assert.Equal(t, knowledge.LevelExpert, in.Level)
	assert.Len(t, in.RecentTurns, 4)
	assert.True(t, strings.HasPrefix(in.Reference, "Based on your expert level"))

	rec, ok := o.Model().Record(knowledge.ConceptReynoldsNumber)
	require.True(t, ok)
	assert.Equal(t, 1, rec.TimesExplained)

	_, err = n.InputFor(o, "warp_drive")
	assert.ErrorIs(t, err, ErrUnknownConcept)
}
