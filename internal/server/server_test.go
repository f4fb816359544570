package server

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/llm"
	"github.com/cfdlab/foamtutor/internal/narrate"
	"github.com/cfdlab/foamtutor/internal/socratic"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func newTestTools(t *testing.T, n *narrate.Narrator) (*Tools, *Registry) {
	t.Helper()
	graph := knowledge.DefaultGraph()
	reg := NewRegistry(func(id string) *dialogue.Orchestrator {
		return dialogue.New(graph, dialogue.WithSessionID(id), dialogue.WithPicker(socratic.First{}))
	}, nil)
	return NewTools(reg, n, nil), reg
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func startSession(t *testing.T, tools *Tools, level string) string {
	t.Helper()
	res, err := tools.Start(context.Background(), call(map[string]any{"level": level}))
	require.NoError(t, err)
	text := resultText(t, res)
	start := strings.Index(text, "`")
	end := strings.LastIndex(text, "`")
	require.Greater(t, end, start)
	return text[start+1 : end]
}

func TestDefinitions(t *testing.T) {
	tools, _ := newTestTools(t, nil)
	names := []string{}
	for _, d := range []mcp.Tool{
		tools.StartDefinition(), tools.ReplyDefinition(), tools.StatusDefinition(),
		tools.ParametersDefinition(), tools.ExplainDefinition(),
		tools.LearningPathDefinition(), tools.EndDefinition(),
	} {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"tutor_start", "tutor_reply", "tutor_status", "tutor_parameters",
		"tutor_explain", "tutor_learning_path", "tutor_end",
	}, names)
}

func TestSessionLifecycle(t *testing.T) {
	tools, reg := newTestTools(t, nil)
	ctx := context.Background()

	id := startSession(t, tools, "intermediate")
	assert.Equal(t, 1, reg.Len())

	res, err := tools.Reply(ctx, call(map[string]any{"session_id": id, "text": "water flows in a pipe at 2 m/s"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "_strategy:")
	assert.Contains(t, text, "velocity = 2")

	res, err = tools.Status(ctx, call(map[string]any{"session_id": id}))
	require.NoError(t, err)
	status := resultText(t, res)
	assert.Contains(t, status, "**Level:** intermediate")
	assert.Contains(t, status, "**Turns:** 1")
	assert.Contains(t, status, "## Knowledge gaps")

	res, err = tools.Parameters(ctx, call(map[string]any{"session_id": id, "case_type": "pipe_flow"}))
	require.NoError(t, err)
	params := resultText(t, res)
	assert.Contains(t, params, "# Case Readiness: pipe_flow")
	assert.Contains(t, params, "density = 998.2")

	res, err = tools.End(ctx, call(map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Session ended after 1 turns")
	assert.Equal(t, 0, reg.Len())

	res, err = tools.Reply(ctx, call(map[string]any{"session_id": id, "text": "hello"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestReply_MissingText(t *testing.T) {
	tools, _ := newTestTools(t, nil)
	id := startSession(t, tools, "")
	res, err := tools.Reply(context.Background(), call(map[string]any{"session_id": id}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(map[string]string{
		"explanation":    "Boundary conditions pin the solution at the domain edges.",
		"example":        "An inlet fixes velocity.",
		"check_question": "What would you prescribe at an outlet?",
	}))
	tools, _ := newTestTools(t, narrate.New(mock, narrate.DefaultConfig()))
	id := startSession(t, tools, "beginner")

	res, err := tools.Explain(context.Background(), call(map[string]any{"session_id": id, "concept": knowledge.ConceptBoundaryConditions}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "pin the solution")
	assert.Contains(t, resultText(t, res), "## Check your understanding")

	// Script exhausted: static text is served instead.
	res, err = tools.Explain(context.Background(), call(map[string]any{"session_id": id, "concept": knowledge.ConceptBoundaryConditions}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Based on your beginner level")

	res, err = tools.Explain(context.Background(), call(map[string]any{"session_id": id, "concept": "warp_drive"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestLearningPath(t *testing.T) {
	tools, _ := newTestTools(t, nil)
	id := startSession(t, tools, "beginner")
	ctx := context.Background()

	res, err := tools.LearningPath(ctx, call(map[string]any{"session_id": id, "concept": knowledge.ConceptTurbulence}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "# Path to turbulence")
	assert.Contains(t, text, "1. ")

	res, err = tools.LearningPath(ctx, call(map[string]any{"session_id": id, "concept": "warp_drive"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRegistry_ConcurrentSessions(t *testing.T) {
	tools, reg := newTestTools(t, nil)
	ids := []string{startSession(t, tools, "beginner"), startSession(t, tools, "expert")}
	require.NotEqual(t, ids[0], ids[1])

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				reg.With(id, func(o *dialogue.Orchestrator) { o.Turn(context.Background(), "what is the Reynolds number?") })
			}()
		}
	}
	wg.Wait()

	for _, id := range ids {
		require.NoError(t, reg.With(id, func(o *dialogue.Orchestrator) { assert.Equal(t, 5, o.Turns()) }))
	}
	reg.CloseAll(context.Background())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	_, reg := newTestTools(t, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	stale, _ := reg.Start(context.Background(), "")
	now = now.Add(20 * time.Minute)
	fresh, _ := reg.Start(context.Background(), "")
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, reg.Sweep(context.Background(), 10*time.Minute))
	assert.ErrorIs(t, reg.With(stale, func(*dialogue.Orchestrator) {}), ErrNoSession)
	assert.NoError(t, reg.With(fresh, func(*dialogue.Orchestrator) {}))
}

func TestRegistry_ReapStops(t *testing.T) {
	_, reg := newTestTools(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Reap(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done
}

func TestNew_RegistersTools(t *testing.T) {
	graph := knowledge.DefaultGraph()
	s, reg := New(Deps{NewOrchestrator: func(id string) *dialogue.Orchestrator {
		return dialogue.New(graph, dialogue.WithSessionID(id))
	}})
	require.NotNil(t, s)
	assert.Len(t, s.ListTools(), 7)
	assert.Equal(t, 0, reg.Len())
}
