package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/extract"
	"github.com/cfdlab/foamtutor/internal/narrate"
)

// Tools implements the tutor_* MCP tools over a session registry.
type Tools struct {
	sessions *Registry
	narrator *narrate.Narrator
	log      *zap.Logger
}

// NewTools binds the tools to a registry. narrator may be nil.
func NewTools(sessions *Registry, narrator *narrate.Narrator, log *zap.Logger) *Tools {
	if narrator == nil {
		narrator = narrate.New(nil, narrate.DefaultConfig())
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tools{sessions: sessions, narrator: narrator, log: log}
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by tutor_start."),
	)
}

func noSession(id string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Session %q not found. Start one with `tutor_start`.", id))
}

// StartDefinition describes tutor_start.
func (t *Tools) StartDefinition() mcp.Tool {
	return mcp.NewTool("tutor_start",
		mcp.WithDescription("Start a CFD tutoring session and return its id with the opening question."),
		mcp.WithString("level",
			mcp.Description("Learner experience level."),
			mcp.Enum("beginner", "intermediate", "expert"),
		),
	)
}

func (t *Tools) Start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, opening := t.sessions.Start(ctx, req.GetString("level", ""))
	return mcp.NewToolResultText(fmt.Sprintf("**Session:** `%s`\n\n%s", id, opening)), nil
}

// ReplyDefinition describes tutor_reply.
func (t *Tools) ReplyDefinition() mcp.Tool {
	return mcp.NewTool("tutor_reply",
		mcp.WithDescription("Send the learner's message and get the tutor's next question."),
		sessionArg(),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the learner said.")),
	)
}

func (t *Tools) Reply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var res dialogue.TurnResult
	if err := t.sessions.With(id, func(o *dialogue.Orchestrator) { res = o.Turn(ctx, text) }); err != nil {
		return noSession(id), nil
	}

	var b strings.Builder
	b.WriteString(res.Reply)
	if res.Question != nil {
		fmt.Fprintf(&b, "\n\n_strategy: %s, concept: %s_", res.Question.Strategy, res.Question.TargetConcept)
	}
	if len(res.Parameters) > 0 {
		fmt.Fprintf(&b, "\n\nNoted: %s", strings.Join(extract.Flatten(res.Parameters), "; "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// StatusDefinition describes tutor_status.
func (t *Tools) StatusDefinition() mcp.Tool {
	return mcp.NewTool("tutor_status",
		mcp.WithDescription("Show learning progress, readiness for case setup, knowledge gaps and suggested questions."),
		sessionArg(),
	)
}

func (t *Tools) Status(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	var b strings.Builder
	err := t.sessions.With(id, func(o *dialogue.Orchestrator) {
		m := o.Model()
		b.WriteString("# Learning Status\n\n")
		fmt.Fprintf(&b, "**Level:** %s\n", m.ExperienceLevel())
		fmt.Fprintf(&b, "**Turns:** %d\n", o.Turns())
		fmt.Fprintf(&b, "**Progress:** %.0f%%\n", o.OverallLearningProgress()*100)
		fmt.Fprintf(&b, "**Ready for case setup:** %t\n", o.IsUserReadyForCaseGeneration())
		fmt.Fprintf(&b, "**Next objective:** %s\n", o.NextLearningObjective())
		if topic := o.CurrentTopic(); topic != "" {
			fmt.Fprintf(&b, "**Current topic:** %s\n", topic)
		}
		writeList(&b, "Knowledge gaps", o.KnowledgeGaps())
		writeList(&b, "Suggested questions", o.SuggestedQuestions())
		writeList(&b, "Unlocked topics", o.ReadyForNewConcepts())
	})
	if err != nil {
		return noSession(id), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ParametersDefinition describes tutor_parameters.
func (t *Tools) ParametersDefinition() mcp.Tool {
	return mcp.NewTool("tutor_parameters",
		mcp.WithDescription("List the simulation parameters gathered so far and check them against a case type."),
		sessionArg(),
		mcp.WithString("case_type",
			mcp.Description("Case type to check against. Defaults to the type implied by the conversation."),
			mcp.Enum(dialogue.CaseTypes()...),
		),
	)
}

func (t *Tools) Parameters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	var (
		facts  []string
		report dialogue.CaseReport
	)
	err := t.sessions.With(id, func(o *dialogue.Orchestrator) {
		facts = o.ExtractedParameters()
		report = o.CaseReport(req.GetString("case_type", ""))
	})
	if err != nil {
		return noSession(id), nil
	}
	return mcp.NewToolResultText(report.Markdown(facts)), nil
}

// ExplainDefinition describes tutor_explain.
func (t *Tools) ExplainDefinition() mcp.Tool {
	return mcp.NewTool("tutor_explain",
		mcp.WithDescription("Explain a CFD concept at the learner's level."),
		sessionArg(),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept id, e.g. reynolds_number.")),
	)
}

func (t *Tools) Explain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	concept, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		in        narrate.ExplainInput
		inErr     error
		questions []string
	)
	if err := t.sessions.With(id, func(o *dialogue.Orchestrator) {
		in, inErr = t.narrator.InputFor(o, concept)
		questions = o.PracticeQuestions(concept)
	}); err != nil {
		return noSession(id), nil
	}
	if inErr != nil {
		return mcp.NewToolResultError(inErr.Error()), nil
	}

	text, err := t.narrator.Explain(ctx, in)
	if err != nil {
		t.log.Debug("static explanation served", zap.Error(err))
	}
	var b strings.Builder
	b.WriteString(text)
	writeList(&b, "Check your understanding", questions)
	return mcp.NewToolResultText(b.String()), nil
}

// LearningPathDefinition describes tutor_learning_path.
func (t *Tools) LearningPathDefinition() mcp.Tool {
	return mcp.NewTool("tutor_learning_path",
		mcp.WithDescription("List, in order, the concepts the learner still needs before a target concept."),
		sessionArg(),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Target concept id.")),
	)
}

func (t *Tools) LearningPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	target, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		path  []string
		names []string
		known bool
	)
	err = t.sessions.With(id, func(o *dialogue.Orchestrator) {
		known = o.Graph().Has(target)
		path = o.LearningPath(target)
		for _, c := range path {
			names = append(names, o.Graph().Name(c))
		}
	})
	if err != nil {
		return noSession(id), nil
	}
	if !known {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown concept %q.", target)), nil
	}
	if len(path) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing left to learn before %s.", target)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Path to %s\n\n", target)
	for i, c := range path {
		fmt.Fprintf(&b, "%d. %s (`%s`)\n", i+1, names[i], c)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// EndDefinition describes tutor_end.
func (t *Tools) EndDefinition() mcp.Tool {
	return mcp.NewTool("tutor_end",
		mcp.WithDescription("End a tutoring session."),
		sessionArg(),
	)
}

func (t *Tools) End(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	o, err := t.sessions.End(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return noSession(id), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session ended after %d turns at %.0f%% progress.",
		o.Turns(), o.OverallLearningProgress()*100)), nil
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
