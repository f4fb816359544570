// Package server exposes tutoring sessions as MCP tools over stdio.
package server

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/narrate"
)

// Deps are the collaborators of the MCP server.
type Deps struct {
	NewOrchestrator NewOrchestrator
	Narrator        *narrate.Narrator
	Logger          *zap.Logger
	Version         string
}

const instructions = `foamtutor is a Socratic CFD tutor that prepares engineers to set up OpenFOAM cases.
Call tutor_start once, then pass every learner message to tutor_reply and show the returned question verbatim.
Use tutor_status and tutor_parameters to decide when the learner is ready to build a case.`

// New creates the MCP server and its session registry.
func New(d Deps) (*server.MCPServer, *Registry) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	version := d.Version
	if version == "" {
		version = "dev"
	}

	reg := NewRegistry(d.NewOrchestrator, log)
	t := NewTools(reg, d.Narrator, log)

	s := server.NewMCPServer(
		"foamtutor",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.AddTool(t.StartDefinition(), t.Start)
	s.AddTool(t.ReplyDefinition(), t.Reply)
	s.AddTool(t.StatusDefinition(), t.Status)
	s.AddTool(t.ParametersDefinition(), t.Parameters)
	s.AddTool(t.ExplainDefinition(), t.Explain)
	s.AddTool(t.LearningPathDefinition(), t.LearningPath)
	s.AddTool(t.EndDefinition(), t.End)
	return s, reg
}

// Serve runs s over in/out until ctx is done or in closes, expiring
// sessions idle for more than idle. Open sessions are closed on return.
func Serve(ctx context.Context, s *server.MCPServer, reg *Registry, idle time.Duration, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if idle > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Reap(ctx, idle/4, idle)
		}()
	}
	defer func() {
		cancel()
		wg.Wait()
		reg.CloseAll(context.WithoutCancel(ctx))
	}()

	return server.NewStdioServer(s).Listen(ctx, in, out)
}
