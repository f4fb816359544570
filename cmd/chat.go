package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/narrate"
	"github.com/cfdlab/foamtutor/internal/ui/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// session is one wired dialogue with its narrator. close records the
// session end and releases the journal.
type session struct {
	orch     *dialogue.Orchestrator
	narrator *narrate.Narrator
	close    func(context.Context)
}

func newSession(ctx context.Context) (*session, error) {
	g, err := loadGraph(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("load concepts: %w", err)
	}
	n, err := newNarrator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init narrator: %w", err)
	}
	rec, closeJournal := openRecorder(cfg, logger)
	o := orchestratorFactory(cfg, g, rec, logger)(uuid.NewString())
	return &session{
		orch:     o,
		narrator: n,
		close: func(ctx context.Context) {
			o.Close(ctx)
			closeJournal()
		},
	}, nil
}

// runChat builds the dialogue and launches the TUI.
func runChat(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close(context.WithoutCancel(ctx))

	if !s.narrator.Enabled() {
		logger.Info("no LLM provider configured; explanations are static")
	}
	return app.Run(ctx, s.orch, s.narrator)
}
