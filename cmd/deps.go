package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/config"
	"github.com/cfdlab/foamtutor/internal/dialogue"
	"github.com/cfdlab/foamtutor/internal/journal"
	"github.com/cfdlab/foamtutor/internal/knowledge"
	"github.com/cfdlab/foamtutor/internal/llm"
	"github.com/cfdlab/foamtutor/internal/narrate"
)

// loadGraph builds the seeded concept graph and merges the configured
// catalog over it.
func loadGraph(c *config.Config, log *zap.Logger) (*knowledge.Graph, error) {
	g := knowledge.DefaultGraph(knowledge.WithLogger(log.Named("knowledge")))
	if c.Catalog.Path == "" {
		return g, nil
	}
	cat, err := knowledge.LoadCatalog(c.Catalog.Path)
	if err != nil {
		return nil, err
	}
	cat.Apply(g)
	log.Info("catalog loaded", zap.String("path", c.Catalog.Path), zap.Int("concepts", g.Len()))
	return g, nil
}

// resolveDBPath returns the journal path from config (already overlaid
// with --db and FOAMTUTOR_DB), then the default XDG path.
func resolveDBPath(c *config.Config) (string, error) {
	if c.Journal.Path != "" {
		return c.Journal.Path, journal.EnsureDir(c.Journal.Path)
	}
	return journal.DefaultDBPath()
}

func openJournal(c *config.Config) (*journal.Journal, error) {
	path, err := resolveDBPath(c)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

// openRecorder returns the session journal, or a no-op recorder when the
// journal is disabled. A journal that fails to open is logged and skipped:
// tutoring works without it.
func openRecorder(c *config.Config, log *zap.Logger) (journal.Recorder, func()) {
	if !c.Journal.Enabled {
		return journal.Nop{}, func() {}
	}
	j, err := openJournal(c)
	if err != nil {
		log.Warn("journal unavailable", zap.Error(err))
		return journal.Nop{}, func() {}
	}
	return j, func() {
		if err := j.Close(); err != nil {
			log.Warn("close journal", zap.Error(err))
		}
	}
}

// orchestratorFactory returns a builder for configured dialogues sharing g
// and rec.
func orchestratorFactory(c *config.Config, g *knowledge.Graph, rec journal.Recorder, log *zap.Logger) func(sessionID string) *dialogue.Orchestrator {
	return func(sessionID string) *dialogue.Orchestrator {
		opts := []dialogue.Option{
			dialogue.WithPicker(c.NewPicker()),
			dialogue.WithThresholds(c.Tutor.Thresholds),
			dialogue.WithBands(c.Tutor.Bands),
			dialogue.WithRecorder(rec),
			dialogue.WithSessionID(sessionID),
			dialogue.WithLogger(log.Named("dialogue")),
		}
		if len(c.Tutor.CoreConcepts) > 0 {
			opts = append(opts, dialogue.WithCoreConcepts(c.Tutor.CoreConcepts...))
		}
		if len(c.Tutor.ReadinessConcepts) > 0 {
			opts = append(opts, dialogue.WithReadinessConcepts(c.Tutor.ReadinessConcepts...))
		}
		o := dialogue.New(g, opts...)
		o.SetUserExperienceLevel(string(c.Experience()))
		return o
	}
}

// newNarrator builds the explanation narrator. With no provider configured
// it serves static explanations.
func newNarrator(ctx context.Context, c *config.Config, log *zap.Logger) (*narrate.Narrator, error) {
	p, err := llm.New(ctx, c.LLM, log.Named("llm"))
	switch {
	case errors.Is(err, llm.ErrDisabled):
		p = nil
	case err != nil:
		return nil, err
	}
	return narrate.New(p, c.Narrate, narrate.WithLogger(log.Named("narrate"))), nil
}
