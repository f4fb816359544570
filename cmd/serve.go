package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tutoring sessions as MCP tools over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout. Each tutor_start call
opens an independent session; sessions idle longer than --idle are closed.
Logs are written to stderr as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		idle, _ := cmd.Flags().GetDuration("idle")

		g, err := loadGraph(cfg, logger)
		if err != nil {
			return err
		}
		n, err := newNarrator(ctx, cfg, logger)
		if err != nil {
			return err
		}
		rec, closeJournal := openRecorder(cfg, logger)
		defer closeJournal()

		s, reg := server.New(server.Deps{
			NewOrchestrator: orchestratorFactory(cfg, g, rec, logger),
			Narrator:        n,
			Logger:          logger.Named("mcp"),
			Version:         version,
		})
		logger.Info("mcp server listening on stdio", zap.Duration("idle", idle), zap.Bool("llm", n.Enabled()))
		return server.Serve(ctx, s, reg, idle, os.Stdin, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().Duration("idle", 30*time.Minute, "Close sessions idle for longer than this (0 disables)")
}
