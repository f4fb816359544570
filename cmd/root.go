package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/config"
	"github.com/cfdlab/foamtutor/internal/logging"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "foamtutor",
	Short: "Socratic CFD tutor for OpenFOAM case setup",
	Long: `foamtutor questions you about the flow you want to simulate, tracks which CFD
concepts you understand and gathers the parameters an OpenFOAM case needs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// Execute runs the command tree. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultPath(), "Path to config file")
	pf.String("db", "", "Path to journal database (overrides FOAMTUTOR_DB)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("level", "", "Experience level: beginner, intermediate or expert")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(conceptCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Flags win over the environment, which wins over the file.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		c.Journal.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("level"); v != "" {
		c.Tutor.Level = v
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format := c.Log.Format
	if cmd == serveCmd {
		format = logging.FormatJSON
	}
	l, err := logging.New(c.Log.Level, format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	cfg, logger = c, l
	return nil
}
