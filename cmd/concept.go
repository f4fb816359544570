package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/journal"
	"github.com/cfdlab/foamtutor/internal/knowledge"
)

var conceptCmd = &cobra.Command{
	Use:   "concept",
	Short: "Browse the CFD concept graph",
}

var conceptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all concepts in teaching order",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cfg, logger)
		if err != nil {
			return err
		}
		fundamental, _ := cmd.Flags().GetBool("fundamental")
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%-28s  %-36s  %4s  %s\n", "ID", "Name", "Cx", "Prerequisites")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		n := 0
		for _, id := range g.TopologicalOrder() {
			c, _ := g.Concept(id)
			if fundamental && !c.IsFundamental() {
				continue
			}
			name := c.Name
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			fmt.Fprintf(out, "%-28s  %-36s  %4d  %s\n", c.ID, name, c.ComplexityLevel, strings.Join(c.Prerequisites, ", "))
			n++
		}
		fmt.Fprintf(out, "\n%d concepts\n", n)
		return nil
	},
}

var conceptShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one concept with its neighbours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cfg, logger)
		if err != nil {
			return err
		}
		c, err := lookupConcept(g, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
		fmt.Fprintf(out, "Complexity:    %d\n", c.ComplexityLevel)
		fmt.Fprintf(out, "Prerequisites: %s\n", orNone(names(g, c.Prerequisites)))
		fmt.Fprintf(out, "Dependents:    %s\n", orNone(names(g, g.Dependents(c.ID))))
		fmt.Fprintf(out, "Applications:  %s\n", orNone(c.Applications))
		fmt.Fprintf(out, "\n%s\n", c.Description)
		section(out, "Common misconceptions", c.CommonMisconceptions)
		section(out, "Questions to ask yourself", c.KeyQuestions)
		return nil
	},
}

var conceptPathCmd = &cobra.Command{
	Use:   "path <id>",
	Short: "Show the learning path leading to a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cfg, logger)
		if err != nil {
			return err
		}
		c, err := lookupConcept(g, args[0])
		if err != nil {
			return err
		}

		known, _ := cmd.Flags().GetStringSlice("known")
		from, _ := cmd.Flags().GetString("from")

		var path []string
		if from != "" {
			if _, err := lookupConcept(g, from); err != nil {
				return err
			}
			path = g.ShortestLearningPath(from, c.ID)
			if path == nil {
				return fmt.Errorf("%s does not lead to %s", from, c.ID)
			}
		} else {
			u := knowledge.UnderstoodSet{}
			for _, id := range known {
				u[id] = true
			}
			path = g.LearningPath(c.ID, u)
		}

		out := cmd.OutOrStdout()
		if len(path) == 0 {
			fmt.Fprintf(out, "%s is already understood.\n", c.Name)
			return nil
		}
		for i, id := range path {
			fmt.Fprintf(out, "%2d. %s (%s)\n", i+1, g.Name(id), id)
		}
		return nil
	},
}

var conceptExplainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Explain a concept at the configured experience level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g, err := loadGraph(cfg, logger)
		if err != nil {
			return err
		}
		c, err := lookupConcept(g, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		useLLM, _ := cmd.Flags().GetBool("llm")
		if !useLLM {
			fmt.Fprintln(out, g.Explanation(c.ID, cfg.Experience()))
			return nil
		}

		n, err := newNarrator(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if !n.Enabled() {
			return fmt.Errorf("--llm needs a provider: set FOAMTUTOR_LLM_PROVIDER or a vendor API key")
		}
		o := orchestratorFactory(cfg, g, journal.Nop{}, logger)("explain")
		in, err := n.InputFor(o, c.ID)
		if err != nil {
			return err
		}
		text, err := n.Explain(ctx, in)
		if err != nil {
			logger.Warn("model explanation failed; showing static text", zap.Error(err))
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

func init() {
	conceptListCmd.Flags().Bool("fundamental", false, "Only list fundamental concepts")
	conceptPathCmd.Flags().StringSlice("known", nil, "Concept IDs already understood")
	conceptPathCmd.Flags().String("from", "", "Shortest path from this concept instead")
	conceptExplainCmd.Flags().Bool("llm", false, "Tailor the explanation with the configured model")

	conceptCmd.AddCommand(conceptListCmd)
	conceptCmd.AddCommand(conceptShowCmd)
	conceptCmd.AddCommand(conceptPathCmd)
	conceptCmd.AddCommand(conceptExplainCmd)
}

func lookupConcept(g *knowledge.Graph, id string) (knowledge.Concept, error) {
	c, ok := g.Concept(id)
	if !ok {
		return c, fmt.Errorf("unknown concept %q (see 'foamtutor concept list')", id)
	}
	return c, nil
}

func names(g *knowledge.Graph, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func section(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(out, "  - %s\n", it)
	}
}
