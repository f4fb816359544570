package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfdlab/foamtutor/internal/assess"
	"github.com/cfdlab/foamtutor/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <text...>",
	Short: "Pull CFD parameters out of a flow description",
	Example: `  foamtutor extract "water at 2 m/s through a 5 cm pipe"
  foamtutor extract --analysis heat_transfer "air heated to 350 K"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		analysis, _ := cmd.Flags().GetString("analysis")
		if analysis == "" {
			analysis = assess.AnalysisTypeFor(assess.KeywordPhysics{}.ClassifyPhysics(text))
		}
		if extract.CriticalParameters(analysis) == nil {
			return fmt.Errorf("unknown analysis type %q", analysis)
		}

		ps := extract.New().Extract(text)
		writeExtraction(cmd.OutOrStdout(), text, ps, analysis)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("analysis", "", "Analysis type: pipe_flow, external_flow, heat_transfer or multiphase (default inferred from text)")
}

func writeExtraction(out io.Writer, text string, ps extract.Parameters, analysis string) {
	if len(ps) == 0 {
		fmt.Fprintln(out, "No parameters found.")
	} else {
		fmt.Fprintf(out, "%-22s  %-12s  %-8s  %-9s  %5s  %s\n", "Parameter", "Value", "Unit", "Method", "Conf", "Range")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, name := range ps.Names() {
			p := ps[name]
			value, verdict := p.Value, "-"
			switch {
			case !p.HasValue():
				value, verdict = "?", "confirm"
			case extract.ValidateRange(name, p.Value):
				verdict = "ok"
			default:
				verdict = "out of range"
			}
			fmt.Fprintf(out, "%-22s  %-12s  %-8s  %-9s  %5.2f  %s\n", name, value, p.Unit, p.Method, p.Confidence, verdict)
		}
	}

	consistent := "yes"
	if !extract.ValidateConsistency(ps) {
		consistent = "no"
	}
	fmt.Fprintf(out, "\nNumbers:    %s\n", orNone(extract.NumericValues(text)))
	fmt.Fprintf(out, "Units:      %s\n", orNone(extract.Units(text)))
	fmt.Fprintf(out, "Analysis:   %s\n", analysis)
	fmt.Fprintf(out, "Consistent: %s\n", consistent)

	issues := extract.Review(ps, extract.DefaultChecks(analysis)...)
	if len(issues) == 0 {
		fmt.Fprintln(out, "Issues:     none")
		return
	}
	fmt.Fprintln(out, "Issues:")
	for _, is := range issues {
		fmt.Fprintf(out, "  - %s\n", is)
	}
}
