package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Tutor over plain stdin/stdout, one line per turn",
	Long: `Reads learner messages from stdin, one per line, and prints each tutor reply.
Blank lines are skipped; "quit" or end of input ends the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer s.close(context.WithoutCancel(ctx))

		quiet, _ := cmd.Flags().GetBool("quiet")
		return converse(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout(), quiet)
	},
}

func init() {
	askCmd.Flags().BoolP("quiet", "q", false, "Print replies only, without prompts or progress")
}

func converse(ctx context.Context, s *session, in io.Reader, out io.Writer, quiet bool) error {
	o := s.orch
	fmt.Fprintf(out, "tutor> %s\n", o.Open(ctx))

	sc := bufio.NewScanner(in)
	for {
		if !quiet {
			fmt.Fprint(out, "you> ")
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res := o.Turn(ctx, line)
		fmt.Fprintf(out, "tutor> %s\n", res.Reply)
		if quiet {
			continue
		}
		for _, a := range res.Assessments {
			mark := ""
			if a.Changed() && a.ToUnderstands {
				mark = " understood"
			}
			fmt.Fprintf(out, "  [%s %.0f%%%s]\n", o.Graph().Name(a.ConceptID), a.ToConfidence*100, mark)
		}
		if res.Ready {
			fmt.Fprintln(out, "  [ready for case setup]")
		}
	}
	if !quiet {
		fmt.Fprintln(out)
	}
	return sc.Err()
}
