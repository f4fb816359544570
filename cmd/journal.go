package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfdlab/foamtutor/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded tutoring sessions",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions, or the turns of one session",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")

		j, err := openJournal(cfg)
		if err != nil {
			return err
		}
		defer j.Close()

		if sessionID != "" {
			return listTurns(cmd, j, sessionID, limit)
		}
		return listSessions(cmd, j, limit)
	},
}

func init() {
	journalListCmd.Flags().String("session", "", "Show the turns of this session")
	journalListCmd.Flags().Int("limit", 20, "Maximum rows to show (0 = all)")

	journalCmd.AddCommand(journalListCmd)
}

const tsLayout = "2006-01-02 15:04:05"

func listSessions(cmd *cobra.Command, j *journal.Journal, limit int) error {
	sessions, err := j.Sessions(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %-19s  %5s  %s\n", "Session", "Started", "Last turn", "Turns", "Confidence")
	fmt.Fprintln(out, strings.Repeat("─", 100))
	for _, s := range sessions {
		fmt.Fprintf(out, "%-36s  %-19s  %-19s  %5d  %.0f%%\n",
			s.SessionID,
			s.FirstAt.Local().Format(tsLayout),
			s.LastAt.Local().Format(tsLayout),
			s.Turns,
			s.LastConfidence*100,
		)
	}
	return nil
}

func listTurns(cmd *cobra.Command, j *journal.Journal, sessionID string, limit int) error {
	ctx := cmd.Context()
	events, err := j.SessionEvents(ctx, sessionID)
	if err != nil {
		return err
	}
	turns, err := j.Turns(ctx, journal.QueryOpts{SessionID: sessionID, Limit: limit})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(events) == 0 && len(turns) == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}

	for _, e := range events {
		fmt.Fprintf(out, "%s  %-5s  level=%s", e.Timestamp.Local().Format(tsLayout), e.Action, e.Level)
		if e.Action == journal.SessionEnd {
			fmt.Fprintf(out, " turns=%d confidence=%.0f%%", e.Turns, e.OverallConfidence*100)
		}
		fmt.Fprintln(out)
	}
	for _, t := range turns {
		writeTurn(out, t)
	}
	return nil
}

func writeTurn(out io.Writer, t journal.TurnEvent) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintln(out, sep)
	fmt.Fprintf(out, "Turn %d  %s  topic=%s strategy=%s confidence=%.0f%%",
		t.Turn, t.Timestamp.Local().Format(tsLayout), orDash(t.Topic), orDash(t.Strategy), t.OverallConfidence*100)
	if t.Ready {
		fmt.Fprint(out, "  ready")
	}
	fmt.Fprintf(out, "\n  you:   %s\n  tutor: %s\n", t.Input, t.Reply)
	if len(t.Parameters) > 0 {
		fmt.Fprintf(out, "  facts: %s\n", strings.Join(t.Parameters, "; "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
