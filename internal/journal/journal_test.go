package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestJournal(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), opts...)
	if err != nil {
		t.Fatalf("open test journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestPragmasApplied(t *testing.T) {
	j := openTestJournal(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := j.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSchemaTables(t *testing.T) {
	tables, err := schemaTables()
	if err != nil {
		t.Fatalf("schemaTables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables", len(tables))
	}
	turns := tables[1]
	if turns.name != turnTable {
		t.Fatalf("second table = %q", turns.name)
	}
	if got := strings.Join(turns.columns, ","); got != strings.Join(turnColumns, ",") {
		t.Errorf("turn columns = %s\nwant %s", got, strings.Join(turnColumns, ","))
	}
	if !strings.Contains(turns.ddl[0], "CREATE TABLE IF NOT EXISTS") {
		t.Errorf("unexpected DDL %q", turns.ddl[0])
	}
}

func TestSchemaTables_SessionDDL(t *testing.T) {
	tables, err := schemaTables()
	if err != nil {
		t.Fatalf("schemaTables: %v", err)
	}
	sessions := tables[0]
	want := []string{
		"CREATE TABLE IF NOT EXISTS `session_events` (" +
			"`id` integer PRIMARY KEY AUTOINCREMENT, " +
			"`sequence` integer NOT NULL UNIQUE, " +
			"`timestamp` text NOT NULL, " +
			"`session_id` text NOT NULL, " +
			"`action` text NOT NULL, " +
			"`level` text NOT NULL, " +
			"`turns` integer NOT NULL, " +
			"`overall_confidence` real NOT NULL)",
		"CREATE INDEX IF NOT EXISTS `session_events_session_id_sequence` ON `session_events` (`session_id`, `sequence`)",
		"CREATE INDEX IF NOT EXISTS `session_events_action` ON `session_events` (`action`)",
	}
	if len(sessions.ddl) != len(want) {
		t.Fatalf("got %d statements: %q", len(sessions.ddl), sessions.ddl)
	}
	for i := range want {
		if sessions.ddl[i] != want[i] {
			t.Errorf("statement %d:\n got %s\nwant %s", i, sessions.ddl[i], want[i])
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		j.Close()
	}
}

func TestRecordTurnAndQuery(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	j := openTestJournal(t, WithClock(stepClock(start)))
	ctx := context.Background()

	turns := []TurnEvent{
		{SessionID: "a", Turn: 1, Input: "I want to analyze pipe flow", Reply: "What specifically do you mean by Reynolds Number?",
			Topic: "reynolds_number", Strategy: "CLARIFY", Parameters: []string{"diameter = 0.1"}},
		{SessionID: "b", Turn: 1, Input: "hello", Reply: "What aspect of CFD would you like to explore further?"},
		{SessionID: "a", Turn: 2, Input: "laminar and turbulent regimes", Reply: "How do you think Reynolds Number affects the flow behavior?",
			Topic: "reynolds_number", Strategy: "EXPLORE", OverallConfidence: 0.5},
	}
	for _, e := range turns {
		if err := j.RecordTurn(ctx, e); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}

	all, err := j.Turns(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d turns, want 3", len(all))
	}
	for i, e := range all {
		if e.Sequence != int64(i+1) {
			t.Errorf("turn %d sequence = %d", i, e.Sequence)
		}
	}
	if !all[0].Timestamp.Equal(start.Add(time.Second)) {
		t.Errorf("timestamp = %v", all[0].Timestamp)
	}
	if len(all[0].Parameters) != 1 || all[0].Parameters[0] != "diameter = 0.1" {
		t.Errorf("parameters = %v", all[0].Parameters)
	}
	if all[1].Parameters == nil || len(all[1].Parameters) != 0 {
		t.Errorf("empty parameters should decode to an empty slice, got %#v", all[1].Parameters)
	}

	onlyA, err := j.Turns(ctx, QueryOpts{SessionID: "a"})
	if err != nil {
		t.Fatalf("Turns(a): %v", err)
	}
	if len(onlyA) != 2 || onlyA[1].Strategy != "EXPLORE" {
		t.Errorf("session a turns = %+v", onlyA)
	}

	latest, err := j.Turns(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("Turns(limit): %v", err)
	}
	if len(latest) != 2 || latest[0].Sequence != 2 || latest[1].Sequence != 3 {
		t.Errorf("limit should return the newest turns oldest first, got %+v", latest)
	}

	after, err := j.Turns(ctx, QueryOpts{After: 2})
	if err != nil {
		t.Fatalf("Turns(after): %v", err)
	}
	if len(after) != 1 || after[0].Sequence != 3 {
		t.Errorf("after = %+v", after)
	}
}

func TestSessions(t *testing.T) {
	j := openTestJournal(t, WithClock(stepClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()

	for _, e := range []TurnEvent{
		{SessionID: "a", Turn: 1, OverallConfidence: 0.1},
		{SessionID: "b", Turn: 1, OverallConfidence: 0.3},
		{SessionID: "a", Turn: 2, OverallConfidence: 0.7},
	} {
		if err := j.RecordTurn(ctx, e); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}

	got, err := j.Sessions(ctx, 0)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions", len(got))
	}
	if got[0].SessionID != "a" || got[0].Turns != 2 || got[0].LastConfidence != 0.7 {
		t.Errorf("newest session = %+v", got[0])
	}
	if !got[0].LastAt.After(got[0].FirstAt) {
		t.Errorf("LastAt %v should follow FirstAt %v", got[0].LastAt, got[0].FirstAt)
	}
	if got[1].SessionID != "b" || got[1].LastConfidence != 0.3 {
		t.Errorf("older session = %+v", got[1])
	}

	one, err := j.Sessions(ctx, 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("Sessions(1) = %v, %v", one, err)
	}
}

func TestSessions_Empty(t *testing.T) {
	j := openTestJournal(t)
	got, err := j.Sessions(context.Background(), 10)
	if err != nil || got != nil {
		t.Errorf("Sessions on empty journal = %v, %v", got, err)
	}
}

func TestRecordSession(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.RecordSession(ctx, SessionEvent{SessionID: "s", Action: SessionStart, Level: "beginner"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := j.RecordSession(ctx, SessionEvent{SessionID: "s", Action: SessionEnd, Level: "beginner", Turns: 4, OverallConfidence: 0.55}); err != nil {
		t.Fatalf("end: %v", err)
	}

	events, err := j.SessionEvents(ctx, "s")
	if err != nil {
		t.Fatalf("SessionEvents: %v", err)
	}
	if len(events) != 2 || events[0].Action != SessionStart || events[1].Action != SessionEnd {
		t.Fatalf("events = %+v", events)
	}
	if events[1].Turns != 4 || events[1].OverallConfidence != 0.55 {
		t.Errorf("end event = %+v", events[1])
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.RecordTurn(context.Background(), TurnEvent{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordSession(context.Background(), SessionEvent{}); err != nil {
		t.Error(err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("FOAMTUTOR_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("env override: %q, %v", p, err)
	}

	t.Setenv("FOAMTUTOR_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil || p != filepath.Join(dir, "foamtutor", "journal.db") {
		t.Errorf("xdg: %q, %v", p, err)
	}
}
