package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var turnColumns = []string{
	"sequence", "timestamp", "session_id", "turn", "input", "reply", "topic", "strategy",
	"overall_confidence", "ready", "parameters",
}

// Turns returns journaled turns in sequence order. With a Limit, the most
// recent turns are returned, still oldest first.
func (j *Journal) Turns(ctx context.Context, opts QueryOpts) ([]TurnEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(turnColumns...).
		From(entsql.Table(turnTable)).
		OrderBy(entsql.Desc("sequence"))
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := j.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnEvent
	for rows.Next() {
		var (
			e          TurnEvent
			ts, params string
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.Turn, &e.Input, &e.Reply, &e.Topic,
			&e.Strategy, &e.OverallConfidence, &e.Ready, &params); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		var err error
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if params != "" {
			if err := json.Unmarshal([]byte(params), &e.Parameters); err != nil {
				return nil, fmt.Errorf("decode parameters of turn %d: %w", e.Sequence, err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

// SessionEvents returns the lifecycle events of one session in order.
func (j *Journal) SessionEvents(ctx context.Context, sessionID string) ([]SessionEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("sequence", "timestamp", "session_id", "action", "level", "turns", "overall_confidence").
		From(entsql.Table(sessionTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()
	rows := &entsql.Rows{}
	if err := j.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var (
			e      SessionEvent
			ts     string
			action string
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &action, &e.Level, &e.Turns, &e.OverallConfidence); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		var err error
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		e.Action = SessionAction(action)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Sessions summarizes the most recently active sessions, newest first.
// limit <= 0 returns all sessions.
func (j *Journal) Sessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			"session_id",
			entsql.As(entsql.Count("*"), "turns"),
			entsql.As("MIN(timestamp)", "first_at"),
			entsql.As("MAX(timestamp)", "last_at"),
			entsql.As(entsql.Max("sequence"), "last_seq"),
		).
		From(entsql.Table(turnTable)).
		GroupBy("session_id").
		OrderBy(entsql.Desc("last_seq"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := j.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	var (
		out  []SessionSummary
		seqs []any
	)
	for rows.Next() {
		var (
			s           SessionSummary
			first, last string
			lastSeq     int64
		)
		if err := rows.Scan(&s.SessionID, &s.Turns, &first, &last, &lastSeq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var err error
		if s.FirstAt, err = parseTime(first); err != nil {
			rows.Close()
			return nil, err
		}
		if s.LastAt, err = parseTime(last); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
		seqs = append(seqs, lastSeq)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	rows.Close()

	if len(seqs) == 0 {
		return nil, nil
	}
	conf, err := j.confidenceAt(ctx, seqs)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].LastConfidence = conf[out[i].SessionID]
	}
	return out, nil
}

// confidenceAt maps session id to the overall confidence recorded at the
// given turn sequences.
func (j *Journal) confidenceAt(ctx context.Context, seqs []any) (map[string]float64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("session_id", "overall_confidence").
		From(entsql.Table(turnTable)).
		Where(entsql.In("sequence", seqs...)).
		Query()
	rows := &entsql.Rows{}
	if err := j.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query last confidence: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(seqs))
	for rows.Next() {
		var (
			id string
			c  float64
		)
		if err := rows.Scan(&id, &c); err != nil {
			return nil, fmt.Errorf("scan last confidence: %w", err)
		}
		out[id] = c
	}
	return out, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
