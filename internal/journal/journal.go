// Package journal keeps an append-only SQLite log of tutoring turns for
// telemetry and review. Sessions are never restored from it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Journal is a SQLite-backed Recorder. It is safe for concurrent use.
type Journal struct {
	db  *sql.DB
	drv *entsql.Driver
	now func() time.Time

	mu sync.Mutex // serializes sequence assignment
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// the journal tables if they do not exist.
func Open(dsn string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	j := &Journal{db: db, drv: entsql.OpenDB(dialect.SQLite, db), now: time.Now}
	for _, o := range opts {
		o(j)
	}

	if err := j.migrate(context.Background()); err != nil {
		j.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	tables, err := schemaTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		for _, stmt := range t.ddl {
			if err := j.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
	}
	return nil
}

// DB returns the underlying *sql.DB for raw queries.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.drv.Close()
}

// RecordTurn appends a turn. Sequence and Timestamp are assigned here when
// zero.
func (j *Journal) RecordTurn(ctx context.Context, e TurnEvent) error {
	params, err := json.Marshal(nonNil(e.Parameters))
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	return j.append(ctx, turnTable, e.Timestamp, func(seq int64, ts string) []any {
		return []any{seq, ts, e.SessionID, e.Turn, e.Input, e.Reply, e.Topic, e.Strategy,
			e.OverallConfidence, e.Ready, string(params)}
	}, "sequence", "timestamp", "session_id", "turn", "input", "reply", "topic", "strategy",
		"overall_confidence", "ready", "parameters")
}

// RecordSession appends a session start or end event.
func (j *Journal) RecordSession(ctx context.Context, e SessionEvent) error {
	return j.append(ctx, sessionTable, e.Timestamp, func(seq int64, ts string) []any {
		return []any{seq, ts, e.SessionID, string(e.Action), e.Level, e.Turns, e.OverallConfidence}
	}, "sequence", "timestamp", "session_id", "action", "level", "turns", "overall_confidence")
}

func (j *Journal) append(ctx context.Context, table string, at time.Time, values func(int64, string) []any, columns ...string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if at.IsZero() {
		at = j.now()
	}

	tx, err := j.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	seq, err := nextSequence(ctx, tx, table)
	if err != nil {
		tx.Rollback()
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(table).
		Columns(columns...).
		Values(values(seq, at.UTC().Format(timeLayout))...).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func nextSequence(ctx context.Context, tx dialect.Tx, table string) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("COALESCE(MAX(sequence), 0)").
		From(entsql.Table(table)).
		Query()
	rows := &entsql.Rows{}
	if err := tx.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	var seq int64
	if rows.Next() {
		if err := rows.Scan(&seq); err != nil {
			return 0, fmt.Errorf("scan sequence: %w", err)
		}
	}
	return seq + 1, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// applyPragmas configures SQLite for a single local writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. FOAMTUTOR_DB environment variable
// 2. $XDG_DATA_HOME/foamtutor/journal.db
// 3. ~/.local/share/foamtutor/journal.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("FOAMTUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "foamtutor", "journal.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a database path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
