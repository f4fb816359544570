package journal

import (
	"context"
	"time"
)

// TurnEvent is one learner utterance and the reply it produced.
type TurnEvent struct {
	Sequence          int64
	Timestamp         time.Time
	SessionID         string
	Turn              int
	Input             string
	Reply             string
	Topic             string
	Strategy          string
	OverallConfidence float64
	Ready             bool
	Parameters        []string
}

// SessionAction distinguishes session lifecycle events.
type SessionAction string

const (
	SessionStart SessionAction = "start"
	SessionEnd   SessionAction = "end"
)

// SessionEvent marks a session starting or ending.
type SessionEvent struct {
	Sequence          int64
	Timestamp         time.Time
	SessionID         string
	Action            SessionAction
	Level             string
	Turns             int
	OverallConfidence float64
}

// Recorder receives journal events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordTurn(ctx context.Context, e TurnEvent) error
	RecordSession(ctx context.Context, e SessionEvent) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordTurn(context.Context, TurnEvent) error       { return nil }
func (Nop) RecordSession(context.Context, SessionEvent) error { return nil }

// QueryOpts filters and pages journal queries.
type QueryOpts struct {
	SessionID string // only this session ("" = all)
	Limit     int    // most recent N results (0 = unlimited)
	After     int64  // sequence > After
}

// SessionSummary aggregates the turns of one session.
type SessionSummary struct {
	SessionID      string
	Turns          int
	FirstAt        time.Time
	LastAt         time.Time
	LastConfidence float64
}
