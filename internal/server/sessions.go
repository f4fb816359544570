package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfdlab/foamtutor/internal/dialogue"
)

// ErrNoSession is returned for unknown or ended session ids.
var ErrNoSession = errors.New("no such session")

// NewOrchestrator builds the dialogue for a new session id.
type NewOrchestrator func(sessionID string) *dialogue.Orchestrator

type session struct {
	mu       sync.Mutex // one turn at a time per session
	orch     *dialogue.Orchestrator
	lastSeen time.Time
}

// Registry owns the live tutoring sessions. Sessions run independently;
// each one is only ever touched by a single goroutine at a time.
type Registry struct {
	build NewOrchestrator
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry returns an empty registry.
func NewRegistry(build NewOrchestrator, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{build: build, log: log, now: time.Now, sessions: map[string]*session{}}
}

// Start opens a session at the given experience level and returns its id
// and opening question. An unknown level keeps the default.
func (r *Registry) Start(ctx context.Context, level string) (string, string) {
	id := uuid.NewString()
	o := r.build(id)
	if level != "" && !o.SetUserExperienceLevel(level) {
		r.log.Debug("ignoring unknown experience level", zap.String("level", level))
	}
	opening := o.Open(ctx)

	r.mu.Lock()
	r.sessions[id] = &session{orch: o, lastSeen: r.now()}
	r.mu.Unlock()

	r.log.Info("session started", zap.String("session", id))
	return id, opening
}

// With runs fn against the session's orchestrator while holding the
// session lock.
func (r *Registry) With(id string, fn func(*dialogue.Orchestrator)) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = r.now()
	fn(s.orch)
	return nil
}

// End closes and forgets a session.
func (r *Registry) End(ctx context.Context, id string) (*dialogue.Orchestrator, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orch.Close(ctx)
	r.log.Info("session ended", zap.String("session", id), zap.Int("turns", s.orch.Turns()))
	return s.orch, nil
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends sessions idle for longer than idle and returns how many.
func (r *Registry) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []string
	for id, s := range r.sessions {
		if s.mu.TryLock() {
			if s.lastSeen.Before(cutoff) {
				stale = append(stale, id)
			}
			s.mu.Unlock()
		}
	}
	r.mu.Unlock()

	n := 0
	for _, id := range stale {
		if _, err := r.End(ctx, id); err == nil {
			n++
		}
	}
	return n
}

// Reap sweeps idle sessions every interval until ctx is done.
func (r *Registry) Reap(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(ctx, idle); n > 0 {
				r.log.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// CloseAll ends every session.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.End(ctx, id)
	}
}
