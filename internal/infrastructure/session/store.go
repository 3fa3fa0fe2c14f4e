package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// Store keeps conversations in process memory. Each session holds a bounded
// FIFO window of messages; sessions idle past the TTL are reaped by a
// background sweep. An unknown session id transparently becomes a new session
// so clients can reconnect after a reap without an error path.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	maxMessages int
	ttl         time.Duration
	now         func() time.Time
}

const (
	DefaultMaxMessages = 20
	DefaultTTL         = 30 * time.Minute
)

type Option func(*Store)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(maxMessages int, ttl time.Duration, opts ...Option) *Store {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions:    make(map[string]*domain.Session),
		maxMessages: maxMessages,
		ttl:         ttl,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate resolves a session id to its history. An empty or unknown id
// creates a fresh session and returns its generated id. The returned slice is
// a copy; callers may not mutate store state through it.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) (string, []domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok {
			sess.LastActiveAt = s.now()
			return sess.ID, copyMessages(sess.Messages), nil
		}
	}

	now := s.now()
	sess := &domain.Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions[sess.ID] = sess
	return sess.ID, nil, nil
}

// AppendTurn adds a request's user and assistant messages under one lock
// acquisition, so two concurrent requests on the same session cannot
// interleave their turns. The oldest messages are evicted once the window is
// full. Appending to an unknown session recreates it under the same id so a
// reap between GetOrCreate and AppendTurn does not lose the turn.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, userMsg, assistantMsg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		now := s.now()
		sess = &domain.Session{ID: sessionID, CreatedAt: now}
		s.sessions[sessionID] = sess
	}
	sess.Messages = append(sess.Messages, userMsg, assistantMsg)
	if overflow := len(sess.Messages) - s.maxMessages; overflow > 0 {
		sess.Messages = append([]domain.Message(nil), sess.Messages[overflow:]...)
	}
	sess.LastActiveAt = s.now()
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle longer than the TTL and reports how many were
// reaped.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, sess := range s.sessions {
		if sess.LastActiveAt.Before(cutoff) {
			delete(s.sessions, id)
			reaped++
		}
	}
	return reaped
}

// RunSweeper sweeps on the given interval until the context is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("session_sweep", "reaped", n, "live", s.Len())
			}
		}
	}
}

func copyMessages(msgs []domain.Message) []domain.Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
