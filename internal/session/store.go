package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
)

// Store is an in-memory, goroutine-safe session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *slog.Logger
	now      func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger.With("component", "session_store"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Create starts a new session and returns a snapshot of it.
func (s *Store) Create(lang domain.Language, view domain.Mode) (*Session, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, view)
	}
	if _, err := domain.ParseLanguage(string(lang)); err != nil {
		return nil, err
	}

	sess := newSession(lang, view, s.Now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session created",
		"session_id", sess.ID.String(),
		"view", string(view),
		"language", string(lang))

	return sess.Clone(), nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

// Navigate switches the active view. Every navigation, even to the same
// view, starts a new generation and so invalidates outstanding tickets.
func (s *Store) Navigate(id uuid.UUID, view domain.Mode) (*Session, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, view)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.ActiveView = view
	sess.Generation++
	sess.UpdatedAt = s.Now()

	s.logger.Debug("session navigated",
		"session_id", id.String(),
		"view", string(view),
		"generation", sess.Generation)

	return sess.Clone(), nil
}

// SetLanguage changes the response language. Outstanding tickets stay valid;
// their responses are in the old language but still belong to the view.
func (s *Store) SetLanguage(id uuid.UUID, lang domain.Language) (*Session, error) {
	if _, err := domain.ParseLanguage(string(lang)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Language = lang
	sess.UpdatedAt = s.Now()
	return sess.Clone(), nil
}

// Dispatch issues a ticket for a model call targeting view. It fails with
// ErrViewNotActive when view is not the active view, and returns a snapshot
// of the session for building the prompt.
func (s *Store) Dispatch(id uuid.UUID, view domain.Mode) (Ticket, *Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Ticket{}, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.ActiveView != view {
		return Ticket{}, nil, fmt.Errorf("%w: %s (active: %s)", ErrViewNotActive, view, sess.ActiveView)
	}

	ticket := Ticket{
		SessionID:  id,
		View:       view,
		Generation: sess.Generation,
		Language:   sess.Language,
	}
	return ticket, sess.Clone(), nil
}

// Apply runs fn against the live session if the ticket is still current. It
// returns false, without calling fn, when the session navigated after the
// ticket was issued. fn runs under the store lock and must not call the store.
func (s *Store) Apply(t Ticket, fn func(*Session)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[t.SessionID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSessionNotFound, t.SessionID)
	}
	if sess.Generation != t.Generation || sess.ActiveView != t.View {
		s.logger.Info("dropping stale response",
			"session_id", t.SessionID.String(),
			"ticket_view", string(t.View),
			"ticket_generation", t.Generation,
			"current_view", string(sess.ActiveView),
			"current_generation", sess.Generation)
		return false, nil
	}

	fn(sess)
	sess.UpdatedAt = s.Now()
	return true, nil
}

// Snapshot returns a deep copy of the session, or nil if it does not exist.
func (s *Store) Snapshot(id uuid.UUID) *Session {
	sess, err := s.Get(id)
	if err != nil {
		return nil
	}
	return sess
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
