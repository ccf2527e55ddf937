// Package session keeps live onboarding sessions. Sessions hold file handles
// and an in-process state machine, so they are not persisted; only the
// submission ledger survives a restart.
package session

import (
	"context"
	"sync"
	"time"

	"kycportal/internal/onboarding/models"
	"kycportal/internal/onboarding/wizard"
	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
)

// InMemoryStore is a TTL registry of wizard sessions. A session expires when
// it has not been touched for the TTL.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*wizard.Session
	ttl      time.Duration
}

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

func New(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		sessions: make(map[id.SessionID]*wizard.Session),
		ttl:      ttl,
	}
}

func (s *InMemoryStore) TTL() time.Duration {
	return s.ttl
}

func (s *InMemoryStore) Create(_ context.Context, sess *wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		return sentinel.ErrConflict
	}
	s.sessions[sess.ID] = sess
	return nil
}

// FindByID returns the session. An idle session past its TTL reports
// sentinel.ErrExpired and is removed.
func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID, now time.Time) (*wizard.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if s.expired(sess, now) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, sentinel.ErrExpired
	}
	return sess, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// DeleteExpired removes every idle session past its TTL and returns how many
// were removed. Sessions that are submitting are kept.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sid, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, sid)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemoryStore) expired(sess *wizard.Session, now time.Time) bool {
	if sess.State() == models.StateSubmitting {
		return false
	}
	return now.Sub(sess.UpdatedAt()) > s.ttl
}

// StartCleanup runs periodic removal of expired sessions until ctx is cancelled.
func (s *InMemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.DeleteExpired(ctx, time.Now()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
