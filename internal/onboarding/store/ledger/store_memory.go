package ledger

import (
	"context"
	"sort"
	"sync"

	"kycportal/internal/onboarding/models"
	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
)

// InMemoryStore keeps ledger rows in memory, keyed by session.
type InMemoryStore struct {
	mu        sync.RWMutex
	bySession map[id.SessionID]*models.SubmissionRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bySession: make(map[id.SessionID]*models.SubmissionRecord)}
}

func (s *InMemoryStore) FindBySession(_ context.Context, sessionID id.SessionID) (*models.SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.bySession[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// Save inserts or replaces the row of the record's session.
func (s *InMemoryStore) Save(_ context.Context, rec *models.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if existing, ok := s.bySession[rec.SessionID]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	}
	s.bySession[rec.SessionID] = &cp
	return nil
}

// List returns matching rows, most recently updated first.
func (s *InMemoryStore) List(_ context.Context, f Filter) ([]*models.SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SubmissionRecord, 0)
	for _, rec := range s.bySession {
		if f.matches(rec) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}
