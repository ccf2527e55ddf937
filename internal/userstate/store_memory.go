package userstate

import (
	"context"
	"sync"

	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
)

// InMemoryStore keeps user state in a map. Suitable for single-instance
// deployments and tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[id.UserID]*State
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[id.UserID]*State)}
}

func (s *InMemoryStore) Get(_ context.Context, userID id.UserID) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return st.clone(), nil
}

// Update applies fn to the stored state, or to a fresh state for a user seen
// for the first time, and stores the result.
func (s *InMemoryStore) Update(_ context.Context, userID id.UserID, fn func(*State)) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if ok {
		st = st.clone()
	} else {
		st = &State{UserID: userID}
	}
	fn(st)
	s.states[userID] = st
	return st.clone(), nil
}
