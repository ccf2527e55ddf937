// Package draftstore holds the single in-progress draft of a wizard session.
package draftstore

import (
	"sync"

	"kycportal/internal/onboarding/models"
)

// ChangeKind names the transition that produced a new draft.
type ChangeKind string

const (
	ChangeUpdate  ChangeKind = "update"
	ChangeReplace ChangeKind = "replace"
	ChangeReset   ChangeKind = "reset"
)

// Change describes one committed transition. Section is set for updates,
// Reason for replacements.
type Change struct {
	Kind    ChangeKind
	Section models.Section
	Reason  string
}

// Observer receives every committed draft. Observers are for tracing and
// metrics; they must not call back into the store.
type Observer func(Change, models.Draft)

// Store serializes writes to one draft. Every transition goes through a pure
// reducer, and callers only ever see copies.
type Store struct {
	mu        sync.Mutex
	draft     models.Draft
	observers []Observer
}

func New() *Store {
	return &Store{draft: models.NewDraft()}
}

// Read returns a copy of the current draft.
func (s *Store) Read() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Update merges a patch into the draft. A rejected patch leaves the draft as
// it was.
func (s *Store) Update(p models.Patch) (models.Draft, error) {
	return s.commit(Change{Kind: ChangeUpdate, Section: p.Section}, func(d models.Draft) (models.Draft, error) {
		return models.Apply(d, p)
	})
}

// Replace runs fn against the current draft and stores its result. fn must be
// pure; when it fails nothing is stored.
func (s *Store) Replace(reason string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	return s.commit(Change{Kind: ChangeReplace, Reason: reason}, fn)
}

// Reset discards the draft, including its branch and attachments.
func (s *Store) Reset() {
	_, _ = s.commit(Change{Kind: ChangeReset}, func(models.Draft) (models.Draft, error) {
		return models.NewDraft(), nil
	})
}

// Watch registers an observer for later transitions.
func (s *Store) Watch(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) commit(change Change, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	s.mu.Lock()
	next, err := fn(s.draft.Clone())
	if err != nil {
		current := s.draft.Clone()
		s.mu.Unlock()
		return current, err
	}
	s.draft = next.Clone()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o(change, next.Clone())
	}
	return next, nil
}
