// Package contacts implements the contact lookup used to gate screening and
// enhanced blocking. Entries are keyed by normalized handle per profile.
package contacts

import (
	"context"
	"fmt"
	"sync"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[id.ProfileID]map[string]models.Contact
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{contacts: make(map[id.ProfileID]map[string]models.Contact)}
}

func (s *InMemoryStore) Lookup(_ context.Context, profileID id.ProfileID, handle id.Handle) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range handle.Variants() {
		if c, ok := s.contacts[profileID][v]; ok {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("contact: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Upsert(_ context.Context, contact models.Contact) error {
	key := contact.Handle.Normalize()
	if key.IsEmpty() {
		return fmt.Errorf("upsert contact: empty handle")
	}
	contact.Handle = key
	s.mu.Lock()
	defer s.mu.Unlock()
	byHandle, ok := s.contacts[contact.ProfileID]
	if !ok {
		byHandle = make(map[string]models.Contact)
		s.contacts[contact.ProfileID] = byHandle
	}
	byHandle[string(key)] = contact
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, profileID id.ProfileID, handle id.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for _, v := range handle.Variants() {
		if _, ok := s.contacts[profileID][v]; ok {
			delete(s.contacts[profileID], v)
			removed = true
		}
	}
	if !removed {
		return fmt.Errorf("delete contact: %w", sentinel.ErrNotFound)
	}
	return nil
}
